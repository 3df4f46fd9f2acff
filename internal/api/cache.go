package api

import (
	"context"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/metrics"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

type CutoffFetcher interface {
	Cutoffs(ctx context.Context, platform string) (domain.Cutoffs, error)
}

// CachedCutoffSource keeps cutoffs in memory for the life of the process. Failures are never cached.
type CachedCutoffSource struct {
	source CutoffFetcher
	cache  *cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedCutoffSource(source CutoffFetcher, ttl time.Duration, logger zerolog.Logger) *CachedCutoffSource {
	return &CachedCutoffSource{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedCutoffSource) Cutoffs(ctx context.Context, platform string) (domain.Cutoffs, error) {
	if v, ok := c.cache.Get(platform); ok {
		metrics.CutoffCacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug().Str("platform", platform).Msg("apex cutoffs served from cache")
		return v.(domain.Cutoffs), nil
	}
	metrics.CutoffCacheLookups.WithLabelValues("miss").Inc()

	cutoffs, err := c.source.Cutoffs(ctx, platform)
	if err != nil {
		return domain.Cutoffs{}, err
	}
	c.cache.Set(platform, cutoffs, c.ttl)
	return cutoffs, nil
}
