package api

import (
	"context"
	"fmt"
	"lp-tracker/internal/config"
	"lp-tracker/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// DeeplolClient reads the current GRANDMASTER and CHALLENGER cutoffs per platform.
type DeeplolClient struct {
	endpoint string
	client   *fasthttp.Client
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

func NewDeeplolClient(cfg *config.Config, logger zerolog.Logger) *DeeplolClient {
	return &DeeplolClient{
		endpoint: cfg.CutoffURL,
		client:   newFastClient(),
		limiter:  newLimiter(cfg.RequestsPerSecond),
		logger:   logger.With().Str("component", "deeplol").Logger(),
	}
}

type tierBoundary struct {
	Grandmaster int `json:"grandmaster"`
	Challenger  int `json:"challenger"`
}

// Cutoffs returns the cutoffs for a platform code such as "EUW1".
func (c *DeeplolClient) Cutoffs(ctx context.Context, platform string) (domain.Cutoffs, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://www.deeplol.gg/")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("platform", platform).Msg("fetching apex cutoffs")

	body, err := doRequest(ctx, c.client, c.limiter, req)
	if err != nil {
		return domain.Cutoffs{}, err
	}

	raw := gjson.GetBytes(body, "tier_boundary_solo."+platform)
	if !raw.Exists() || raw.Type == gjson.Null {
		return domain.Cutoffs{}, fmt.Errorf("%w: %s", ErrCutoffsNotFound, platform)
	}

	var tb tierBoundary
	if err := json.Unmarshal([]byte(raw.Raw), &tb); err != nil {
		return domain.Cutoffs{}, &PayloadError{Message: "failed to decode tier boundary", Err: err}
	}
	if tb.Grandmaster < 0 || tb.Challenger < tb.Grandmaster {
		return domain.Cutoffs{}, &PayloadError{Message: fmt.Sprintf("inconsistent cutoffs for %s: gm %d, challenger %d", platform, tb.Grandmaster, tb.Challenger)}
	}

	c.logger.Debug().
		Str("platform", platform).
		Int("grandmaster", tb.Grandmaster).
		Int("challenger", tb.Challenger).
		Msg("apex cutoffs fetched")

	return domain.Cutoffs{Grandmaster: tb.Grandmaster, Challenger: tb.Challenger}, nil
}
