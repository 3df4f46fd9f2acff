package service

import (
	"context"
	"errors"
	"fmt"
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/ranking"

	"github.com/rs/zerolog"
)

var ErrUnknownPlatform = errors.New("no platform code for region")

// CutoffSource returns the current GRANDMASTER and CHALLENGER cutoffs for a platform code.
type CutoffSource interface {
	Cutoffs(ctx context.Context, platform string) (domain.Cutoffs, error)
}

type NormalizationError struct {
	Region domain.Region
	Err    error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("failed to normalize thresholds for %s: %v", e.Region, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

type ThresholdService struct {
	cutoffs CutoffSource
	cfg     ranking.Config
	logger  zerolog.Logger
}

func NewThresholdService(cutoffs CutoffSource, cfg ranking.Config, logger zerolog.Logger) *ThresholdService {
	return &ThresholdService{cutoffs: cutoffs, cfg: cfg, logger: logger}
}

// Normalize merges the per-page threshold snapshots. Cutoffs are only fetched when an apex tier is
// present; a failed lookup fails the normalization.
func (s *ThresholdService) Normalize(ctx context.Context, pageThresholds [][]domain.Threshold, region domain.Region) ([]domain.Threshold, error) {
	lookup := func() (domain.Cutoffs, error) {
		platform, ok := s.cfg.Platform(region)
		if !ok {
			return domain.Cutoffs{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, region)
		}

		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		cutoffs, err := s.cutoffs.Cutoffs(apiCtx, platform)
		if err != nil {
			return domain.Cutoffs{}, err
		}
		s.logger.Debug().
			Str("platform", platform).
			Int("grandmaster", cutoffs.Grandmaster).
			Int("challenger", cutoffs.Challenger).
			Msg("applying apex cutoffs")
		return cutoffs, nil
	}

	thresholds, err := ranking.Normalize(pageThresholds, s.cfg, lookup)
	if err != nil {
		s.logger.Error().Err(err).Str("region", string(region)).Msg("threshold normalization failed")
		return nil, &NormalizationError{Region: region, Err: err}
	}
	return thresholds, nil
}
