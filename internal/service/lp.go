package service

import (
	"context"
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/ranking"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type FetchOptions struct {
	PageLimit int
	BatchSize int
}

// LPService assembles a full LP history: pages, points, normalized thresholds and the peak.
type LPService struct {
	history    *HistoryService
	thresholds *ThresholdService
	cfg        ranking.Config
	logger     zerolog.Logger
}

func NewLPService(history *HistoryService, thresholds *ThresholdService, cfg ranking.Config, logger zerolog.Logger) *LPService {
	return &LPService{history: history, thresholds: thresholds, cfg: cfg, logger: logger}
}

func (s *LPService) GetHistory(ctx context.Context, riotID domain.RiotID, region domain.Region, opts FetchOptions) (*domain.LPHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().
		Str("riot_id", riotID.String()).
		Str("region", string(region)).
		Int("page_limit", opts.PageLimit).
		Msg("getting lp history")

	pages, err := s.history.FetchHistory(ctx, riotID, region, opts.PageLimit, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.thresholds.Normalize(ctx, lo.Map(pages, func(p domain.RawPage, _ int) []domain.Threshold {
		return p.Thresholds
	}), region)
	if err != nil {
		return nil, err
	}

	points := ranking.ExtractPoints(pages, s.cfg)

	out := &domain.LPHistory{
		RiotID:     riotID,
		Region:     region,
		Pages:      len(pages),
		Points:     points,
		Thresholds: thresholds,
	}
	if peak, ok := ranking.Peak(points); ok {
		out.Peak = &peak
	}

	s.logger.Info().
		Str("riot_id", riotID.String()).
		Int("points", len(points)).
		Int("thresholds", len(thresholds)).
		Msg("lp history ready")
	return out, nil
}
