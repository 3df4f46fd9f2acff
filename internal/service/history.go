package service

import (
	"context"
	"fmt"
	"lp-tracker/internal/api"
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/metrics"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// PageSource returns one page of LP history. pageIndex starts at 1.
type PageSource interface {
	GetLPHistoryPage(ctx context.Context, riotID domain.RiotID, region domain.Region, pageIndex int) (*domain.RawPage, error)
}

// FetchError is the single error a failed fetch returns. Class is one of the api.Classify names.
type FetchError struct {
	Page  int
	Class string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch lp history page %d (%s): %v", e.Page, e.Class, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type HistoryService struct {
	pages  PageSource
	logger zerolog.Logger
}

func NewHistoryService(pages PageSource, logger zerolog.Logger) *HistoryService {
	return &HistoryService{pages: pages, logger: logger}
}

// FetchHistory fetches page 1, then pages 2..total in sequential batches of batchSize concurrent
// requests. A pageLimit above zero caps the total. Any failed page fails the whole fetch.
// On success the pages are returned in ascending order.
func (s *HistoryService) FetchHistory(ctx context.Context, riotID domain.RiotID, region domain.Region, pageLimit, batchSize int) ([]domain.RawPage, error) {
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}

	logger := s.logger.With().
		Str("fetch_id", newFetchID()).
		Str("riot_id", riotID.String()).
		Str("region", string(region)).
		Logger()

	start := time.Now()
	pages, err := s.fetchAll(ctx, logger, riotID, region, pageLimit, batchSize)
	if err != nil {
		metrics.FetchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		logger.Error().Err(err).Msg("lp history fetch failed")
		return nil, err
	}
	metrics.FetchDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	logger.Info().
		Int("pages", len(pages)).
		Dur("duration", time.Since(start)).
		Msg("lp history fetched")
	return pages, nil
}

func (s *HistoryService) fetchAll(ctx context.Context, logger zerolog.Logger, riotID domain.RiotID, region domain.Region, pageLimit, batchSize int) ([]domain.RawPage, error) {
	first, err := s.fetchPage(ctx, logger, riotID, region, 1)
	if err != nil {
		return nil, err
	}

	total := first.TotalPages
	if total <= 0 {
		logger.Info().Msg("no lp history")
		return []domain.RawPage{}, nil
	}
	if pageLimit > 0 && total > pageLimit {
		logger.Debug().Int("total_pages", total).Int("page_limit", pageLimit).Msg("clamping page count")
		total = pageLimit
	}

	results := make([]domain.RawPage, total)
	results[0] = *first

	for i, batch := range BatchPages(total, batchSize) {
		logger.Debug().Int("batch", i+1).Ints("pages", batch).Msg("fetching batch")

		// no shared context: siblings of a failed page run to completion
		g := new(errgroup.Group)
		for _, index := range batch {
			g.Go(func() error {
				page, err := s.fetchPage(ctx, logger, riotID, region, index)
				if err != nil {
					return err
				}
				results[index-1] = *page
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (s *HistoryService) fetchPage(ctx context.Context, logger zerolog.Logger, riotID domain.RiotID, region domain.Region, index int) (*domain.RawPage, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	page, err := s.pages.GetLPHistoryPage(apiCtx, riotID, region, index)
	class := api.Classify(err)
	metrics.PageFetches.WithLabelValues(class).Inc()
	if err != nil {
		logger.Warn().Err(err).Int("page", index).Str("class", class).Msg("page fetch failed")
		return nil, &FetchError{Page: index, Class: class, Err: err}
	}
	return page, nil
}

// BatchPages splits pages 2..total into consecutive batches of at most size pages.
func BatchPages(total, size int) [][]int {
	if total < 2 || size <= 0 {
		return nil
	}
	return lo.Chunk(lo.RangeFrom(2, total-1), size)
}

func newFetchID() string {
	id, err := gonanoid.New(12)
	if err != nil {
		return ""
	}
	return id
}
