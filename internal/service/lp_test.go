package service

import (
	"context"
	"lp-tracker/internal/domain"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPages struct {
	pages []domain.RawPage
}

func (s *staticPages) GetLPHistoryPage(ctx context.Context, riotID domain.RiotID, region domain.Region, pageIndex int) (*domain.RawPage, error) {
	p := s.pages[pageIndex-1]
	return &p, nil
}

func snapshot(value, lp int) *domain.LPSnapshot {
	return &domain.LPSnapshot{Value: value, LP: lp}
}

func TestLPServiceGetHistory(t *testing.T) {
	diff := 18
	src := &staticPages{pages: []domain.RawPage{
		{Index: 1, TotalPages: 2, Items: []domain.HistoryItem{
			{StartedAt: 400, Patch: "14.4", Result: domain.ResultWon, LP: domain.LPChange{After: snapshot(2900, 118), Diff: &diff}},
			{StartedAt: 300, Patch: "14.4", Result: domain.ResultWon, LP: domain.LPChange{After: snapshot(2800, 100), Diff: &diff}},
		}, Thresholds: apexPage(t)},
		{Index: 2, TotalPages: 2, Items: []domain.HistoryItem{
			{StartedAt: 200, Patch: "14.3"},
			{StartedAt: 100, Patch: "14.3", Result: domain.ResultLost, LP: domain.LPChange{Before: snapshot(2750, 50)}},
		}},
	}}
	cutoffs := &fakeCutoffs{cutoffs: domain.Cutoffs{Grandmaster: 200, Challenger: 500}}

	cfg := testRankingConfig()
	svc := NewLPService(
		NewHistoryService(src, zerolog.Nop()),
		NewThresholdService(cutoffs, cfg, zerolog.Nop()),
		cfg,
		zerolog.Nop(),
	)

	hist, err := svc.GetHistory(context.Background(), testRiotID, domain.RegionKR, FetchOptions{BatchSize: 4})
	require.NoError(t, err)

	assert.Equal(t, 2, hist.Pages)
	require.Len(t, hist.Points, 3)
	assert.Equal(t, []int{2750, 2799, 2918}, []int{hist.Points[0].Value, hist.Points[1].Value, hist.Points[2].Value})
	assert.Equal(t, 0, hist.Points[2].GamesAgo)

	require.NotNil(t, hist.Peak)
	assert.Equal(t, 2918, hist.Peak.Value)

	require.Len(t, hist.Thresholds, 4)
	assert.True(t, hist.Thresholds[3].Unbounded())
	assert.Equal(t, []string{"KR"}, cutoffs.platforms)
}
