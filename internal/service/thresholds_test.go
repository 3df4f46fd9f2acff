package service

import (
	"context"
	"errors"
	"lp-tracker/internal/domain"
	"lp-tracker/internal/ranking"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCutoffs struct {
	cutoffs   domain.Cutoffs
	err       error
	platforms []string
}

func (f *fakeCutoffs) Cutoffs(ctx context.Context, platform string) (domain.Cutoffs, error) {
	f.platforms = append(f.platforms, platform)
	return f.cutoffs, f.err
}

func mustThreshold(t *testing.T, tier domain.Tier, div domain.Division, minValue, maxValue int) domain.Threshold {
	t.Helper()
	out, err := domain.NewThreshold(tier, div, minValue, maxValue)
	require.NoError(t, err)
	return out
}

func apexPage(t *testing.T) []domain.Threshold {
	return []domain.Threshold{
		mustThreshold(t, domain.TierDiamond, domain.DivisionI, 2700, 2800),
		mustThreshold(t, domain.TierMaster, domain.DivisionI, 2800, 2900),
		mustThreshold(t, domain.TierGrandmaster, domain.DivisionI, 2900, 3000),
		mustThreshold(t, domain.TierChallenger, domain.DivisionI, 3000, 3100),
	}
}

func testRankingConfig() ranking.Config {
	return ranking.NewConfig(2800, time.UTC)
}

func TestThresholdServiceAppliesCutoffs(t *testing.T) {
	src := &fakeCutoffs{cutoffs: domain.Cutoffs{Grandmaster: 250, Challenger: 700}}
	svc := NewThresholdService(src, testRankingConfig(), zerolog.Nop())

	out, err := svc.Normalize(context.Background(), [][]domain.Threshold{apexPage(t)}, domain.RegionEUW)
	require.NoError(t, err)

	assert.Equal(t, []string{"EUW1"}, src.platforms)
	require.Len(t, out, 4)
	assert.Equal(t, 3050, out[1].MaxValue)
	assert.Equal(t, 3050, out[2].MinValue)
	assert.Equal(t, 3500, out[2].MaxValue)
	assert.Equal(t, 3500, out[3].MinValue)
	assert.True(t, out[3].Unbounded())
}

func TestThresholdServiceSkipsLookupBelowApex(t *testing.T) {
	src := &fakeCutoffs{err: errors.New("must not be called")}
	svc := NewThresholdService(src, testRankingConfig(), zerolog.Nop())

	page := []domain.Threshold{mustThreshold(t, domain.TierGold, domain.DivisionIV, 1200, 1300)}
	out, err := svc.Normalize(context.Background(), [][]domain.Threshold{page}, domain.RegionEUW)
	require.NoError(t, err)
	assert.Empty(t, src.platforms)
	assert.True(t, out[0].Unbounded())
}

func TestThresholdServiceLookupFailure(t *testing.T) {
	boom := errors.New("cutoff service down")
	svc := NewThresholdService(&fakeCutoffs{err: boom}, testRankingConfig(), zerolog.Nop())

	_, err := svc.Normalize(context.Background(), [][]domain.Threshold{apexPage(t)}, domain.RegionKR)

	var normErr *NormalizationError
	require.ErrorAs(t, err, &normErr)
	assert.Equal(t, domain.RegionKR, normErr.Region)
	assert.ErrorIs(t, err, boom)
}

func TestThresholdServiceUnknownPlatform(t *testing.T) {
	src := &fakeCutoffs{}
	svc := NewThresholdService(src, testRankingConfig(), zerolog.Nop())

	_, err := svc.Normalize(context.Background(), [][]domain.Threshold{apexPage(t)}, domain.Region("PBE"))

	var normErr *NormalizationError
	require.ErrorAs(t, err, &normErr)
	assert.ErrorIs(t, err, ErrUnknownPlatform)
	assert.Empty(t, src.platforms)
}
