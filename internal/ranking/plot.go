package ranking

import (
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"

	"github.com/samber/lo"
)

// Peak returns the highest point. On a tie the oldest one wins.
func Peak(points []domain.ScorePoint) (domain.ScorePoint, bool) {
	if len(points) == 0 {
		return domain.ScorePoint{}, false
	}
	return lo.MaxBy(points, func(a, b domain.ScorePoint) bool {
		return a.Value > b.Value
	}), true
}

type PatchChange struct {
	GamesAgo int
	Patch    string
}

// PatchChanges marks every point whose patch differs from the game before it.
func PatchChanges(points []domain.ScorePoint) []PatchChange {
	var changes []PatchChange
	for i := 1; i < len(points); i++ {
		if points[i].Patch != points[i-1].Patch {
			changes = append(changes, PatchChange{GamesAgo: points[i].GamesAgo, Patch: points[i].Patch})
		}
	}
	return changes
}

// MajorTicks are every 400 below MASTER inside [low, high], plus the GRANDMASTER and CHALLENGER floors.
func MajorTicks(low, high int, thresholds []domain.Threshold, cfg Config) []int {
	var ticks []int
	top := min(high, cfg.ApexBase)
	for v := ceilTo(low, constants.MajorTickLP); v <= top; v += constants.MajorTickLP {
		ticks = append(ticks, v)
	}
	for _, tier := range []domain.Tier{domain.TierGrandmaster, domain.TierChallenger} {
		t, ok := lo.Find(thresholds, func(t domain.Threshold) bool { return t.Tier == tier })
		if ok && t.MinValue >= low && t.MinValue <= high {
			ticks = append(ticks, t.MinValue)
		}
	}
	return ticks
}

// MinorTicks are every 200 inside [low, high).
func MinorTicks(low, high int) []int {
	var ticks []int
	for v := ceilTo(low, constants.MinorTickLP); v < high; v += constants.MinorTickLP {
		ticks = append(ticks, v)
	}
	return ticks
}

func ceilTo(v, step int) int {
	r := v % step
	switch {
	case r == 0:
		return v
	case r < 0:
		return v - r
	}
	return v + step - r
}

type TierBand struct {
	Tier  domain.Tier
	Min   int
	Max   int
	Color string
}

// TierBands spans each tier from its lowest to its highest threshold, clipped to [low, high].
// The lowest tier is stretched down to low. Tiers outside the window are dropped.
func TierBands(thresholds []domain.Threshold, low, high int, cfg Config) []TierBand {
	if len(thresholds) == 0 {
		return nil
	}
	lowest := lo.MinBy(thresholds, func(a, b domain.Threshold) bool { return a.MinValue < b.MinValue }).Tier

	var bands []TierBand
	for _, tier := range domain.Tiers {
		group := lo.Filter(thresholds, func(t domain.Threshold, _ int) bool { return t.Tier == tier })
		if len(group) == 0 {
			continue
		}
		band := TierBand{
			Tier:  tier,
			Min:   lo.MinBy(group, func(a, b domain.Threshold) bool { return a.MinValue < b.MinValue }).MinValue,
			Max:   lo.MaxBy(group, func(a, b domain.Threshold) bool { return a.MaxValue > b.MaxValue }).MaxValue,
			Color: cfg.Color(tier),
		}
		if tier == lowest || band.Min < low {
			band.Min = low
		}
		if band.Max > high {
			band.Max = high
		}
		if band.Min >= band.Max {
			continue
		}
		bands = append(bands, band)
	}
	return bands
}
