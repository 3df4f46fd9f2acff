package ranking

import (
	"lp-tracker/internal/domain"
	"slices"

	"github.com/samber/lo"
)

// CutoffLookup returns the current apex cutoffs. Normalize only calls it when an apex tier is present.
type CutoffLookup func() (domain.Cutoffs, error)

// Normalize merges the threshold snapshots of every page into one scale ordered by tier and division.
//
// The first occurrence of each (tier, division) wins. Pages arrive newest first, so for apex tiers
// this is also the most recent observation. Apex boundaries are then replaced from the cutoffs and
// the highest threshold is opened up to domain.Unbounded.
func Normalize(pageThresholds [][]domain.Threshold, cfg Config, lookup CutoffLookup) ([]domain.Threshold, error) {
	merged := Dedupe(pageThresholds)

	if HasApex(merged) {
		cutoffs, err := lookup()
		if err != nil {
			return nil, err
		}
		merged = ApplyCutoffs(merged, cutoffs, cfg.ApexBase)
	}

	return CoverAxis(merged), nil
}

func Dedupe(pageThresholds [][]domain.Threshold) []domain.Threshold {
	merged := lo.UniqBy(lo.Flatten(pageThresholds), func(t domain.Threshold) domain.ThresholdKey {
		return t.Key()
	})
	slices.SortStableFunc(merged, func(a, b domain.Threshold) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return merged
}

func HasApex(thresholds []domain.Threshold) bool {
	return lo.ContainsBy(thresholds, func(t domain.Threshold) bool {
		return t.Tier.IsApex()
	})
}

// ApplyCutoffs rewrites apex boundaries. A tier is only rewritten when every apex tier below it is
// present too; cutoffs mean nothing without the chain underneath.
func ApplyCutoffs(thresholds []domain.Threshold, cutoffs domain.Cutoffs, apexBase int) []domain.Threshold {
	out := slices.Clone(thresholds)

	find := func(tier domain.Tier) int {
		return slices.IndexFunc(out, func(t domain.Threshold) bool { return t.Tier == tier })
	}
	master := find(domain.TierMaster)
	grandmaster := find(domain.TierGrandmaster)
	challenger := find(domain.TierChallenger)

	if master < 0 {
		return out
	}
	out[master].MinValue = apexBase
	out[master].MaxValue = apexBase + cutoffs.Grandmaster

	if grandmaster < 0 {
		return out
	}
	out[grandmaster].MinValue = apexBase + cutoffs.Grandmaster
	out[grandmaster].MaxValue = apexBase + cutoffs.Challenger

	if challenger < 0 {
		return out
	}
	out[challenger].MinValue = apexBase + cutoffs.Challenger
	out[challenger].MaxValue = domain.Unbounded

	return out
}

// CoverAxis opens the threshold with the greatest MaxValue so no finite score falls off the scale.
// On a tie the highest ranked threshold is chosen.
func CoverAxis(thresholds []domain.Threshold) []domain.Threshold {
	out := slices.Clone(thresholds)
	if i := highestIndex(out); i >= 0 {
		out[i].MaxValue = domain.Unbounded
	}
	return out
}

func highestIndex(thresholds []domain.Threshold) int {
	best := -1
	for i, t := range thresholds {
		if best < 0 || t.MaxValue > thresholds[best].MaxValue ||
			(t.MaxValue == thresholds[best].MaxValue && thresholds[best].Less(t)) {
			best = i
		}
	}
	return best
}
