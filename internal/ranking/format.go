package ranking

import (
	"fmt"
	"lp-tracker/internal/domain"
	"strings"
)

type FormatOptions struct {
	// Short renders "G2" instead of "GOLD II".
	Short bool
	// ShowLP appends the LP left over inside the division.
	ShowLP bool
	// MinorTick renders apex scores as bare LP, used between labelled axis ticks.
	MinorTick bool
}

// Lookup returns the threshold containing score. The highest threshold also contains its MaxValue.
func Lookup(score int, thresholds []domain.Threshold) (domain.Threshold, bool) {
	top := highestIndex(thresholds)
	for i, t := range thresholds {
		if t.Contains(score) || (i == top && score == t.MaxValue) {
			return t, true
		}
	}
	return domain.Threshold{}, false
}

// ResidualLP is the LP shown for score inside t. Apex LP counts from MASTER 0 LP since it stacks
// across MASTER, GRANDMASTER and CHALLENGER.
func ResidualLP(score int, t domain.Threshold, apexBase int) int {
	if t.Tier.IsApex() {
		return score - apexBase
	}
	return score - t.MinValue
}

// FormatRank renders score as a rank label on a normalized scale. It returns "" when no threshold
// contains the score, which a normalized scale never allows.
func FormatRank(score int, thresholds []domain.Threshold, cfg Config, opts FormatOptions) string {
	t, ok := Lookup(score, thresholds)
	if !ok {
		return ""
	}

	lp := ResidualLP(score, t, cfg.ApexBase)
	if t.Tier.IsApex() && opts.MinorTick {
		return fmt.Sprintf("%d LP", lp)
	}

	var b strings.Builder
	switch {
	case opts.Short:
		fmt.Fprintf(&b, "%s%d", t.Tier.Short(), t.Division.Number())
	default:
		fmt.Fprintf(&b, "%s %s", t.Tier, t.Division)
	}

	if opts.ShowLP {
		fmt.Fprintf(&b, " %d LP", lp)
	}
	return b.String()
}
