package ranking

import (
	"lp-tracker/internal/domain"
	"time"
)

// UnifiedValue projects an LP change onto the score axis. The snapshot after the game is preferred,
// then the one before it. Placement games have neither and report false.
func UnifiedValue(change domain.LPChange, apexBase int) (int, bool) {
	snap := change.After
	if snap == nil {
		snap = change.Before
	}
	if snap == nil {
		return 0, false
	}

	switch {
	case snap.Value > apexBase:
		return apexBase + snap.LP, true
	case snap.Value == apexBase && snap.LP == 100:
		// A DIAMOND I promotion game reports MASTER's value with 100 LP. Keep it just under
		// MASTER 0 LP so it does not plot as MASTER 100 LP. A real MASTER 100 LP game is misplaced too.
		return apexBase - 1, true
	case snap.Value == apexBase:
		return apexBase + snap.LP, true
	}
	return snap.Value, true
}

// ExtractPoints flattens pages into points, oldest game first. Pages and the items inside them are
// newest first. GamesAgo is assigned after ordering, counting back from the most recent game.
func ExtractPoints(pages []domain.RawPage, cfg Config) []domain.ScorePoint {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	points := make([]domain.ScorePoint, 0)
	for p := len(pages) - 1; p >= 0; p-- {
		items := pages[p].Items
		for i := len(items) - 1; i >= 0; i-- {
			item := items[i]
			value, ok := UnifiedValue(item.LP, cfg.ApexBase)
			if !ok {
				continue
			}
			points = append(points, domain.ScorePoint{
				Value:     value,
				Timestamp: time.Unix(item.StartedAt, 0).In(loc),
				Patch:     item.Patch,
				Result:    item.Result,
				LPDelta:   item.LP.Diff,
			})
		}
	}

	assignGamesAgo(points)
	return points
}

func assignGamesAgo(points []domain.ScorePoint) {
	for i := range points {
		points[i].GamesAgo = len(points) - 1 - i
	}
}
