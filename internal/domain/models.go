package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type Tier string

const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// Tiers lists every ranked tier from lowest to highest.
var Tiers = []Tier{
	TierIron, TierBronze, TierSilver, TierGold, TierPlatinum,
	TierEmerald, TierDiamond, TierMaster, TierGrandmaster, TierChallenger,
}

// Order is the tier's position in Tiers, or -1 for an unknown tier.
func (t Tier) Order() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool {
	return t.Order() >= 0
}

// IsApex reports whether the tier's boundaries follow the player population.
func (t Tier) IsApex() bool {
	return t == TierMaster || t == TierGrandmaster || t == TierChallenger
}

// Short is the one or two letter abbreviation. GRANDMASTER is "GM" so it does not clash with GOLD.
func (t Tier) Short() string {
	if t == TierGrandmaster {
		return "GM"
	}
	if t == "" {
		return ""
	}
	return string(t[0])
}

type Division string

const (
	DivisionIV  Division = "IV"
	DivisionIII Division = "III"
	DivisionII  Division = "II"
	DivisionI   Division = "I"
)

// Order ranks divisions inside a tier: IV is 0, I is 3.
func (d Division) Order() int {
	switch d {
	case DivisionIV:
		return 0
	case DivisionIII:
		return 1
	case DivisionII:
		return 2
	case DivisionI:
		return 3
	}
	return -1
}

// Number is the arabic form used in short rank labels.
func (d Division) Number() int {
	if o := d.Order(); o >= 0 {
		return 4 - o
	}
	return 0
}

// Unbounded is the MaxValue of the highest threshold of a normalized scale.
const Unbounded = math.MaxInt

var ErrInvalidThreshold = errors.New("invalid threshold")

type ThresholdKey struct {
	Tier     Tier
	Division Division
}

// Threshold owns the half-open interval [MinValue, MaxValue) of the score axis for one tier and division.
// Build it with NewThreshold and treat it as a value.
type Threshold struct {
	Tier     Tier
	Division Division
	MinValue int
	MaxValue int
}

func NewThreshold(tier Tier, division Division, minValue, maxValue int) (Threshold, error) {
	if !tier.Valid() {
		return Threshold{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidThreshold, tier)
	}
	if division.Order() < 0 {
		return Threshold{}, fmt.Errorf("%w: unknown division %q", ErrInvalidThreshold, division)
	}
	if minValue > maxValue {
		return Threshold{}, fmt.Errorf("%w: %s %s min %d above max %d", ErrInvalidThreshold, tier, division, minValue, maxValue)
	}
	return Threshold{Tier: tier, Division: division, MinValue: minValue, MaxValue: maxValue}, nil
}

func (t Threshold) Key() ThresholdKey {
	return ThresholdKey{Tier: t.Tier, Division: t.Division}
}

func (t Threshold) Contains(value int) bool {
	return value >= t.MinValue && value < t.MaxValue
}

func (t Threshold) Unbounded() bool {
	return t.MaxValue == Unbounded
}

// Less orders thresholds by tier, then division.
func (t Threshold) Less(o Threshold) bool {
	if t.Tier != o.Tier {
		return t.Tier.Order() < o.Tier.Order()
	}
	return t.Division.Order() < o.Division.Order()
}

type MatchResult string

const (
	ResultWon  MatchResult = "WON"
	ResultLost MatchResult = "LOST"
)

// LPSnapshot is a position on the service's own value scale together with the LP shown in game.
type LPSnapshot struct {
	Value int
	LP    int
}

func NewLPSnapshot(value, lp int) (LPSnapshot, error) {
	if lp < 0 {
		return LPSnapshot{}, fmt.Errorf("negative lp %d", lp)
	}
	return LPSnapshot{Value: value, LP: lp}, nil
}

type LPChange struct {
	Before *LPSnapshot
	After  *LPSnapshot
	Diff   *int
}

// Placement reports a game with no LP recorded on either side.
func (c LPChange) Placement() bool {
	return c.Before == nil && c.After == nil
}

type HistoryItem struct {
	StartedAt int64 // unix seconds
	Patch     string
	Result    MatchResult
	LP        LPChange
}

// RawPage is one page of LP history as returned by the history service: items newest first,
// plus the tier thresholds the service knew when the page was produced.
type RawPage struct {
	Index      int
	TotalPages int
	Items      []HistoryItem
	Thresholds []Threshold
}

// ScorePoint is one game projected onto the unified score axis.
type ScorePoint struct {
	Value     int
	Timestamp time.Time
	Patch     string
	Result    MatchResult
	LPDelta   *int
	// GamesAgo is 0 for the most recent game.
	GamesAgo int
}

// Cutoffs are the current apex boundaries of a region in LP above MASTER 0 LP.
type Cutoffs struct {
	Grandmaster int
	Challenger  int
}

type LPHistory struct {
	RiotID     RiotID
	Region     Region
	Pages      int
	Points     []ScorePoint
	Thresholds []Threshold
	Peak       *ScorePoint
}

type RiotID struct {
	GameName string
	TagLine  string
}

var ErrInvalidRiotID = errors.New("invalid riot id")

// ParseRiotID accepts "name#tag" or a bare legacy summoner name.
func ParseRiotID(s string) (RiotID, error) {
	s = strings.TrimSpace(s)
	name, tag, found := strings.Cut(s, "#")
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" {
		return RiotID{}, fmt.Errorf("%w: %q", ErrInvalidRiotID, s)
	}
	if found && (tag == "" || strings.Contains(tag, "#")) {
		return RiotID{}, fmt.Errorf("%w: %q", ErrInvalidRiotID, s)
	}
	return RiotID{GameName: name, TagLine: tag}, nil
}

func (r RiotID) String() string {
	if r.TagLine == "" {
		return r.GameName
	}
	return r.GameName + "#" + r.TagLine
}

type Region string

const (
	RegionNA   Region = "NA"
	RegionEUW  Region = "EUW"
	RegionEUNE Region = "EUNE"
	RegionBR   Region = "BR"
	RegionJP   Region = "JP"
	RegionKR   Region = "KR"
	RegionLAN  Region = "LAN"
	RegionLAS  Region = "LAS"
	RegionOCE  Region = "OCE"
	RegionTR   Region = "TR"
)

var Regions = []Region{
	RegionNA, RegionEUW, RegionEUNE, RegionBR, RegionJP,
	RegionKR, RegionLAN, RegionLAS, RegionOCE, RegionTR,
}

var ErrUnknownRegion = errors.New("unknown region")

func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Regions {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}
