// Package ranking turns raw LP history into points on one score axis and maps
// scores back to rank labels.
package ranking

import (
	"lp-tracker/internal/constants"
	"lp-tracker/internal/domain"
	"time"
)

// Config is built once at startup and passed by value; its tables are never mutated.
type Config struct {
	// ApexBase is the axis value of MASTER 0 LP.
	ApexBase int
	Location *time.Location

	colors    map[domain.Tier]string
	platforms map[domain.Region]string
}

var defaultColors = map[domain.Tier]string{
	domain.TierIron:        "#b5a58b",
	domain.TierBronze:      "#8c523a",
	domain.TierSilver:      "#84969b",
	domain.TierGold:        "#f0b753",
	domain.TierPlatinum:    "#4a927c",
	domain.TierEmerald:     "#48c750",
	domain.TierDiamond:     "#716bf6",
	domain.TierMaster:      "#ed5eba",
	domain.TierGrandmaster: "#ce4039",
	domain.TierChallenger:  "#40c0de",
}

// platform codes used by the cutoff service
var defaultPlatforms = map[domain.Region]string{
	domain.RegionNA:   "NA1",
	domain.RegionEUW:  "EUW1",
	domain.RegionEUNE: "EUN1",
	domain.RegionBR:   "BR1",
	domain.RegionJP:   "JP1",
	domain.RegionKR:   "KR",
	domain.RegionLAN:  "LA1",
	domain.RegionLAS:  "LA2",
	domain.RegionOCE:  "OC1",
	domain.RegionTR:   "TR1",
}

func NewConfig(apexBase int, loc *time.Location) Config {
	if apexBase <= 0 {
		apexBase = constants.DefaultApexBase
	}
	if loc == nil {
		loc = time.Local
	}
	colors := make(map[domain.Tier]string, len(defaultColors))
	for k, v := range defaultColors {
		colors[k] = v
	}
	platforms := make(map[domain.Region]string, len(defaultPlatforms))
	for k, v := range defaultPlatforms {
		platforms[k] = v
	}
	return Config{ApexBase: apexBase, Location: loc, colors: colors, platforms: platforms}
}

func (c Config) Color(tier domain.Tier) string {
	return c.colors[tier]
}

func (c Config) Platform(region domain.Region) (string, bool) {
	p, ok := c.platforms[region]
	return p, ok
}
