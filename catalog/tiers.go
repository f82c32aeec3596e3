package catalog

import (
	"fmt"

	"github.com/tolelom/tolfarm/core"
)

// MaxTier is the highest facility tier.
const MaxTier = 10

// Tier is one row of the facility table.
type Tier struct {
	Level          uint8
	MaxActiveUnits uint8
	CapacityLimit  uint64
	Cost           uint64 // tokens to upgrade into this tier
}

// tiers[0] is the state before any purchase; tier 1 is the free starter.
var tiers = [MaxTier + 1]Tier{
	{0, 0, 0, 0},
	{1, 2, 15, 0},
	{2, 4, 30, 100_000_000},
	{3, 7, 60, 200_000_000},
	{4, 10, 120, 400_000_000},
	{5, 13, 250, 800_000_000},
	{6, 16, 500, 1_600_000_000},
	{7, 19, 1_000, 3_200_000_000},
	{8, 22, 2_000, 6_400_000_000},
	{9, 24, 4_000, 12_800_000_000},
	{10, 25, 30_000, 30_000_000_000},
}

// TierInfo returns the row for level.
func TierInfo(level uint8) (Tier, error) {
	if level > MaxTier {
		return Tier{}, fmt.Errorf("%w: %d", core.ErrInvalidTier, level)
	}
	return tiers[level], nil
}

// Facility returns the facility record granted at level.
func (t Tier) Facility() core.Facility {
	return core.Facility{
		Tier:           t.Level,
		MaxActiveUnits: t.MaxActiveUnits,
		CapacityLimit:  t.CapacityLimit,
	}
}
