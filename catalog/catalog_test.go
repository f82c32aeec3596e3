package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
)

func TestCatalogShape(t *testing.T) {
	require.Len(t, units, 191)

	want := map[Rarity]int{
		Common:     60,
		Uncommon:   60,
		Rare:       30,
		DoubleRare: 20,
		VeryRare:   12,
		SuperRare:  6,
		MegaRare:   3,
	}
	for r, n := range want {
		got, err := ByRarity(r)
		require.NoError(t, err)
		assert.Len(t, got, n, r.String())
	}

	seen := make(map[uint16]bool)
	for _, u := range units {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
		assert.NotZero(t, u.YieldPower)
		assert.NotZero(t, u.CapacityCost)
	}
}

func TestLookup(t *testing.T) {
	u, err := Lookup(132)
	require.NoError(t, err)
	assert.Equal(t, "Puffbird", u.Name)
	assert.Equal(t, Common, u.Rarity)
	assert.EqualValues(t, 3, u.YieldPower)
	assert.EqualValues(t, 1, u.CapacityCost)

	_, err = Lookup(0)
	assert.ErrorIs(t, err, core.ErrUnknownUnit)
	_, err = Lookup(192)
	assert.ErrorIs(t, err, core.ErrUnknownUnit)

	_, err = ByRarity(Rarity(NumRarities))
	assert.ErrorIs(t, err, core.ErrInvalidRarity)
}

func TestRollRarityBoundaries(t *testing.T) {
	cases := []struct {
		roll uint32
		want Rarity
	}{
		{0, Common},
		{499, Common},
		{500, Uncommon},
		{749, Uncommon},
		{750, Rare},
		{899, Rare},
		{900, DoubleRare},
		{959, DoubleRare},
		{960, VeryRare},
		{989, VeryRare},
		{990, SuperRare},
		{998, SuperRare},
		{999, MegaRare},
		{1999, MegaRare},
		{2100, Common},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RollRarity(tc.roll), "roll %d", tc.roll)
	}
}

func TestPick(t *testing.T) {
	// 2100 % 1000 = 100 selects common; 2100 % 60 = 0 selects the first common.
	u := Pick(2100)
	assert.EqualValues(t, 132, u.ID)

	// 999 is mega rare; 999 % 3 = 0.
	assert.EqualValues(t, 1, Pick(999).ID)
	// 1999 is mega rare; 1999 % 3 = 1.
	assert.EqualValues(t, 2, Pick(1999).ID)
}

func TestStarters(t *testing.T) {
	starters := Starters()
	require.Len(t, starters, 3)
	assert.EqualValues(t, 179, starters[0].ID)
	assert.EqualValues(t, 175, starters[1].ID)
	assert.EqualValues(t, 147, starters[2].ID)
	for _, s := range starters {
		assert.EqualValues(t, Common, s.Rarity)
	}
}

func TestTiers(t *testing.T) {
	prev := Tier{}
	for level := uint8(1); level <= MaxTier; level++ {
		tier, err := TierInfo(level)
		require.NoError(t, err)
		assert.Equal(t, level, tier.Level)
		assert.Greater(t, tier.MaxActiveUnits, prev.MaxActiveUnits)
		assert.Greater(t, tier.CapacityLimit, prev.CapacityLimit)
		assert.LessOrEqual(t, int(tier.MaxActiveUnits), core.MaxActiveUnits)
		prev = tier
	}

	one, err := TierInfo(1)
	require.NoError(t, err)
	assert.Equal(t, core.Facility{Tier: 1, MaxActiveUnits: 2, CapacityLimit: 15}, one.Facility())
	assert.Zero(t, one.Cost)

	_, err = TierInfo(MaxTier + 1)
	assert.ErrorIs(t, err, core.ErrInvalidTier)
}

func TestSearch(t *testing.T) {
	got := Search("Puffbird", 3)
	require.NotEmpty(t, got)
	assert.EqualValues(t, 132, got[0].ID)

	assert.Empty(t, Search("   ", 5))
	assert.Len(t, Search("o", 4), 4)
}
