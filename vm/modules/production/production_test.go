package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/game"
	"github.com/tolelom/tolfarm/internal/gametest"
	"github.com/tolelom/tolfarm/wallet"
)

const fund = 1_000_000_000

func purchase(c *gametest.Chain, w *wallet.Wallet, referrer string) error {
	return c.Do(w, func(n uint64) (*core.Transaction, error) { return w.PurchaseFacility(c.Mint, referrer, n, 0) })
}

func TestPurchaseSplitsFeeWithReferrer(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	bob := c.Wallet(0)

	require.NoError(t, purchase(c, alice, bob.Address()))

	fee := core.DefaultEconomics().PurchaseFee
	assert.Equal(t, uint64(fund)-fee, c.Native(alice.Address()))
	assert.Equal(t, fee/4, c.Native(bob.Address()))
	assert.Equal(t, fee-fee/4, c.Native(c.Fees.Address()))

	pl := c.Player(alice)
	assert.Equal(t, uint8(1), pl.Facility.Tier)
	assert.Equal(t, bob.Address(), pl.Referrer)
	require.Len(t, pl.UnitList(), len(catalog.StarterIDs))
	for i, id := range catalog.StarterIDs {
		assert.Equal(t, id, pl.Units[i].ID)
	}
	assert.Equal(t, c.Slot(), pl.LastClaimSlot)
	assert.Equal(t, uint64(1), c.GlobalPool().Stats.Players)
	require.Len(t, c.EventsOf(events.EventFacilityPurchased), 1)
}

func TestPurchaseRejections(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	poor := c.Wallet(1)

	assert.ErrorContains(t, purchase(c, alice, alice.Address()), core.ErrSelfReferral.Error())
	assert.ErrorContains(t, purchase(c, poor, ""), core.ErrInsufficientFunds.Error())

	require.NoError(t, purchase(c, alice, ""))
	assert.ErrorContains(t, purchase(c, alice, ""), core.ErrPlayerExists.Error())
	assert.Equal(t, uint64(fund)-core.DefaultEconomics().PurchaseFee, c.Native(alice.Address()))
}

func TestStakeAccruesAndClaim(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	require.NoError(t, purchase(c, alice, ""))

	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 0, n, 0) })
	staked := c.Slot()
	pl := c.Player(alice)
	assert.True(t, pl.Active.Has(0))
	assert.Equal(t, uint64(4), pl.ActiveYieldPower)
	assert.Equal(t, uint64(4), c.GlobalPool().TotalYieldPower)

	c.Skip(5)
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.ClaimRewards(c.Mint, n, 0) })

	// Sole staker receives the whole emission since staking.
	want := (c.Slot() - staked) * gametest.DefaultPool().InitialRate
	assert.Equal(t, want, c.Tokens(alice.Address()))
	assert.Equal(t, want, c.GlobalPool().CumulativeMinted)
	assert.Equal(t, want, c.Player(alice).CumulativeClaimed)
}

func TestSecondClaimInSlotFails(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	require.NoError(t, purchase(c, alice, ""))
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 0, n, 0) })
	c.Skip(2)

	first := c.Submit(alice, func(n uint64) (*core.Transaction, error) { return alice.ClaimRewards(c.Mint, n, 0) })
	second := c.Submit(alice, func(n uint64) (*core.Transaction, error) { return alice.ClaimRewards(c.Mint, n, 0) })
	block := c.Next()

	require.NoError(t, c.Err(first))
	assert.ErrorContains(t, c.Err(second), core.ErrCooldownNotExpired.Error())
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, first.ID, block.Transactions[0].ID)
}

func TestCapacityLimits(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	require.NoError(t, purchase(c, alice, ""))

	for i := uint8(0); i < 2; i++ {
		c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, i, n, 0) })
	}
	err := c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 2, n, 0) })
	assert.ErrorContains(t, err, core.ErrMachineCapacityExceeded.Error())

	err = c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 0, n, 0) })
	assert.ErrorContains(t, err, core.ErrUnitAlreadyActive.Error())
	err = c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 9, n, 0) })
	assert.ErrorContains(t, err, core.ErrInvalidUnitIndex.Error())
}

func TestUnstakeAndDiscard(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	require.NoError(t, purchase(c, alice, ""))
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 0, n, 0) })
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(c.Mint, 1, n, 0) })
	c.Skip(3)

	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.UnstakeUnit(c.Mint, 0, n, 0) })
	assert.Positive(t, c.Tokens(alice.Address()), "unstake flushes accrued reward")
	err := c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.UnstakeUnit(c.Mint, 0, n, 0) })
	assert.ErrorContains(t, err, core.ErrUnitNotActive.Error())

	// Discarding index 0 shifts the active unit at 1 down to 0.
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.DiscardUnit(c.Mint, 0, n, 0) })
	pl := c.Player(alice)
	assert.Len(t, pl.UnitList(), 2)
	assert.Equal(t, []int{0}, pl.Active.Indices())
	assert.Equal(t, uint64(4), pl.ActiveYieldPower)

	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.DiscardUnit(c.Mint, 0, n, 0) })
	pl = c.Player(alice)
	assert.Len(t, pl.UnitList(), 1)
	assert.Zero(t, pl.Active.Count())
	assert.Zero(t, pl.ActiveYieldPower)
	assert.Zero(t, c.GlobalPool().TotalYieldPower)
	assert.Zero(t, c.GlobalPool().TotalCapacityConsumed)
}

func TestUpgrade(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	require.NoError(t, purchase(c, alice, ""))

	upgrade := func(tier uint8) error {
		return c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.UpgradeFacility(c.Mint, tier, n, 0) })
	}

	assert.ErrorContains(t, upgrade(2), core.ErrCooldownNotExpired.Error())
	c.MustDo(c.Validator, func(n uint64) (*core.Transaction, error) {
		return c.Validator.UpdateParameter(c.Mint, game.ParamUpgradeCooldownSlots, 1, n, 0)
	})

	assert.ErrorContains(t, upgrade(3), core.ErrInvalidTier.Error())
	assert.ErrorContains(t, upgrade(2), core.ErrInsufficientFunds.Error())

	tier2, err := catalog.TierInfo(2)
	require.NoError(t, err)
	c.GiveTokens(alice.Address(), tier2.Cost)
	burnedBefore := c.GlobalPool().BurnedTotal
	require.NoError(t, upgrade(2))

	pl := c.Player(alice)
	assert.Equal(t, uint8(2), pl.Facility.Tier)
	assert.Equal(t, tier2.CapacityLimit, pl.Facility.CapacityLimit)
	assert.Equal(t, c.Slot(), pl.LastUpgradeSlot)
	assert.Zero(t, c.Tokens(alice.Address()))

	burned := tier2.Cost * core.DefaultEconomics().BurnRatePct / 100
	assert.Equal(t, burnedBefore+burned, c.GlobalPool().BurnedTotal)
	assert.Equal(t, tier2.Cost-burned, c.Tokens(c.Fees.Address()))
}

func TestProductionDisabled(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(fund)
	c.MustDo(c.Validator, func(n uint64) (*core.Transaction, error) {
		return c.Validator.ToggleProduction(c.Mint, false, n, 0)
	})
	assert.ErrorContains(t, purchase(c, alice, ""), core.ErrProductionDisabled.Error())
	assert.Equal(t, uint64(fund), c.Native(alice.Address()))
}
