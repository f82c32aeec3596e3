package reward

import (
	"math/bits"

	"github.com/tolelom/tolfarm/core"
)

// Advance brings the pool accumulator forward to now and returns the amount
// of emission it accrued.
//
// It is a no-op when now is not after LastRewardSlot, so repeated calls in
// one slot leave the pool unchanged. With no yield power staked the slot
// marker moves but nothing accrues. Once CurrentRate reaches zero, because
// the halvings ran out or remaining supply fell to the dust threshold,
// emission stays stopped even if supply is later returned by burns.
func Advance(p *core.GlobalPool, now uint64) uint64 {
	if now <= p.LastRewardSlot {
		return 0
	}
	if p.TotalYieldPower == 0 || p.CurrentRate == 0 {
		p.LastRewardSlot = now
		return 0
	}

	halvings := HalvingsElapsed(now, p.GenesisSlot, p.HalvingIntervalSlots)
	if limit := MaxHalvings(p.InitialRate); halvings > limit {
		halvings = limit
	}
	rate := RateAfterHalvings(p.InitialRate, halvings)
	remaining := p.RemainingSupply()

	if remaining <= p.DustThreshold() || rate == 0 {
		p.CurrentRate = 0
		p.LastRewardSlot = now
		return 0
	}

	elapsed := now - p.LastRewardSlot
	hi, reward := bits.Mul64(elapsed, rate)
	if hi != 0 || reward > remaining {
		reward = remaining
	}

	p.AccRewardPerYieldUnit = p.AccRewardPerYieldUnit.Add(accIncrement(reward, p.TotalYieldPower))
	p.CumulativeMinted = SaturatingAdd(p.CumulativeMinted, reward)
	p.CurrentRate = rate
	p.LastRewardSlot = now
	p.LastProcessedHalvings = halvings
	return reward
}

// AddContribution adds a unit's capacity cost and yield power to the pool
// aggregates. It must be paired with the matching player update.
func AddContribution(p *core.GlobalPool, u core.Unit) error {
	capacity, err := CheckedAdd(p.TotalCapacityConsumed, u.CapacityCost)
	if err != nil {
		return err
	}
	yield, err := CheckedAdd(p.TotalYieldPower, u.YieldPower)
	if err != nil {
		return err
	}
	p.TotalCapacityConsumed = capacity
	p.TotalYieldPower = yield
	return nil
}

// RemoveContribution is the inverse of AddContribution.
func RemoveContribution(p *core.GlobalPool, u core.Unit) error {
	capacity, err := CheckedSub(p.TotalCapacityConsumed, u.CapacityCost)
	if err != nil {
		return err
	}
	yield, err := CheckedSub(p.TotalYieldPower, u.YieldPower)
	if err != nil {
		return err
	}
	p.TotalCapacityConsumed = capacity
	p.TotalYieldPower = yield
	return nil
}

// RecordBurn counts burned tokens as returned supply.
func RecordBurn(p *core.GlobalPool, amount uint64) {
	p.BurnedTotal = SaturatingAdd(p.BurnedTotal, amount)
}

// ReserveMint clamps amount to the remaining mintable supply and counts it
// as minted. Used for payouts that bypass the accumulator.
func ReserveMint(p *core.GlobalPool, amount uint64) uint64 {
	if remaining := p.RemainingSupply(); amount > remaining {
		amount = remaining
	}
	p.CumulativeMinted = SaturatingAdd(p.CumulativeMinted, amount)
	return amount
}
