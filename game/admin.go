package game

import (
	"fmt"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/reward"
)

// Parameter names accepted by UpdateParameter.
const (
	ParamBurnRatePct            = "burn_rate_pct"
	ParamReferralRatePct        = "referral_rate_pct"
	ParamUpgradeCooldownSlots   = "upgrade_cooldown_slots"
	ParamDustThresholdDivisor   = "dust_threshold_divisor"
	ParamHalvingIntervalSlots   = "halving_interval_slots"
	ParamPurchaseFee            = "purchase_fee"
	ParamBoosterPackCost        = "booster_pack_cost"
	ParamGambleFee              = "gamble_fee"
	ParamGambleWinThresholdPct  = "gamble_win_threshold_pct"
	ParamGamblePayoutMultiplier = "gamble_payout_multiplier"
	ParamRecycleSuccessPct      = "recycle_success_pct"
)

type paramRule struct {
	min, max uint64
	field    func(p *core.GlobalPool) *uint64
}

var params = map[string]paramRule{
	ParamBurnRatePct:            {0, 100, func(p *core.GlobalPool) *uint64 { return &p.Economics.BurnRatePct }},
	ParamReferralRatePct:        {0, 50, func(p *core.GlobalPool) *uint64 { return &p.Economics.ReferralRatePct }},
	ParamUpgradeCooldownSlots:   {1, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.UpgradeCooldownSlots }},
	ParamDustThresholdDivisor:   {1, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.DustThresholdDivisor }},
	ParamHalvingIntervalSlots:   {1, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.HalvingIntervalSlots }},
	ParamPurchaseFee:            {0, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.PurchaseFee }},
	ParamBoosterPackCost:        {0, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.BoosterPackCost }},
	ParamGambleFee:              {0, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.GambleFee }},
	ParamGambleWinThresholdPct:  {0, 100, func(p *core.GlobalPool) *uint64 { return &p.Economics.GambleWinThresholdPct }},
	ParamGamblePayoutMultiplier: {1, ^uint64(0), func(p *core.GlobalPool) *uint64 { return &p.Economics.GamblePayoutMultiplier }},
	ParamRecycleSuccessPct:      {0, 100, func(p *core.GlobalPool) *uint64 { return &p.Economics.RecycleSuccessPct }},
}

// ValidateParameter checks that name is known and value is within its
// bounds.
func ValidateParameter(name string, value uint64) error {
	rule, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", core.ErrInvalidParameter, name)
	}
	if value < rule.min || value > rule.max {
		return fmt.Errorf("%w: %s=%d outside [%d, %d]", core.ErrInvalidParameter, name, value, rule.min, rule.max)
	}
	return nil
}

// UpdateParameter sets the named pool parameter after bringing the
// accumulator up to now, so slots already elapsed accrue under the old
// value. It returns the previous value.
func UpdateParameter(p *core.GlobalPool, name string, value, now uint64) (uint64, error) {
	if err := ValidateParameter(name, value); err != nil {
		return 0, err
	}
	reward.Advance(p, now)
	field := params[name].field(p)
	old := *field
	*field = value
	return old, nil
}

// ToggleProduction enables or disables the production-gated actions.
func ToggleProduction(p *core.GlobalPool, enabled bool, now uint64) {
	reward.Advance(p, now)
	p.ProductionEnabled = enabled
}

// Reset wipes a player back to a fresh tier 1 facility with no units. Its
// active contribution leaves the pool aggregates and any unclaimed reward
// is forfeited. Owner, mint and referrer are kept.
func Reset(p *core.GlobalPool, pl *core.Player, now uint64) error {
	starter, err := catalog.TierInfo(1)
	if err != nil {
		return err
	}
	capacity, err := reward.CheckedSub(p.TotalCapacityConsumed, pl.ActiveCapacityUsed)
	if err != nil {
		return fmt.Errorf("pool capacity: %w", err)
	}
	yield, err := reward.CheckedSub(p.TotalYieldPower, pl.ActiveYieldPower)
	if err != nil {
		return fmt.Errorf("pool yield power: %w", err)
	}
	reward.Advance(p, now)
	p.TotalCapacityConsumed = capacity
	p.TotalYieldPower = yield

	fresh := core.NewPlayer(pl.Address, pl.Owner, pl.Mint)
	fresh.Referrer = pl.Referrer
	fresh.Facility = starter.Facility()
	fresh.LastAccRewardPerYieldUnit = p.AccRewardPerYieldUnit
	fresh.LastClaimSlot = now
	fresh.LastUpgradeSlot = now
	*pl = *fresh
	return nil
}
