package core

import (
	sdkmath "cosmossdk.io/math"
)

// Economics holds the adjustable economic parameters of a pool. Every field
// can be changed by the pool authority through update_parameter. Percentages
// are 0..100 (referral 0..50); PurchaseFee and GambleFee are native
// currency, BoosterPackCost is in tokens.
type Economics struct {
	BurnRatePct            uint64 `json:"burn_rate_pct" toml:"burn_rate_pct"`
	ReferralRatePct        uint64 `json:"referral_rate_pct" toml:"referral_rate_pct"`
	UpgradeCooldownSlots   uint64 `json:"upgrade_cooldown_slots" toml:"upgrade_cooldown_slots"`
	DustThresholdDivisor   uint64 `json:"dust_threshold_divisor" toml:"dust_threshold_divisor"`
	PurchaseFee            uint64 `json:"purchase_fee" toml:"purchase_fee"`
	BoosterPackCost        uint64 `json:"booster_pack_cost" toml:"booster_pack_cost"`
	GambleFee              uint64 `json:"gamble_fee" toml:"gamble_fee"`
	GambleWinThresholdPct  uint64 `json:"gamble_win_threshold_pct" toml:"gamble_win_threshold_pct"`
	GamblePayoutMultiplier uint64 `json:"gamble_payout_multiplier" toml:"gamble_payout_multiplier"`
	RecycleSuccessPct      uint64 `json:"recycle_success_pct" toml:"recycle_success_pct"`
}

// DefaultEconomics returns the launch parameters.
func DefaultEconomics() Economics {
	return Economics{
		BurnRatePct:            75,
		ReferralRatePct:        25,
		UpgradeCooldownSlots:   108_000,
		DustThresholdDivisor:   1000,
		PurchaseFee:            300_000_000,
		BoosterPackCost:        100_000_000,
		GambleFee:              100_000_000,
		GambleWinThresholdPct:  3,
		GamblePayoutMultiplier: 10,
		RecycleSuccessPct:      20,
	}
}

// PoolStats are informational counters. Nothing depends on them.
type PoolStats struct {
	Players            uint64 `json:"players"`
	BoosterPacksOpened uint64 `json:"booster_packs_opened"`
	RecycleAttempts    uint64 `json:"recycle_attempts"`
	RecycleSuccesses   uint64 `json:"recycle_successes"`
	Gambles            uint64 `json:"gambles"`
	GambleWins         uint64 `json:"gamble_wins"`
}

// GlobalPool is the per-mint emission pool shared by every player.
//
// CumulativeMinted - BurnedTotal never exceeds TotalSupply, and
// AccRewardPerYieldUnit never decreases.
type GlobalPool struct {
	Address    string `json:"address"`
	Authority  string `json:"authority"`
	Mint       string `json:"mint"`
	FeesWallet string `json:"fees_wallet"`

	TotalSupply           uint64 `json:"total_supply"`
	BurnedTotal           uint64 `json:"burned_total"`
	CumulativeMinted      uint64 `json:"cumulative_minted"`
	GenesisSlot           uint64 `json:"genesis_slot"`
	HalvingIntervalSlots  uint64 `json:"halving_interval_slots"`
	InitialRate           uint64 `json:"initial_rate"`
	CurrentRate           uint64 `json:"current_rate"`
	LastProcessedHalvings uint64 `json:"last_processed_halvings"`

	AccRewardPerYieldUnit sdkmath.Uint `json:"acc_reward_per_yield_unit"`
	LastRewardSlot        uint64       `json:"last_reward_slot"`

	TotalCapacityConsumed uint64 `json:"total_capacity_consumed"`
	TotalYieldPower       uint64 `json:"total_yield_power"`

	ProductionEnabled bool      `json:"production_enabled"`
	Economics         Economics `json:"economics"`
	Stats             PoolStats `json:"stats"`
}

// RemainingSupply is the amount that may still be minted, counting burns
// as returned supply. Saturates at zero.
func (p *GlobalPool) RemainingSupply() uint64 {
	var outstanding uint64
	if p.CumulativeMinted > p.BurnedTotal {
		outstanding = p.CumulativeMinted - p.BurnedTotal
	}
	if outstanding >= p.TotalSupply {
		return 0
	}
	return p.TotalSupply - outstanding
}

// DustThreshold is the remaining-supply floor at which emission stops.
// A zero divisor disables the floor.
func (p *GlobalPool) DustThreshold() uint64 {
	if p.Economics.DustThresholdDivisor == 0 {
		return 0
	}
	return p.TotalSupply / p.Economics.DustThresholdDivisor
}

// NewGlobalPool returns a pool with a zero accumulator and default economics.
func NewGlobalPool(address, authority, mint string) *GlobalPool {
	return &GlobalPool{
		Address:               address,
		Authority:             authority,
		Mint:                  mint,
		AccRewardPerYieldUnit: sdkmath.ZeroUint(),
		Economics:             DefaultEconomics(),
	}
}
