package game

import (
	"fmt"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/reward"
)

// PurchaseResult describes a completed starter purchase.
type PurchaseResult struct {
	Fee      uint64
	Referral uint64
	Units    []core.Unit
}

// Purchase sets up a fresh player: pays the native fee, grants the starter
// units and the tier 1 facility, and checkpoints the player at the current
// accumulator so it earns nothing from before it joined.
func (s *Session) Purchase(referrer string) (PurchaseResult, error) {
	if err := s.requireProduction(); err != nil {
		return PurchaseResult{}, err
	}
	if referrer != "" && referrer == s.Player.Owner {
		return PurchaseResult{}, core.ErrSelfReferral
	}
	if s.Player.Facility.Tier != 0 || s.Player.UnitCount != 0 {
		return PurchaseResult{}, core.ErrPlayerExists
	}
	starter, err := catalog.TierInfo(1)
	if err != nil {
		return PurchaseResult{}, err
	}

	fee := s.Pool.Economics.PurchaseFee
	var referral uint64
	if referrer != "" {
		referral = reward.Percent(fee, s.Pool.Economics.ReferralRatePct)
	}
	if err := s.Ledger.TransferNative(s.Player.Owner, referrer, referral); err != nil {
		return PurchaseResult{}, err
	}
	if err := s.Ledger.TransferNative(s.Player.Owner, s.Pool.FeesWallet, fee-referral); err != nil {
		return PurchaseResult{}, err
	}

	reward.Advance(s.Pool, s.Now)
	s.Player.Referrer = referrer
	s.Player.Facility = starter.Facility()
	for _, u := range catalog.Starters() {
		if err := s.Player.AddUnit(u); err != nil {
			return PurchaseResult{}, err
		}
	}
	s.Player.LastAccRewardPerYieldUnit = s.Pool.AccRewardPerYieldUnit
	s.Player.LastClaimSlot = s.Now
	s.Player.LastUpgradeSlot = s.Now
	s.Player.Stats.NativeSpent = reward.SaturatingAdd(s.Player.Stats.NativeSpent, fee)
	s.Pool.Stats.Players = reward.SaturatingAdd(s.Pool.Stats.Players, 1)

	return PurchaseResult{
		Fee:      fee,
		Referral: referral,
		Units:    append([]core.Unit(nil), s.Player.UnitList()...),
	}, nil
}

// StakeUnit activates the unit at index. Returns the staked unit and the
// reward flushed beforehand.
func (s *Session) StakeUnit(index int) (core.Unit, uint64, error) {
	if index < 0 || index >= int(s.Player.UnitCount) {
		return core.Unit{}, 0, core.ErrInvalidUnitIndex
	}
	flushed, err := s.flush()
	if err != nil {
		return core.Unit{}, 0, err
	}
	u, err := s.Player.ActivateUnit(index)
	if err != nil {
		return core.Unit{}, 0, err
	}
	if err := s.addContribution(u); err != nil {
		return core.Unit{}, 0, err
	}
	return u, flushed, nil
}

// UnstakeUnit deactivates the unit at index.
func (s *Session) UnstakeUnit(index int) (core.Unit, uint64, error) {
	if index < 0 || index >= int(s.Player.UnitCount) {
		return core.Unit{}, 0, core.ErrInvalidUnitIndex
	}
	if !s.Player.Active.Has(index) {
		return core.Unit{}, 0, core.ErrUnitNotActive
	}
	flushed, err := s.flush()
	if err != nil {
		return core.Unit{}, 0, err
	}
	u, err := s.Player.DeactivateUnit(index)
	if err != nil {
		return core.Unit{}, 0, err
	}
	if err := s.removeContribution(u); err != nil {
		return core.Unit{}, 0, err
	}
	return u, flushed, nil
}

// DiscardUnit destroys the unit at index. An active unit is unstaked as
// part of the removal.
func (s *Session) DiscardUnit(index int) (core.Unit, uint64, error) {
	if err := s.requireProduction(); err != nil {
		return core.Unit{}, 0, err
	}
	if index < 0 || index >= int(s.Player.UnitCount) {
		return core.Unit{}, 0, core.ErrInvalidUnitIndex
	}
	flushed, err := s.flush()
	if err != nil {
		return core.Unit{}, 0, err
	}
	u, wasActive, err := s.Player.RemoveUnit(index)
	if err != nil {
		return core.Unit{}, 0, err
	}
	if wasActive {
		if err := s.removeContribution(u); err != nil {
			return core.Unit{}, 0, err
		}
	}
	return u, flushed, nil
}

// Upgrade moves the facility exactly one tier up, paying the tier cost in
// tokens.
func (s *Session) Upgrade(tier uint8) (catalog.Tier, error) {
	if err := s.requireProduction(); err != nil {
		return catalog.Tier{}, err
	}
	if tier != s.Player.Facility.Tier+1 {
		return catalog.Tier{}, fmt.Errorf("%w: at tier %d, requested %d", core.ErrInvalidTier, s.Player.Facility.Tier, tier)
	}
	next, err := catalog.TierInfo(tier)
	if err != nil {
		return catalog.Tier{}, err
	}
	readyAt := reward.SaturatingAdd(s.Player.LastUpgradeSlot, s.Pool.Economics.UpgradeCooldownSlots)
	if s.Now < readyAt {
		return catalog.Tier{}, fmt.Errorf("%w: upgrade available at slot %d", core.ErrCooldownNotExpired, readyAt)
	}

	if _, err := s.flush(); err != nil {
		return catalog.Tier{}, err
	}
	if _, err := s.payTokens(next.Cost, false); err != nil {
		return catalog.Tier{}, err
	}
	s.Player.Facility = next.Facility()
	s.Player.LastUpgradeSlot = s.Now
	return next, nil
}

// Claim settles and mints the player's pending reward. A second claim in
// the same slot fails with core.ErrCooldownNotExpired.
func (s *Session) Claim() (uint64, error) {
	amount, err := reward.Settle(s.Pool, s.Player, s.Now)
	if err != nil {
		return 0, err
	}
	if err := s.mintReward(amount); err != nil {
		return 0, err
	}
	return amount, nil
}
