// Package game implements the player-facing state machine: buying the
// starter facility, staking units, upgrading, claiming, and the
// commit/settle/cancel randomized actions.
//
// A Session operates on one pool and one player at one slot. It never
// persists anything itself; the caller loads the records, runs one
// operation and stores them back inside a single state snapshot, so a
// failed operation leaves nothing behind.
package game

import (
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/ledger"
	"github.com/tolelom/tolfarm/oracle"
	"github.com/tolelom/tolfarm/reward"
)

const (
	// BoosterSize is the number of units in one booster pack.
	BoosterSize = 5
	// MinRandomnessDelaySlots must pass between the committed seed slot
	// and the settle.
	MinRandomnessDelaySlots = 2
	// CancelTimeoutSlots must pass after the committed seed slot before a
	// pending action can be abandoned.
	CancelTimeoutSlots = 150
)

// Session binds the collaborators of one operation.
type Session struct {
	Pool   *core.GlobalPool
	Player *core.Player
	Ledger ledger.Ledger
	Oracle oracle.Oracle
	Now    uint64
}

// flush settles the player's accrued rewards at Now and mints them.
func (s *Session) flush() (uint64, error) {
	amount := reward.Flush(s.Pool, s.Player, s.Now)
	if err := s.mintReward(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

func (s *Session) mintReward(amount uint64) error {
	if amount == 0 {
		return nil
	}
	return s.Ledger.MintTo(s.Pool.Mint, s.Pool.Address, s.Player.Owner, amount)
}

func (s *Session) requireProduction() error {
	if !s.Pool.ProductionEnabled {
		return core.ErrProductionDisabled
	}
	return nil
}

// addContribution and removeContribution keep pool aggregates paired with
// the player change that caused them.
func (s *Session) addContribution(u core.Unit) error {
	return reward.AddContribution(s.Pool, u)
}

func (s *Session) removeContribution(u core.Unit) error {
	return reward.RemoveContribution(s.Pool, u)
}

// payTokens burns the configured share of cost from the player and sends
// the rest to the fees wallet, minus a referral cut when the player has a
// referrer and withReferral is set. It returns the referral amount.
func (s *Session) payTokens(cost uint64, withReferral bool) (uint64, error) {
	if cost == 0 {
		return 0, nil
	}
	balance, err := s.Ledger.TokenBalance(s.Pool.Mint, s.Player.Owner)
	if err != nil {
		return 0, err
	}
	if balance < cost {
		return 0, core.ErrInsufficientFunds
	}

	burn := reward.Percent(cost, s.Pool.Economics.BurnRatePct)
	rest := cost - burn
	var referral uint64
	if withReferral && s.Player.Referrer != "" {
		referral = reward.Percent(rest, s.Pool.Economics.ReferralRatePct)
	}

	if err := s.Ledger.Burn(s.Pool.Mint, s.Player.Owner, burn); err != nil {
		return 0, err
	}
	reward.RecordBurn(s.Pool, burn)
	if err := s.Ledger.Transfer(s.Pool.Mint, s.Player.Owner, s.Player.Referrer, referral); err != nil {
		return 0, err
	}
	if err := s.Ledger.Transfer(s.Pool.Mint, s.Player.Owner, s.Pool.FeesWallet, rest-referral); err != nil {
		return 0, err
	}
	s.Player.Stats.TokensSpent = reward.SaturatingAdd(s.Player.Stats.TokensSpent, cost)
	return referral, nil
}
