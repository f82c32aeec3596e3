package game

import (
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/ledger"
	"github.com/tolelom/tolfarm/reward"
)

// StakingSession operates on the auxiliary token staking pool of a mint.
// MintAuthority signs token reward mints; it is the GlobalPool address.
type StakingSession struct {
	Pool          *core.StakingPool
	Position      *core.StakePosition
	Ledger        ledger.Ledger
	MintAuthority string
	Now           uint64
}

// StakingClaim is what one settlement paid out.
type StakingClaim struct {
	Sol    uint64
	Tokens uint64
}

// Update folds new SOL deposits and elapsed token emission into the pool
// accumulators.
func (s *StakingSession) Update() error {
	balance, err := s.Ledger.NativeBalance(s.Pool.SolVault)
	if err != nil {
		return err
	}
	reward.UpdateStaking(s.Pool, balance, s.Now)
	return nil
}

// settle pays the position's pending rewards and moves its checkpoints.
func (s *StakingSession) settle() (StakingClaim, error) {
	if err := s.Update(); err != nil {
		return StakingClaim{}, err
	}
	sol, tokens := reward.StakePending(s.Pool, s.Position)
	if err := s.Ledger.TransferNative(s.Pool.SolVault, s.Position.Owner, sol); err != nil {
		return StakingClaim{}, err
	}
	if err := s.Ledger.MintTo(s.Pool.Mint, s.MintAuthority, s.Position.Owner, tokens); err != nil {
		return StakingClaim{}, err
	}
	reward.CheckpointStake(s.Pool, s.Position, sol, tokens)
	return StakingClaim{Sol: sol, Tokens: tokens}, nil
}

// Stake settles, then moves amount tokens from the owner into the vault and
// restarts the lockup.
func (s *StakingSession) Stake(amount uint64) (StakingClaim, error) {
	if amount == 0 {
		return StakingClaim{}, core.ErrZeroAmount
	}
	balance, err := s.Ledger.TokenBalance(s.Pool.Mint, s.Position.Owner)
	if err != nil {
		return StakingClaim{}, err
	}
	if balance < amount {
		return StakingClaim{}, core.ErrInsufficientFunds
	}
	claim, err := s.settle()
	if err != nil {
		return StakingClaim{}, err
	}
	total, err := reward.CheckedAdd(s.Pool.TotalStaked, amount)
	if err != nil {
		return StakingClaim{}, err
	}
	position, err := reward.CheckedAdd(s.Position.Amount, amount)
	if err != nil {
		return StakingClaim{}, err
	}
	if err := s.Ledger.Transfer(s.Pool.Mint, s.Position.Owner, s.Pool.Vault, amount); err != nil {
		return StakingClaim{}, err
	}
	s.Pool.TotalStaked = total
	s.Position.Amount = position
	s.Position.LastStakeSlot = s.Now
	return claim, nil
}

// Unstake settles, then returns amount tokens from the vault. It fails
// while the lockup since the last stake is running.
func (s *StakingSession) Unstake(amount uint64) (StakingClaim, error) {
	if amount == 0 {
		return StakingClaim{}, core.ErrZeroAmount
	}
	if amount > s.Position.Amount {
		return StakingClaim{}, fmt.Errorf("%w: staked %d, requested %d", core.ErrInsufficientStake, s.Position.Amount, amount)
	}
	unlock := reward.SaturatingAdd(s.Position.LastStakeSlot, s.Pool.LockupSlots)
	if s.Now < unlock {
		return StakingClaim{}, fmt.Errorf("%w: unlocks at slot %d", core.ErrLockupActive, unlock)
	}
	claim, err := s.settle()
	if err != nil {
		return StakingClaim{}, err
	}
	if err := s.Ledger.Transfer(s.Pool.Mint, s.Pool.Vault, s.Position.Owner, amount); err != nil {
		return StakingClaim{}, err
	}
	s.Pool.TotalStaked -= amount
	s.Position.Amount -= amount
	return claim, nil
}

// Claim pays pending rewards without changing the stake.
func (s *StakingSession) Claim() (StakingClaim, error) {
	return s.settle()
}
