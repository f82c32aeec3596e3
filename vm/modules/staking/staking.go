// Package staking handles the auxiliary token staking transactions.
package staking

import (
	"errors"
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/game"
	"github.com/tolelom/tolfarm/metrics"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxStakeTokens, vm.Anyone, vm.Decode(handleStake))
	vm.Register(core.TxUnstakeTokens, vm.Anyone, vm.Decode(handleUnstake))
	vm.Register(core.TxClaimStakingRewards, vm.Anyone, vm.Decode(handleClaim))
	vm.Register(core.TxUpdateSolRewards, vm.PoolAuthority, vm.Decode(handleUpdateSolRewards))
}

// session loads the staking pool of mint and the sender's position,
// creating an empty position on first use.
func session(ctx *vm.Context, mint string) (*game.StakingSession, error) {
	poolAddr, err := crypto.StakingPoolAddress(mint)
	if err != nil {
		return nil, err
	}
	sp, err := ctx.State.GetStakingPool(poolAddr)
	if err != nil {
		return nil, fmt.Errorf("staking pool for mint %s: %w", mint, err)
	}
	authority, err := crypto.PoolAddress(mint)
	if err != nil {
		return nil, err
	}
	posAddr, err := crypto.StakePositionAddress(ctx.Tx.From, mint)
	if err != nil {
		return nil, err
	}
	pos, err := ctx.State.GetStakePosition(posAddr)
	if errors.Is(err, core.ErrNotFound) {
		pos = core.NewStakePosition(posAddr, ctx.Tx.From, mint)
	} else if err != nil {
		return nil, err
	}
	return &game.StakingSession{
		Pool:          sp,
		Position:      pos,
		Ledger:        ctx.Ledger,
		MintAuthority: authority,
		Now:           ctx.Slot(),
	}, nil
}

func save(ctx *vm.Context, s *game.StakingSession) error {
	if err := ctx.State.SetStakingPool(s.Pool); err != nil {
		return err
	}
	return ctx.State.SetStakePosition(s.Position)
}

func record(c game.StakingClaim) {
	if c.Tokens > 0 {
		metrics.RewardsMinted.WithLabelValues("staking").Add(float64(c.Tokens))
	}
}

func handleStake(ctx *vm.Context, p core.StakeTokensPayload) error {
	s, err := session(ctx, p.Mint)
	if err != nil {
		return err
	}
	claim, err := s.Stake(p.Amount)
	if err != nil {
		return err
	}
	if err := save(ctx, s); err != nil {
		return err
	}
	record(claim)

	ctx.Emit(events.EventTokensStaked, map[string]any{
		"owner":       ctx.Tx.From,
		"mint":        p.Mint,
		"amount":      p.Amount,
		"staked":      s.Position.Amount,
		"sol_paid":    claim.Sol,
		"tokens_paid": claim.Tokens,
	})
	return nil
}

func handleUnstake(ctx *vm.Context, p core.StakeTokensPayload) error {
	s, err := session(ctx, p.Mint)
	if err != nil {
		return err
	}
	claim, err := s.Unstake(p.Amount)
	if err != nil {
		return err
	}
	if err := save(ctx, s); err != nil {
		return err
	}
	record(claim)

	ctx.Emit(events.EventTokensUnstaked, map[string]any{
		"owner":       ctx.Tx.From,
		"mint":        p.Mint,
		"amount":      p.Amount,
		"staked":      s.Position.Amount,
		"sol_paid":    claim.Sol,
		"tokens_paid": claim.Tokens,
	})
	return nil
}

func handleClaim(ctx *vm.Context, p core.MintPayload) error {
	s, err := session(ctx, p.Mint)
	if err != nil {
		return err
	}
	claim, err := s.Claim()
	if err != nil {
		return err
	}
	if err := save(ctx, s); err != nil {
		return err
	}
	record(claim)

	ctx.Emit(events.EventStakingClaimed, map[string]any{
		"owner":  ctx.Tx.From,
		"mint":   p.Mint,
		"sol":    claim.Sol,
		"tokens": claim.Tokens,
	})
	return nil
}

// handleUpdateSolRewards folds pending vault deposits into the pool
// accumulators. Only the pool authority may call it.
func handleUpdateSolRewards(ctx *vm.Context, p core.MintPayload) error {
	addr, err := crypto.StakingPoolAddress(p.Mint)
	if err != nil {
		return err
	}
	sp, err := ctx.State.GetStakingPool(addr)
	if err != nil {
		return fmt.Errorf("staking pool for mint %s: %w", p.Mint, err)
	}
	s := &game.StakingSession{Pool: sp, Ledger: ctx.Ledger, Now: ctx.Slot()}
	if err := s.Update(); err != nil {
		return err
	}
	if err := ctx.State.SetStakingPool(sp); err != nil {
		return err
	}

	ctx.Emit(events.EventSolRewardsSynced, map[string]any{
		"mint":            p.Mint,
		"sol_distributed": sp.SolDistributed,
		"total_staked":    sp.TotalStaked,
	})
	return nil
}
