// Package admin handles pool creation and the authority-only pool
// operations.
package admin

import (
	"errors"
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/game"
	"github.com/tolelom/tolfarm/reward"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxInitializePool, vm.Anyone, vm.Decode(handleInitializePool))
	vm.Register(core.TxToggleProduction, vm.PoolAuthority, vm.Decode(handleToggleProduction))
	vm.Register(core.TxUpdateParameter, vm.PoolAuthority, vm.Decode(handleUpdateParameter))
	vm.Register(core.TxAdvancePoolManual, vm.PoolAuthority, vm.Decode(handleAdvancePool))
	vm.Register(core.TxResetPlayer, vm.PoolAuthority, vm.Decode(handleResetPlayer))
}

func handleInitializePool(ctx *vm.Context, p core.InitializePoolPayload) error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", core.ErrInvalidParameter)
	}
	if p.TotalSupply == 0 || p.InitialRate == 0 || p.HalvingIntervalSlots == 0 {
		return fmt.Errorf("%w: supply, rate and halving interval must be > 0", core.ErrInvalidParameter)
	}

	mint, err := crypto.MintAddress(ctx.Tx.From, p.Symbol)
	if err != nil {
		return err
	}
	poolAddr, err := crypto.PoolAddress(mint)
	if err != nil {
		return err
	}
	if _, err := ctx.State.GetPool(poolAddr); err == nil {
		return core.ErrPoolExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}
	if _, err := ctx.Ledger.CreateMint(mint, p.Symbol, poolAddr, p.Decimals); err != nil {
		return err
	}

	now := ctx.Slot()
	pool := core.NewGlobalPool(poolAddr, ctx.Tx.From, mint)
	pool.FeesWallet = p.FeesWallet
	if pool.FeesWallet == "" {
		pool.FeesWallet = ctx.Tx.From
	}
	pool.TotalSupply = p.TotalSupply
	pool.InitialRate = p.InitialRate
	pool.CurrentRate = p.InitialRate
	pool.HalvingIntervalSlots = p.HalvingIntervalSlots
	pool.GenesisSlot = now
	pool.LastRewardSlot = now
	pool.ProductionEnabled = true
	if p.Economics != nil {
		pool.Economics = *p.Economics
	}
	for name, value := range map[string]uint64{
		game.ParamBurnRatePct:           pool.Economics.BurnRatePct,
		game.ParamReferralRatePct:       pool.Economics.ReferralRatePct,
		game.ParamDustThresholdDivisor:  pool.Economics.DustThresholdDivisor,
		game.ParamGambleWinThresholdPct: pool.Economics.GambleWinThresholdPct,
		game.ParamRecycleSuccessPct:     pool.Economics.RecycleSuccessPct,
	} {
		if err := game.ValidateParameter(name, value); err != nil {
			return err
		}
	}

	stakingAddr, err := crypto.StakingPoolAddress(mint)
	if err != nil {
		return err
	}
	vault, err := crypto.StakingVaultAddress(mint)
	if err != nil {
		return err
	}
	solVault, err := crypto.SolRewardsAddress(mint)
	if err != nil {
		return err
	}
	sp := core.NewStakingPool(stakingAddr, mint, ctx.Tx.From)
	sp.Vault = vault
	sp.SolVault = solVault
	sp.LockupSlots = p.StakingLockupSlots
	sp.TokenRewardRate = p.TokenRewardRate
	sp.LastUpdateSlot = now

	if err := ctx.State.SetPool(pool); err != nil {
		return err
	}
	if err := ctx.State.SetStakingPool(sp); err != nil {
		return err
	}

	ctx.Emit(events.EventPoolInitialized, map[string]any{
		"mint":         mint,
		"pool":         poolAddr,
		"staking_pool": stakingAddr,
		"authority":    ctx.Tx.From,
		"total_supply": p.TotalSupply,
		"initial_rate": p.InitialRate,
	})
	return nil
}

func handleToggleProduction(ctx *vm.Context, p core.ToggleProductionPayload) error {
	pool := ctx.Admin
	game.ToggleProduction(pool, p.Enabled, ctx.Slot())
	if err := ctx.State.SetPool(pool); err != nil {
		return err
	}

	ctx.Emit(events.EventProductionToggled, map[string]any{
		"mint":    p.Mint,
		"enabled": p.Enabled,
	})
	return nil
}

func handleUpdateParameter(ctx *vm.Context, p core.UpdateParameterPayload) error {
	pool := ctx.Admin
	old, err := game.UpdateParameter(pool, p.Name, p.Value, ctx.Slot())
	if err != nil {
		return err
	}
	if err := ctx.State.SetPool(pool); err != nil {
		return err
	}

	ctx.Emit(events.EventParameterUpdated, map[string]any{
		"mint": p.Mint,
		"name": p.Name,
		"old":  old,
		"new":  p.Value,
	})
	return nil
}

func handleAdvancePool(ctx *vm.Context, p core.MintPayload) error {
	pool := ctx.Admin
	accrued := reward.Advance(pool, ctx.Slot())
	if err := ctx.State.SetPool(pool); err != nil {
		return err
	}

	ctx.Emit(events.EventPoolAdvanced, map[string]any{
		"mint":         p.Mint,
		"accrued":      accrued,
		"current_rate": pool.CurrentRate,
		"acc":          pool.AccRewardPerYieldUnit.String(),
	})
	return nil
}

func handleResetPlayer(ctx *vm.Context, p core.ResetPlayerPayload) error {
	pool := ctx.Admin
	pl, err := ctx.Player(p.Owner, p.Mint)
	if err != nil {
		return err
	}
	if err := game.Reset(pool, pl, ctx.Slot()); err != nil {
		return err
	}
	if err := ctx.Save(ctx.NewSession(pool, pl)); err != nil {
		return err
	}

	ctx.Emit(events.EventPlayerReset, map[string]any{
		"mint":   p.Mint,
		"owner":  p.Owner,
		"player": pl.Address,
	})
	return nil
}
