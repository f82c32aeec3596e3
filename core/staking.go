package core

import (
	sdkmath "cosmossdk.io/math"
)

// StakingPool is the auxiliary token-staking pool of a mint. It runs two
// accumulators: one fed by native deposits into SolVault and one fed by a
// fixed per-slot token emission.
type StakingPool struct {
	Address   string `json:"address"`
	Mint      string `json:"mint"`
	Authority string `json:"authority"`
	Vault     string `json:"vault"`     // token owner holding staked tokens
	SolVault  string `json:"sol_vault"` // native account receiving deposits

	TotalStaked     uint64 `json:"total_staked"`
	LockupSlots     uint64 `json:"lockup_slots"`
	TokenRewardRate uint64 `json:"token_reward_rate"` // tokens per slot
	LastUpdateSlot  uint64 `json:"last_update_slot"`

	AccSolPerToken   sdkmath.Uint `json:"acc_sol_per_token"`
	AccTokenPerToken sdkmath.Uint `json:"acc_token_per_token"`

	// SolDistributed is the native amount already folded into
	// AccSolPerToken; SolClaimed is what has left SolVault as payouts.
	SolDistributed    uint64 `json:"sol_distributed"`
	SolClaimed        uint64 `json:"sol_claimed"`
	TokensDistributed uint64 `json:"tokens_distributed"`
}

// StakePosition is one owner's stake in a StakingPool.
type StakePosition struct {
	Address       string       `json:"address"`
	Owner         string       `json:"owner"`
	Mint          string       `json:"mint"`
	Amount        uint64       `json:"amount"`
	LastStakeSlot uint64       `json:"last_stake_slot"`
	LastAccSol    sdkmath.Uint `json:"last_acc_sol"`
	LastAccToken  sdkmath.Uint `json:"last_acc_token"`
	SolClaimed    uint64       `json:"sol_claimed"`
	TokensClaimed uint64       `json:"tokens_claimed"`
}

// NewStakingPool returns an empty staking pool with zero accumulators.
func NewStakingPool(address, mint, authority string) *StakingPool {
	return &StakingPool{
		Address:          address,
		Mint:             mint,
		Authority:        authority,
		AccSolPerToken:   sdkmath.ZeroUint(),
		AccTokenPerToken: sdkmath.ZeroUint(),
	}
}

// NewStakePosition returns an empty position with zero checkpoints.
func NewStakePosition(address, owner, mint string) *StakePosition {
	return &StakePosition{
		Address:      address,
		Owner:        owner,
		Mint:         mint,
		LastAccSol:   sdkmath.ZeroUint(),
		LastAccToken: sdkmath.ZeroUint(),
	}
}
