package reward

import (
	"github.com/tolelom/tolfarm/core"
)

// UpdateStaking advances both accumulators of the token staking pool.
//
// The token side accrues TokenRewardRate per slot. The SOL side has no rate:
// whatever landed in the SOL vault since the last update, reconciled as
// vault balance + claimed - distributed, is spread over the current stake.
// With nothing staked, deposits wait in the vault and token emission is
// skipped for those slots.
func UpdateStaking(sp *core.StakingPool, solVaultBalance, now uint64) {
	if sp.TotalStaked == 0 {
		if now > sp.LastUpdateSlot {
			sp.LastUpdateSlot = now
		}
		return
	}

	if now > sp.LastUpdateSlot {
		tokens, err := CheckedMul(now-sp.LastUpdateSlot, sp.TokenRewardRate)
		if err != nil {
			tokens = ^uint64(0)
		}
		if tokens > 0 {
			sp.AccTokenPerToken = sp.AccTokenPerToken.Add(accIncrement(tokens, sp.TotalStaked))
			sp.TokensDistributed = SaturatingAdd(sp.TokensDistributed, tokens)
		}
		sp.LastUpdateSlot = now
	}

	deposits := SaturatingSub(SaturatingAdd(solVaultBalance, sp.SolClaimed), sp.SolDistributed)
	if deposits > 0 {
		sp.AccSolPerToken = sp.AccSolPerToken.Add(accIncrement(deposits, sp.TotalStaked))
		sp.SolDistributed = SaturatingAdd(sp.SolDistributed, deposits)
	}
}

// StakePending returns the SOL and token rewards pos has accrued against
// the pool's current accumulators.
func StakePending(sp *core.StakingPool, pos *core.StakePosition) (sol, tokens uint64) {
	sol = Share(pos.Amount, sp.AccSolPerToken, pos.LastAccSol)
	tokens = Share(pos.Amount, sp.AccTokenPerToken, pos.LastAccToken)
	return sol, tokens
}

// CheckpointStake records the pool's accumulators on pos and the claimed
// amounts on both sides.
func CheckpointStake(sp *core.StakingPool, pos *core.StakePosition, sol, tokens uint64) {
	pos.LastAccSol = sp.AccSolPerToken
	pos.LastAccToken = sp.AccTokenPerToken
	pos.SolClaimed = SaturatingAdd(pos.SolClaimed, sol)
	pos.TokensClaimed = SaturatingAdd(pos.TokensClaimed, tokens)
	sp.SolClaimed = SaturatingAdd(sp.SolClaimed, sol)
}
