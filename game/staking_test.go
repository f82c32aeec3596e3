package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
)

func newStakingFixture(t *testing.T) (*memLedger, *core.StakingPool, *core.StakePosition) {
	t.Helper()
	l := newMemLedger(poolAddr)
	l.tokens[tokenKey(mint, owner)] = startTokens

	sp := core.NewStakingPool("staking", mint, "admin")
	sp.Vault = "vault"
	sp.SolVault = "sol-vault"
	sp.LockupSlots = 100
	sp.TokenRewardRate = 10
	return l, sp, core.NewStakePosition("position", owner, mint)
}

func TestTokenStakingLifecycle(t *testing.T) {
	l, sp, pos := newStakingFixture(t)
	at := func(now uint64) *StakingSession {
		return &StakingSession{Pool: sp, Position: pos, Ledger: l, MintAuthority: poolAddr, Now: now}
	}

	_, err := at(10).Stake(0)
	assert.ErrorIs(t, err, core.ErrZeroAmount)
	_, err = at(10).Stake(startTokens + 1)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	claim, err := at(10).Stake(1_000)
	require.NoError(t, err)
	assert.Zero(t, claim)
	assert.EqualValues(t, 1_000, sp.TotalStaked)
	assert.EqualValues(t, 1_000, l.tokens[tokenKey(mint, "vault")])

	l.native["sol-vault"] = 500

	_, err = at(50).Unstake(1_000)
	assert.ErrorIs(t, err, core.ErrLockupActive)

	claim, err = at(50).Claim()
	require.NoError(t, err)
	assert.Equal(t, StakingClaim{Sol: 500, Tokens: 400}, claim)
	assert.EqualValues(t, 500, l.native[owner])
	assert.Zero(t, l.native["sol-vault"])

	_, err = at(200).Unstake(2_000)
	assert.ErrorIs(t, err, core.ErrInsufficientStake)

	claim, err = at(200).Unstake(1_000)
	require.NoError(t, err)
	assert.Equal(t, StakingClaim{Tokens: 1_500}, claim)
	assert.Zero(t, sp.TotalStaked)
	assert.Zero(t, pos.Amount)
	assert.EqualValues(t, startTokens+1_900, l.tokens[tokenKey(mint, owner)])
	assert.EqualValues(t, 500, pos.SolClaimed)
	assert.EqualValues(t, 1_900, pos.TokensClaimed)
}

func TestTokenStakingSplitsByWeight(t *testing.T) {
	l, sp, a := newStakingFixture(t)
	l.tokens[tokenKey(mint, "bob")] = startTokens
	b := core.NewStakePosition("position-b", "bob", mint)
	session := func(pos *core.StakePosition, now uint64) *StakingSession {
		return &StakingSession{Pool: sp, Position: pos, Ledger: l, MintAuthority: poolAddr, Now: now}
	}

	_, err := session(a, 1).Stake(300)
	require.NoError(t, err)
	_, err = session(b, 1).Stake(100)
	require.NoError(t, err)

	l.native["sol-vault"] = 4_000
	ca, err := session(a, 11).Claim()
	require.NoError(t, err)
	cb, err := session(b, 11).Claim()
	require.NoError(t, err)

	assert.Equal(t, StakingClaim{Sol: 3_000, Tokens: 75}, ca)
	assert.Equal(t, StakingClaim{Sol: 1_000, Tokens: 25}, cb)
}
