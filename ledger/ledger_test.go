package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/internal/testutil"
	"github.com/tolelom/tolfarm/ledger"
)

func setup(t *testing.T) (*ledger.StateLedger, core.State) {
	t.Helper()
	state := testutil.NewStateDB()
	l := ledger.New(state)
	_, err := l.CreateMint("mint", "FARM", "authority", 6)
	require.NoError(t, err)
	return l, state
}

func TestCreateMintOnce(t *testing.T) {
	l, state := setup(t)
	_, err := l.CreateMint("mint", "FARM", "someone", 6)
	assert.Error(t, err)
	m, err := state.GetMint("mint")
	require.NoError(t, err)
	assert.Equal(t, "authority", m.Authority)
}

func TestMintBurnTransfer(t *testing.T) {
	l, state := setup(t)

	assert.ErrorIs(t, l.MintTo("mint", "impostor", "alice", 10), core.ErrMintAuthority)
	require.NoError(t, l.MintTo("mint", "authority", "alice", 100))
	require.NoError(t, l.Transfer("mint", "alice", "bob", 30))
	require.NoError(t, l.Burn("mint", "alice", 20))

	alice, err := l.TokenBalance("mint", "alice")
	require.NoError(t, err)
	bob, err := l.TokenBalance("mint", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), alice)
	assert.Equal(t, uint64(30), bob)

	m, err := state.GetMint("mint")
	require.NoError(t, err)
	assert.Equal(t, uint64(80), m.Supply)

	assert.ErrorIs(t, l.Transfer("mint", "bob", "alice", 31), core.ErrInsufficientFunds)
	assert.ErrorIs(t, l.Burn("mint", "bob", 31), core.ErrInsufficientFunds)
	assert.Error(t, l.MintTo("missing", "authority", "alice", 1))
}

func TestZeroAndSelfMovesAreNoOps(t *testing.T) {
	l, _ := setup(t)
	assert.NoError(t, l.Transfer("mint", "alice", "", 0))
	assert.NoError(t, l.Transfer("mint", "alice", "alice", 1_000))
	assert.NoError(t, l.TransferNative("alice", "", 0))
	assert.NoError(t, l.Burn("mint", "alice", 0))
	assert.NoError(t, l.MintTo("mint", "anyone", "alice", 0))
}

func TestTransferNative(t *testing.T) {
	l, state := setup(t)
	require.NoError(t, state.SetAccount(&core.Account{Address: "alice", Balance: 100}))

	require.NoError(t, l.TransferNative("alice", "bob", 60))
	assert.ErrorIs(t, l.TransferNative("alice", "bob", 41), core.ErrInsufficientFunds)

	alice, err := l.NativeBalance("alice")
	require.NoError(t, err)
	bob, err := l.NativeBalance("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(40), alice)
	assert.Equal(t, uint64(60), bob)
}

func TestMintOverflow(t *testing.T) {
	l, _ := setup(t)
	require.NoError(t, l.MintTo("mint", "authority", "alice", ^uint64(0)))
	assert.ErrorIs(t, l.MintTo("mint", "authority", "bob", 1), core.ErrArithmeticOverflow)
}
