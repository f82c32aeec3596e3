package core_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/internal/testutil"
)

func signedTx(t *testing.T, priv crypto.PrivateKey, nonce uint64, at time.Time) *core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction("test-chain", core.TxTransfer, priv.Public().String(), nonce, 0,
		core.TransferPayload{To: "recipient", Amount: 1})
	require.NoError(t, err)
	tx.Timestamp = at.UnixNano()
	tx.Sign(priv)
	return tx
}

func TestTransactionSignVerify(t *testing.T) {
	priv, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	tx := signedTx(t, priv, 0, time.Now())

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, tx.Hash(), tx.ID)
	require.NoError(t, tx.Verify())

	tampered := *tx
	tampered.Fee = 999
	assert.Error(t, tampered.Verify())

	otherChain := *tx
	otherChain.ChainID = "other"
	assert.Error(t, otherChain.Verify(), "chain id is covered by the signature")

	other, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	forged := *tx
	forged.From = other.Public().String()
	assert.Error(t, forged.Verify())

	forged.From = ""
	assert.Error(t, forged.Verify())
}

func TestBlockSignAndSlot(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	block := core.NewBlock(7, "prev", pub.String(), time.Unix(0, 42))
	block.Seal(nil, "root")
	block.Sign(priv)

	assert.Equal(t, uint64(7), block.Slot())
	assert.Equal(t, block.ComputeHash(), block.Hash)
	assert.Equal(t, core.ComputeTxRoot(nil), block.Header.TxRoot)
	require.NoError(t, block.Verify(pub))

	block.Header.StateRoot = "other"
	assert.NotEqual(t, block.ComputeHash(), block.Hash)
}

func TestMempool(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mp := core.NewMempool(clock)
	priv, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	first := signedTx(t, priv, 0, clock.Now())
	second := signedTx(t, priv, 1, clock.Now())
	require.NoError(t, mp.Add(first))
	require.NoError(t, mp.Add(second))
	assert.ErrorIs(t, mp.Add(first), core.ErrTxDuplicate)
	assert.Equal(t, 2, mp.Size())

	pending := mp.Pending(10)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID, "insertion order")
	assert.Len(t, mp.Pending(1), 1)

	got, ok := mp.Get(second.ID)
	require.True(t, ok)
	assert.Equal(t, second, got)

	mp.Remove([]string{first.ID})
	assert.Equal(t, 1, mp.Size())
	assert.Equal(t, second.ID, mp.Pending(10)[0].ID)

	tampered := signedTx(t, priv, 2, clock.Now())
	tampered.Nonce = 3
	assert.Error(t, mp.Add(tampered))
}

func TestMempoolTimestampWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mp := core.NewMempool(clock)
	priv, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	stale := signedTx(t, priv, 0, clock.Now())
	clock.Advance(2 * time.Hour)
	assert.ErrorIs(t, mp.Add(stale), core.ErrTxExpired)

	future := signedTx(t, priv, 0, clock.Now().Add(10*time.Minute))
	assert.ErrorIs(t, mp.Add(future), core.ErrTxFromFuture)

	assert.NoError(t, mp.Add(signedTx(t, priv, 0, clock.Now().Add(time.Minute))))
}

func TestBlockchainLinkage(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	store := testutil.NewBlockStore()
	bc := core.NewBlockchain(store)
	require.NoError(t, bc.Init())
	assert.Nil(t, bc.Tip())
	assert.Zero(t, bc.NextSlot())
	assert.Equal(t, core.Link{Height: 0, PrevHash: core.GenesisPrevHash}, bc.Next())

	now := time.Unix(10, 0)
	block := func(height int64, prev string, at time.Time) *core.Block {
		b := core.NewBlock(height, prev, pub.String(), at)
		b.Sign(priv)
		return b
	}

	assert.ErrorIs(t, bc.AddBlock(block(1, core.GenesisPrevHash, now)), core.ErrBlockHeight)
	assert.ErrorIs(t, bc.AddBlock(block(0, "genesis", now)), core.ErrBlockPrevHash)

	genesis := block(0, core.GenesisPrevHash, now)
	require.NoError(t, bc.AddBlock(genesis))
	assert.Equal(t, uint64(1), bc.NextSlot())
	assert.Zero(t, bc.Slot())
	link := bc.Next()
	assert.Equal(t, genesis.Hash, link.PrevHash)
	assert.Equal(t, genesis.Header.Timestamp, link.NotBefore)

	assert.ErrorIs(t, bc.AddBlock(block(2, genesis.Hash, now)), core.ErrBlockHeight)
	assert.ErrorIs(t, bc.AddBlock(block(1, "elsewhere", now)), core.ErrBlockPrevHash)
	assert.ErrorIs(t, bc.CheckNext(block(1, genesis.Hash, now.Add(-time.Second))), core.ErrBlockTime)

	next := block(1, genesis.Hash, now)
	require.NoError(t, bc.CheckNext(next))
	require.NoError(t, bc.AddBlock(next))
	assert.Equal(t, int64(1), bc.Height())
	assert.Equal(t, uint64(1), bc.Slot())

	byHeight, err := bc.GetBlockByHeight(1)
	require.NoError(t, err)
	assert.Equal(t, next.Hash, byHeight.Hash)

	// A second view over the same store picks up the persisted tip.
	reopened := core.NewBlockchain(store)
	require.NoError(t, reopened.Init())
	assert.Equal(t, next.Hash, reopened.Tip().Hash)
	assert.Equal(t, uint64(2), reopened.NextSlot())
}
