package consensus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/internal/gametest"
)

func TestProduceBlockDropsFailedTransactions(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(10)
	bob := c.Wallet(0)

	ok := c.Submit(alice, func(n uint64) (*core.Transaction, error) { return alice.Transfer(bob.Address(), 5, n, 0) })
	bad := c.Submit(bob, func(n uint64) (*core.Transaction, error) { return bob.Transfer(alice.Address(), 100, n, 0) })
	block := c.Next()

	require.Len(t, block.Transactions, 1)
	assert.Equal(t, ok.ID, block.Transactions[0].ID)
	assert.NoError(t, c.Err(ok))
	assert.ErrorContains(t, c.Err(bad), core.ErrInsufficientFunds.Error())
	assert.Zero(t, c.Mempool.Size(), "dropped transactions leave the mempool too")

	failed := c.EventsOf(events.EventTxFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, bad.ID, failed[0].TxID)
	assert.Equal(t, bob.Address(), failed[0].Data["from"])

	commits := c.EventsOf(events.EventBlockCommit)
	require.NotEmpty(t, commits)
	last := commits[len(commits)-1]
	assert.Equal(t, block.Hash, last.Data["hash"])
	assert.Equal(t, 1, last.Data["dropped"])
}

func TestProduceBlockAdvancesSlot(t *testing.T) {
	c := gametest.New(t, nil)
	assert.Zero(t, c.Slot())
	first := c.Next()
	second := c.Next()

	assert.Equal(t, uint64(1), first.Slot())
	assert.Equal(t, uint64(2), second.Slot())
	assert.Equal(t, first.Hash, second.Header.PrevHash)
	assert.Equal(t, uint64(3), c.BC.NextSlot())
}

func TestValidateBlock(t *testing.T) {
	c := gametest.New(t, nil)
	tip := c.BC.Tip()
	proposer := c.Validator.Address()

	good := core.NewBlock(tip.Header.Height+1, tip.Hash, proposer, c.Clock.Now())
	good.Sign(c.Validator.PrivKey())
	require.NoError(t, c.PoA.ValidateBlock(good))

	other, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	foreign := core.NewBlock(tip.Header.Height+1, tip.Hash, other.Public().String(), c.Clock.Now())
	foreign.Sign(other)
	assert.ErrorContains(t, c.PoA.ValidateBlock(foreign), "wrong proposer")

	forged := core.NewBlock(tip.Header.Height+1, tip.Hash, proposer, c.Clock.Now())
	forged.Sign(other)
	assert.ErrorContains(t, c.PoA.ValidateBlock(forged), "signature")

	edited := *good
	edited.Header.StateRoot = "edited"
	assert.ErrorContains(t, c.PoA.ValidateBlock(&edited), "hash")

	detached := core.NewBlock(tip.Header.Height+1, "elsewhere", proposer, c.Clock.Now())
	detached.Sign(c.Validator.PrivKey())
	assert.ErrorIs(t, c.PoA.ValidateBlock(detached), core.ErrBlockPrevHash)

	skipped := core.NewBlock(tip.Header.Height+2, tip.Hash, proposer, c.Clock.Now())
	skipped.Sign(c.Validator.PrivKey())
	assert.ErrorIs(t, c.PoA.ValidateBlock(skipped), core.ErrBlockHeight)

	early := core.NewBlock(tip.Header.Height+1, tip.Hash, proposer, c.Clock.Now().Add(-time.Second))
	early.Sign(c.Validator.PrivKey())
	assert.ErrorIs(t, c.PoA.ValidateBlock(early), core.ErrBlockTime)
}

func TestRunProducesOnTick(t *testing.T) {
	c := gametest.New(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.PoA.Run(ctx, time.Second) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, c.Clock.BlockUntilContext(waitCtx, 1))
	c.Clock.Advance(time.Second)
	require.Eventually(t, func() bool { return c.BC.Height() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
