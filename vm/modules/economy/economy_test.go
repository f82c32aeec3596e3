package economy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/internal/gametest"
)

func TestTransfer(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(1_000)
	bob := c.Wallet(0)

	send := func(amount uint64) error {
		return c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.Transfer(bob.Address(), amount, n, 0) })
	}
	require.NoError(t, send(300))
	assert.Equal(t, uint64(700), c.Native(alice.Address()))
	assert.Equal(t, uint64(300), c.Native(bob.Address()))

	assert.ErrorContains(t, send(0), core.ErrZeroAmount.Error())
	assert.ErrorContains(t, send(701), core.ErrInsufficientFunds.Error())
	assert.Equal(t, uint64(700), c.Native(alice.Address()))

	sent := c.EventsOf(events.EventNativeTransfer)
	require.Len(t, sent, 1)
	assert.Equal(t, bob.Address(), sent[0].Data["to"])
}

func TestTransferFeeIsBurned(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(1_000)
	bob := c.Wallet(0)

	require.NoError(t, c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.Transfer(bob.Address(), 100, n, 50) }))
	assert.Equal(t, uint64(850), c.Native(alice.Address()))
	assert.Equal(t, uint64(100), c.Native(bob.Address()))
	assert.Zero(t, c.Native(c.Validator.Address()))
}

func TestTokenTransfer(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(0)
	bob := c.Wallet(0)
	c.GiveTokens(alice.Address(), 500)

	send := func(amount uint64) error {
		return c.Do(alice, func(n uint64) (*core.Transaction, error) {
			return alice.TokenTransfer(c.Mint, bob.Address(), amount, n, 0)
		})
	}
	require.NoError(t, send(200))
	assert.Equal(t, uint64(300), c.Tokens(alice.Address()))
	assert.Equal(t, uint64(200), c.Tokens(bob.Address()))
	assert.ErrorContains(t, send(301), core.ErrInsufficientFunds.Error())
	assert.ErrorContains(t, send(0), core.ErrZeroAmount.Error())
}
