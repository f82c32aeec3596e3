package randomness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/internal/gametest"
	"github.com/tolelom/tolfarm/oracle"
)

func TestCommitBindsPreviousSlot(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(0)

	acct := c.Commit(alice, 7)
	c.Next()
	r, err := c.State.GetRandomness(acct)
	require.NoError(t, err)
	assert.Equal(t, alice.Address(), r.Owner)
	assert.Equal(t, c.Validator.Address(), r.Oracle)
	assert.Equal(t, c.Slot()-1, r.SeedSlot)
	assert.False(t, r.Revealed())

	c.Reveal(acct)
	c.Commit(alice, 7)
	c.Next()
	r, err = c.State.GetRandomness(acct)
	require.NoError(t, err)
	assert.Equal(t, c.Slot()-1, r.SeedSlot)
	assert.False(t, r.Revealed(), "recommit clears the previous reveal")
	assert.Len(t, c.EventsOf(events.EventRandomnessCommitted), 2)
}

func TestRevealDerivesValueFromSignature(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(0)
	acct := c.Commit(alice, 0)
	c.Next()
	c.Reveal(acct)

	r, err := c.State.GetRandomness(acct)
	require.NoError(t, err)
	require.True(t, r.Revealed())
	assert.Equal(t, c.Slot(), r.RevealSlot)

	sig := crypto.SignBytes(c.Validator.PrivKey(), oracle.Message(acct, r.SeedSlot))
	assert.Equal(t, oracle.Derive(sig), r.Value)
	assert.Len(t, r.Value, core.RandomnessLen)
}

func TestRevealRejections(t *testing.T) {
	c := gametest.New(t, nil)
	alice := c.Wallet(0)
	v := c.Validator

	missing, err := crypto.RandomnessAddress(alice.Address(), 99)
	require.NoError(t, err)
	err = c.Do(v, func(n uint64) (*core.Transaction, error) { return v.RandomnessReveal(missing, 0, n, 0) })
	assert.ErrorContains(t, err, core.ErrInvalidRandomnessAccount.Error())

	acct := c.Commit(alice, 0)
	c.Next()
	r, err := c.State.GetRandomness(acct)
	require.NoError(t, err)

	err = c.Do(alice, func(n uint64) (*core.Transaction, error) { return alice.RandomnessReveal(acct, r.SeedSlot, n, 0) })
	assert.ErrorContains(t, err, core.ErrUnauthorized.Error())

	err = c.Do(v, func(n uint64) (*core.Transaction, error) { return v.RandomnessReveal(acct, r.SeedSlot+1, n, 0) })
	assert.ErrorContains(t, err, "oracle signature")

	c.Reveal(acct)
	err = c.Do(v, func(n uint64) (*core.Transaction, error) { return v.RandomnessReveal(acct, r.SeedSlot, n, 0) })
	assert.ErrorContains(t, err, core.ErrRandomnessAlreadyRevealed.Error())
	assert.Len(t, c.EventsOf(events.EventRandomnessRevealed), 1)
}
