// Package randomness handles the commit and reveal transactions of
// randomness accounts.
package randomness

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/oracle"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxRandomnessCommit, vm.Anyone, vm.Decode(handleCommit))
	vm.Register(core.TxRandomnessReveal, vm.Anyone, vm.Decode(handleReveal))
}

// handleCommit binds the sender's randomness account to the seed of the
// previous slot, clearing any earlier value so the account can be reused.
func handleCommit(ctx *vm.Context, p core.RandomnessCommitPayload) error {
	now := ctx.Slot()
	if now == 0 {
		return fmt.Errorf("%w: no seed slot before genesis", core.ErrRandomnessExpired)
	}
	cfg, err := ctx.State.GetOracleConfig()
	if err != nil {
		return fmt.Errorf("oracle config: %w", err)
	}
	addr, err := crypto.RandomnessAddress(ctx.Tx.From, p.Nonce)
	if err != nil {
		return err
	}
	acct, err := ctx.State.GetRandomness(addr)
	switch {
	case errors.Is(err, core.ErrNotFound):
		acct = &core.RandomnessAccount{Address: addr, Owner: ctx.Tx.From}
	case err != nil:
		return err
	case acct.Owner != ctx.Tx.From:
		return core.ErrUnauthorized
	}
	acct.Oracle = cfg.Authority
	acct.SeedSlot = now - 1
	acct.RevealSlot = 0
	acct.Value = nil
	if err := ctx.State.SetRandomness(acct); err != nil {
		return err
	}

	ctx.Emit(events.EventRandomnessCommitted, map[string]any{
		"account":   addr,
		"owner":     ctx.Tx.From,
		"nonce":     p.Nonce,
		"seed_slot": acct.SeedSlot,
	})
	return nil
}

// handleReveal publishes the oracle's signature over (account, seed slot).
// The value is derived from the signature, so only the designated oracle
// can reveal and it cannot pick the outcome.
func handleReveal(ctx *vm.Context, p core.RandomnessRevealPayload) error {
	acct, err := ctx.State.GetRandomness(p.Account)
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidRandomnessAccount, p.Account)
	}
	if ctx.Tx.From != acct.Oracle {
		return core.ErrUnauthorized
	}
	if acct.Revealed() {
		return core.ErrRandomnessAlreadyRevealed
	}
	pub, err := crypto.PubKeyFromString(acct.Oracle)
	if err != nil {
		return err
	}
	if err := crypto.Verify(pub, oracle.Message(acct.Address, acct.SeedSlot), p.Signature); err != nil {
		return fmt.Errorf("oracle signature: %w", err)
	}
	raw, err := base58.Decode(p.Signature)
	if err != nil {
		return err
	}
	acct.Value = oracle.Derive(raw)
	acct.RevealSlot = ctx.Slot()
	if err := ctx.State.SetRandomness(acct); err != nil {
		return err
	}

	ctx.Emit(events.EventRandomnessRevealed, map[string]any{
		"account":     acct.Address,
		"seed_slot":   acct.SeedSlot,
		"reveal_slot": acct.RevealSlot,
	})
	return nil
}
