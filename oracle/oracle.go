// Package oracle resolves commit/reveal randomness accounts.
//
// A randomness account is committed to the seed of the slot before the
// commit. The designated oracle key later reveals it by signing
// (account, seed slot); the value is the BLAKE3 hash of that signature, so
// nobody, including the oracle, can choose it after the commitment.
package oracle

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/tolelom/tolfarm/core"
)

// Commitment is the current binding of a randomness account.
type Commitment struct {
	SeedSlot uint64
	Revealed bool
}

// Oracle is what the game needs from the randomness provider.
type Oracle interface {
	// Commitment returns the current seed binding of ref.
	Commitment(ref string) (Commitment, error)
	// Resolve returns the revealed value of ref, or
	// core.ErrRandomnessNotResolved while it is still pending.
	Resolve(ref string, now uint64) ([]byte, error)
}

// StateOracle reads randomness accounts from chain state.
type StateOracle struct {
	state core.State
}

// New returns an oracle over state.
func New(state core.State) *StateOracle {
	return &StateOracle{state: state}
}

func (o *StateOracle) Commitment(ref string) (Commitment, error) {
	r, err := o.state.GetRandomness(ref)
	if err != nil {
		return Commitment{}, fmt.Errorf("%w: %s", core.ErrInvalidRandomnessAccount, ref)
	}
	return Commitment{SeedSlot: r.SeedSlot, Revealed: r.Revealed()}, nil
}

func (o *StateOracle) Resolve(ref string, now uint64) ([]byte, error) {
	r, err := o.state.GetRandomness(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidRandomnessAccount, ref)
	}
	if !r.Revealed() || r.RevealSlot > now {
		return nil, core.ErrRandomnessNotResolved
	}
	out := make([]byte, core.RandomnessLen)
	copy(out, r.Value)
	return out, nil
}

// Message is the byte string the oracle signs to reveal account at seedSlot.
func Message(account string, seedSlot uint64) []byte {
	msg := make([]byte, 0, len(account)+8)
	msg = append(msg, account...)
	return binary.LittleEndian.AppendUint64(msg, seedSlot)
}

// Derive turns an oracle signature into the randomness value.
func Derive(signature []byte) []byte {
	sum := blake3.Sum256(signature)
	return sum[:]
}
