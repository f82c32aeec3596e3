package game

import (
	"encoding/binary"
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/oracle"
)

// memLedger is an in-memory ledger.Ledger for session tests.
type memLedger struct {
	native map[string]uint64
	tokens map[string]uint64
	supply uint64
	auth   string
	minted uint64
	burned uint64
}

func newMemLedger(authority string) *memLedger {
	return &memLedger{native: map[string]uint64{}, tokens: map[string]uint64{}, auth: authority}
}

func tokenKey(mint, owner string) string { return mint + "/" + owner }

func (l *memLedger) MintTo(mint, authority, to string, amount uint64) error {
	if authority != l.auth {
		return core.ErrMintAuthority
	}
	l.tokens[tokenKey(mint, to)] += amount
	l.supply += amount
	l.minted += amount
	return nil
}

func (l *memLedger) Burn(mint, owner string, amount uint64) error {
	if l.tokens[tokenKey(mint, owner)] < amount {
		return core.ErrInsufficientFunds
	}
	l.tokens[tokenKey(mint, owner)] -= amount
	l.supply -= amount
	l.burned += amount
	return nil
}

func (l *memLedger) Transfer(mint, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if l.tokens[tokenKey(mint, from)] < amount {
		return core.ErrInsufficientFunds
	}
	l.tokens[tokenKey(mint, from)] -= amount
	l.tokens[tokenKey(mint, to)] += amount
	return nil
}

func (l *memLedger) TransferNative(from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if l.native[from] < amount {
		return core.ErrInsufficientFunds
	}
	l.native[from] -= amount
	l.native[to] += amount
	return nil
}

func (l *memLedger) TokenBalance(mint, owner string) (uint64, error) {
	return l.tokens[tokenKey(mint, owner)], nil
}

func (l *memLedger) NativeBalance(address string) (uint64, error) {
	return l.native[address], nil
}

// memOracle serves scripted randomness accounts.
type memOracle struct {
	accounts map[string]*core.RandomnessAccount
}

func newMemOracle() *memOracle {
	return &memOracle{accounts: map[string]*core.RandomnessAccount{}}
}

// bind commits ref to seedSlot, clearing any revealed value.
func (o *memOracle) bind(ref string, seedSlot uint64) {
	o.accounts[ref] = &core.RandomnessAccount{Address: ref, SeedSlot: seedSlot}
}

func (o *memOracle) reveal(ref string, value []byte) {
	o.accounts[ref].Value = value
}

func (o *memOracle) Commitment(ref string) (oracle.Commitment, error) {
	r, ok := o.accounts[ref]
	if !ok {
		return oracle.Commitment{}, fmt.Errorf("%w: %s", core.ErrInvalidRandomnessAccount, ref)
	}
	return oracle.Commitment{SeedSlot: r.SeedSlot, Revealed: r.Revealed()}, nil
}

func (o *memOracle) Resolve(ref string, now uint64) ([]byte, error) {
	r, ok := o.accounts[ref]
	if !ok {
		return nil, core.ErrInvalidRandomnessAccount
	}
	if !r.Revealed() {
		return nil, core.ErrRandomnessNotResolved
	}
	return r.Value, nil
}

// words builds a randomness value from little-endian u32 chunks.
func words(ws ...uint32) []byte {
	v := make([]byte, core.RandomnessLen)
	for i, w := range ws {
		binary.LittleEndian.PutUint32(v[4*i:], w)
	}
	return v
}
