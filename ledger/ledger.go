// Package ledger moves native currency and tokens between accounts held in
// chain state. Every operation is all-or-nothing: it validates before it
// writes, and the executor rolls back the enclosing transaction on error.
package ledger

import (
	"fmt"

	"github.com/tolelom/tolfarm/core"
)

// Ledger is the token and native-currency surface the game needs.
type Ledger interface {
	MintTo(mint, authority, to string, amount uint64) error
	Burn(mint, owner string, amount uint64) error
	Transfer(mint, from, to string, amount uint64) error
	TransferNative(from, to string, amount uint64) error
	TokenBalance(mint, owner string) (uint64, error)
	NativeBalance(address string) (uint64, error)
}

// StateLedger implements Ledger on top of core.State.
type StateLedger struct {
	state core.State
}

// New returns a ledger over state.
func New(state core.State) *StateLedger {
	return &StateLedger{state: state}
}

// CreateMint registers a new mint with zero supply.
func (l *StateLedger) CreateMint(address, symbol, authority string, decimals uint8) (*core.Mint, error) {
	if _, err := l.state.GetMint(address); err == nil {
		return nil, fmt.Errorf("mint %s already exists", address)
	}
	m := &core.Mint{Address: address, Symbol: symbol, Authority: authority, Decimals: decimals}
	if err := l.state.SetMint(m); err != nil {
		return nil, err
	}
	return m, nil
}

// MintTo creates amount new tokens in to's account. Only the mint
// authority may mint.
func (l *StateLedger) MintTo(mint, authority, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	m, err := l.state.GetMint(mint)
	if err != nil {
		return fmt.Errorf("mint %s: %w", mint, err)
	}
	if m.Authority != authority {
		return core.ErrMintAuthority
	}
	if m.Supply+amount < m.Supply {
		return core.ErrArithmeticOverflow
	}
	dst, err := l.state.GetTokenAccount(mint, to)
	if err != nil {
		return err
	}
	if dst.Balance+amount < dst.Balance {
		return core.ErrArithmeticOverflow
	}
	m.Supply += amount
	dst.Balance += amount
	if err := l.state.SetMint(m); err != nil {
		return err
	}
	return l.state.SetTokenAccount(dst)
}

// Burn destroys amount tokens held by owner.
func (l *StateLedger) Burn(mint, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	m, err := l.state.GetMint(mint)
	if err != nil {
		return fmt.Errorf("mint %s: %w", mint, err)
	}
	src, err := l.state.GetTokenAccount(mint, owner)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: burn %d, have %d", core.ErrInsufficientFunds, amount, src.Balance)
	}
	src.Balance -= amount
	if m.Supply >= amount {
		m.Supply -= amount
	} else {
		m.Supply = 0
	}
	if err := l.state.SetMint(m); err != nil {
		return err
	}
	return l.state.SetTokenAccount(src)
}

// Transfer moves amount tokens between two owners of the same mint.
func (l *StateLedger) Transfer(mint, from, to string, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	if _, err := l.state.GetMint(mint); err != nil {
		return fmt.Errorf("mint %s: %w", mint, err)
	}
	src, err := l.state.GetTokenAccount(mint, from)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: transfer %d, have %d", core.ErrInsufficientFunds, amount, src.Balance)
	}
	dst, err := l.state.GetTokenAccount(mint, to)
	if err != nil {
		return err
	}
	if dst.Balance+amount < dst.Balance {
		return core.ErrArithmeticOverflow
	}
	src.Balance -= amount
	dst.Balance += amount
	if err := l.state.SetTokenAccount(src); err != nil {
		return err
	}
	return l.state.SetTokenAccount(dst)
}

// TransferNative moves native currency between two addresses.
func (l *StateLedger) TransferNative(from, to string, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	src, err := l.state.GetAccount(from)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: have %d, need %d", core.ErrInsufficientFunds, src.Balance, amount)
	}
	dst, err := l.state.GetAccount(to)
	if err != nil {
		return err
	}
	if dst.Balance+amount < dst.Balance {
		return core.ErrArithmeticOverflow
	}
	src.Balance -= amount
	dst.Balance += amount
	if err := l.state.SetAccount(src); err != nil {
		return err
	}
	return l.state.SetAccount(dst)
}

// TokenBalance returns owner's balance of mint.
func (l *StateLedger) TokenBalance(mint, owner string) (uint64, error) {
	ta, err := l.state.GetTokenAccount(mint, owner)
	if err != nil {
		return 0, err
	}
	return ta.Balance, nil
}

// NativeBalance returns the native balance of address.
func (l *StateLedger) NativeBalance(address string) (uint64, error) {
	acc, err := l.state.GetAccount(address)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}
