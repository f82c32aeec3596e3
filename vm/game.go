package vm

import (
	"errors"
	"fmt"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/game"
)

// Pool loads the reward pool of mint.
func (c *Context) Pool(mint string) (*core.GlobalPool, error) {
	addr, err := crypto.PoolAddress(mint)
	if err != nil {
		return nil, err
	}
	pool, err := c.State.GetPool(addr)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("pool for mint %s: %w", mint, err)
	}
	return pool, err
}

// AdminPool loads the pool of mint and checks that the sender is its
// authority.
func (c *Context) AdminPool(mint string) (*core.GlobalPool, error) {
	pool, err := c.Pool(mint)
	if err != nil {
		return nil, err
	}
	if c.Tx.From != pool.Authority {
		return nil, core.ErrUnauthorized
	}
	return pool, nil
}

// Player loads the player record of owner for mint.
func (c *Context) Player(owner, mint string) (*core.Player, error) {
	addr, err := crypto.PlayerAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	pl, err := c.State.GetPlayer(addr)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("player %s for mint %s: %w", owner, mint, err)
	}
	return pl, err
}

// Session loads the sender's player and the pool of mint into a game
// session at the current slot.
func (c *Context) Session(mint string) (*game.Session, error) {
	pool, err := c.Pool(mint)
	if err != nil {
		return nil, err
	}
	pl, err := c.Player(c.Tx.From, mint)
	if err != nil {
		return nil, err
	}
	return c.NewSession(pool, pl), nil
}

// NewSession wraps already loaded records.
func (c *Context) NewSession(pool *core.GlobalPool, pl *core.Player) *game.Session {
	return &game.Session{
		Pool:   pool,
		Player: pl,
		Ledger: c.Ledger,
		Oracle: c.Oracle,
		Now:    c.Slot(),
	}
}

// Save writes back the pool and player of s.
func (c *Context) Save(s *game.Session) error {
	if err := c.State.SetPool(s.Pool); err != nil {
		return err
	}
	return c.State.SetPlayer(s.Player)
}
