// Package gametest runs signed transactions against an in-memory chain
// with a fake clock. Every block is one slot. Never import this in
// production code.
package gametest

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/config"
	"github.com/tolelom/tolfarm/consensus"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/internal/logger"
	"github.com/tolelom/tolfarm/internal/testutil"
	"github.com/tolelom/tolfarm/ledger"
	"github.com/tolelom/tolfarm/storage"
	"github.com/tolelom/tolfarm/vm"
	"github.com/tolelom/tolfarm/wallet"

	_ "github.com/tolelom/tolfarm/vm/modules/admin"
	_ "github.com/tolelom/tolfarm/vm/modules/chance"
	_ "github.com/tolelom/tolfarm/vm/modules/economy"
	_ "github.com/tolelom/tolfarm/vm/modules/production"
	_ "github.com/tolelom/tolfarm/vm/modules/randomness"
	_ "github.com/tolelom/tolfarm/vm/modules/staking"
)

// ChainID is the chain every test wallet signs for.
const ChainID = "tolfarm-test"

// Symbol is the token of the genesis pool.
const Symbol = "FARM"

// DefaultPool is a pool with a supply large enough that tests never hit
// the dust floor: 1000 tokens per slot, halving every 10^9 slots.
func DefaultPool() config.PoolGenesis {
	return config.PoolGenesis{
		Symbol:               Symbol,
		Decimals:             6,
		TotalSupply:          1_000_000_000_000_000,
		InitialRate:          1_000,
		HalvingIntervalSlots: 1_000_000_000,
		StakingLockupSlots:   10,
		TokenRewardRate:      100,
	}
}

// Chain is an in-memory node: state, executor and block producer.
type Chain struct {
	t *testing.T

	DB        *testutil.MemDB
	State     *storage.StateDB
	BC        *core.Blockchain
	Mempool   *core.Mempool
	Exec      *vm.Executor
	Emitter   *events.Emitter
	PoA       *consensus.PoA
	Clock     *clockwork.FakeClock
	Validator *wallet.Wallet

	// Mint and Pool are the addresses of the genesis pool.
	Mint string
	Pool string
	// Fees is the fees wallet of the genesis pool.
	Fees *wallet.Wallet

	Events []events.Event
	failed map[string]string
	queued map[string]uint64
}

// New starts a chain whose genesis creates pool (DefaultPool when nil).
func New(t *testing.T, pool *config.PoolGenesis) *Chain {
	t.Helper()
	if pool == nil {
		p := DefaultPool()
		pool = &p
	}
	validator, err := wallet.Generate(ChainID)
	require.NoError(t, err)
	fees, err := wallet.Generate(ChainID)
	require.NoError(t, err)
	pool.FeesWallet = fees.Address()

	c := &Chain{
		t:         t,
		DB:        testutil.NewMemDB(),
		Clock:     clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Validator: validator,
		Fees:      fees,
		failed:    make(map[string]string),
		queued:    make(map[string]uint64),
	}
	c.State = storage.NewStateDB(c.DB)
	c.BC = core.NewBlockchain(storage.NewBlockStore(c.DB))
	require.NoError(t, c.BC.Init())
	c.Emitter = events.NewEmitter(logger.Discard())
	c.Emitter.SubscribeAll(func(ev events.Event) {
		c.Events = append(c.Events, ev)
		if ev.Type == events.EventTxFailed {
			msg, _ := ev.Data["error"].(string)
			c.failed[ev.TxID] = msg
		}
	})
	c.Mempool = core.NewMempool(c.Clock)
	c.Exec = vm.NewExecutor(c.State, c.Emitter, vm.WithChainID(ChainID), vm.WithLogger(logger.Discard()))

	cfg := config.DefaultConfig()
	cfg.Genesis.ChainID = ChainID
	cfg.Genesis.Pools = []config.PoolGenesis{*pool}
	genesis, err := config.CreateGenesisBlock(cfg, c.State, c.Exec, validator.PrivKey(), c.Clock.Now())
	require.NoError(t, err)
	require.NoError(t, c.BC.AddBlock(genesis))

	c.PoA = consensus.New(c.BC, c.State, c.Mempool, c.Exec, c.Emitter, validator.PrivKey(), consensus.Options{
		Clock: c.Clock,
		Log:   logger.Discard(),
	})

	c.Mint, err = crypto.MintAddress(validator.Address(), pool.Symbol)
	require.NoError(t, err)
	c.Pool, err = crypto.PoolAddress(c.Mint)
	require.NoError(t, err)
	return c
}

// Slot is the slot of the last committed block.
func (c *Chain) Slot() uint64 {
	return c.BC.Slot()
}

// Wallet returns a new wallet funded with native balance.
func (c *Chain) Wallet(balance uint64) *wallet.Wallet {
	c.t.Helper()
	w, err := wallet.Generate(ChainID)
	require.NoError(c.t, err)
	c.Fund(w.Address(), balance)
	return w
}

// Fund credits native currency to addr outside of any transaction.
func (c *Chain) Fund(addr string, amount uint64) {
	c.t.Helper()
	acc, err := c.State.GetAccount(addr)
	require.NoError(c.t, err)
	acc.Balance += amount
	require.NoError(c.t, c.State.SetAccount(acc))
	require.NoError(c.t, c.State.Commit())
}

// GiveTokens mints amount of the genesis token to owner outside of any
// transaction, signed by the pool's mint authority.
func (c *Chain) GiveTokens(owner string, amount uint64) {
	c.t.Helper()
	require.NoError(c.t, ledger.New(c.State).MintTo(c.Mint, c.Pool, owner, amount))
	require.NoError(c.t, c.State.Commit())
}

// Submit queues a transaction built by build with the sender's next nonce.
func (c *Chain) Submit(w *wallet.Wallet, build func(nonce uint64) (*core.Transaction, error)) *core.Transaction {
	c.t.Helper()
	acc, err := c.State.GetAccount(w.Address())
	require.NoError(c.t, err)
	nonce := acc.Nonce + c.queued[w.Address()]
	tx, err := build(nonce)
	require.NoError(c.t, err)
	tx.Timestamp = c.Clock.Now().UnixNano()
	tx.Sign(w.PrivKey())
	require.NoError(c.t, c.Mempool.Add(tx))
	c.queued[w.Address()]++
	return tx
}

// Next produces one block with everything queued and returns it.
func (c *Chain) Next() *core.Block {
	c.t.Helper()
	c.Clock.Advance(400 * time.Millisecond)
	block, err := c.PoA.ProduceBlock()
	require.NoError(c.t, err)
	clear(c.queued)
	return block
}

// Skip produces n empty blocks.
func (c *Chain) Skip(n int) {
	c.t.Helper()
	for i := 0; i < n; i++ {
		c.Next()
	}
}

// Err returns the reason tx was dropped, or nil if it was included.
func (c *Chain) Err(tx *core.Transaction) error {
	if msg, ok := c.failed[tx.ID]; ok {
		return errors.New(msg)
	}
	return nil
}

// Do submits one transaction in its own block and returns its error.
func (c *Chain) Do(w *wallet.Wallet, build func(nonce uint64) (*core.Transaction, error)) error {
	c.t.Helper()
	tx := c.Submit(w, build)
	c.Next()
	return c.Err(tx)
}

// MustDo is Do that fails the test on error.
func (c *Chain) MustDo(w *wallet.Wallet, build func(nonce uint64) (*core.Transaction, error)) {
	c.t.Helper()
	require.NoError(c.t, c.Do(w, build))
}

// Commit submits randomness_commit for w's account nonce, returning the
// account address. It is not produced until the next Next.
func (c *Chain) Commit(w *wallet.Wallet, accountNonce uint64) string {
	c.t.Helper()
	c.Submit(w, func(n uint64) (*core.Transaction, error) { return w.RandomnessCommit(accountNonce, n, 0) })
	addr, err := crypto.RandomnessAddress(w.Address(), accountNonce)
	require.NoError(c.t, err)
	return addr
}

// Reveal has the oracle (the validator) reveal account in the next block.
func (c *Chain) Reveal(account string) {
	c.t.Helper()
	r, err := c.State.GetRandomness(account)
	require.NoError(c.t, err)
	c.MustDo(c.Validator, func(n uint64) (*core.Transaction, error) {
		return c.Validator.RandomnessReveal(account, r.SeedSlot, n, 0)
	})
}

// Player loads w's player record for the genesis mint.
func (c *Chain) Player(w *wallet.Wallet) *core.Player {
	c.t.Helper()
	addr, err := crypto.PlayerAddress(w.Address(), c.Mint)
	require.NoError(c.t, err)
	pl, err := c.State.GetPlayer(addr)
	require.NoError(c.t, err)
	return pl
}

// GlobalPool loads the genesis pool.
func (c *Chain) GlobalPool() *core.GlobalPool {
	c.t.Helper()
	p, err := c.State.GetPool(c.Pool)
	require.NoError(c.t, err)
	return p
}

// Tokens is owner's balance of the genesis token.
func (c *Chain) Tokens(owner string) uint64 {
	c.t.Helper()
	bal, err := ledger.New(c.State).TokenBalance(c.Mint, owner)
	require.NoError(c.t, err)
	return bal
}

// Native is addr's native balance.
func (c *Chain) Native(addr string) uint64 {
	c.t.Helper()
	acc, err := c.State.GetAccount(addr)
	require.NoError(c.t, err)
	return acc.Balance
}

// EventsOf returns the recorded events of typ.
func (c *Chain) EventsOf(typ events.EventType) []events.Event {
	var out []events.Event
	for _, ev := range c.Events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
