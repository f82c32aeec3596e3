package vm

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/ledger"
	"github.com/tolelom/tolfarm/metrics"
	"github.com/tolelom/tolfarm/oracle"
)

// Context is passed to every Handler and provides access to the chain state,
// the current block, the triggering transaction, and the collaborators a
// handler may need.
type Context struct {
	State   core.State
	Block   *core.Block
	Tx      *core.Transaction
	Emitter *events.Emitter
	Ledger  *ledger.StateLedger
	Oracle  oracle.Oracle
	Log     *slog.Logger
	// Admin is the authority-checked pool for PoolAuthority transactions.
	Admin *core.GlobalPool
}

// Slot is the slot the transaction executes at.
func (c *Context) Slot() uint64 {
	return c.Block.Slot()
}

// Emit publishes an event for the current transaction.
func (c *Context) Emit(typ events.EventType, data map[string]any) {
	if c.Emitter == nil {
		return
	}
	c.Emitter.Emit(events.Event{
		Type:        typ,
		TxID:        c.Tx.ID,
		BlockHeight: c.Block.Header.Height,
		Data:        data,
	})
}

// Option configures an Executor.
type Option func(*Executor)

// WithOracle replaces the state-backed randomness oracle.
func WithOracle(o oracle.Oracle) Option {
	return func(e *Executor) { e.oracle = o }
}

// WithChainID makes the executor reject transactions signed for another
// chain.
func WithChainID(id string) Option {
	return func(e *Executor) { e.chainID = id }
}

// WithLogger sets the logger handed to handlers.
func WithLogger(log *slog.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// Executor applies transactions to the state using the global Handler registry.
type Executor struct {
	state   core.State
	emitter *events.Emitter
	oracle  oracle.Oracle
	log     *slog.Logger
	chainID string
}

// NewExecutor creates an Executor with the given state and event emitter.
func NewExecutor(state core.State, emitter *events.Emitter, opts ...Option) *Executor {
	e := &Executor{state: state, emitter: emitter}
	for _, opt := range opts {
		opt(e)
	}
	if e.oracle == nil {
		e.oracle = oracle.New(state)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// ExecuteBlock applies all transactions in block sequentially.
// A failing transaction causes the whole block to be rejected.
// EventBlockCommit is emitted by the caller (consensus) after signing so
// the event carries the correct block hash.
func (e *Executor) ExecuteBlock(block *core.Block) error {
	for _, tx := range block.Transactions {
		if err := e.ExecuteTx(block, tx); err != nil {
			return fmt.Errorf("tx %s failed: %w", tx.ID, err)
		}
	}
	return nil
}

// ExecuteTx verifies and executes a single transaction with snapshot/rollback.
// On failure the state is exactly as it was before the call.
func (e *Executor) ExecuteTx(block *core.Block, tx *core.Transaction) error {
	if err := tx.Verify(); err != nil {
		metrics.TxTotal.WithLabelValues(string(tx.Type), "invalid").Inc()
		return fmt.Errorf("signature: %w", err)
	}
	if e.chainID != "" && tx.ChainID != e.chainID {
		metrics.TxTotal.WithLabelValues(string(tx.Type), "invalid").Inc()
		return fmt.Errorf("chain id %q does not match %q", tx.ChainID, e.chainID)
	}

	snapID, err := e.state.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	if err := e.applyTx(block, tx); err != nil {
		metrics.TxTotal.WithLabelValues(string(tx.Type), "failed").Inc()
		if revertErr := e.state.RevertToSnapshot(snapID); revertErr != nil {
			return fmt.Errorf("revert snapshot after tx failure: %w (revert: %v)", err, revertErr)
		}
		return err
	}

	metrics.TxTotal.WithLabelValues(string(tx.Type), "ok").Inc()
	if e.emitter != nil {
		e.emitter.Emit(events.Event{
			Type:        events.EventTxExecuted,
			TxID:        tx.ID,
			BlockHeight: block.Header.Height,
			Data:        map[string]any{"type": string(tx.Type), "from": tx.From},
		})
	}
	return nil
}

// applyTx deducts the fee, increments the nonce, then dispatches to the handler.
func (e *Executor) applyTx(block *core.Block, tx *core.Transaction) error {
	acc, err := e.state.GetAccount(tx.From)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if acc.Nonce != tx.Nonce {
		return fmt.Errorf("invalid nonce: expected %d got %d", acc.Nonce, tx.Nonce)
	}
	if acc.Balance < tx.Fee {
		return fmt.Errorf("insufficient balance for fee: have %d need %d", acc.Balance, tx.Fee)
	}
	if acc.Nonce == math.MaxUint64 {
		return fmt.Errorf("nonce overflow for account %s", tx.From)
	}
	acc.Balance -= tx.Fee
	acc.Nonce++
	if err := e.state.SetAccount(acc); err != nil {
		return err
	}

	ctx := &Context{
		State:   e.state,
		Block:   block,
		Tx:      tx,
		Emitter: e.emitter,
		Ledger:  ledger.New(e.state),
		Oracle:  e.oracle,
		Log:     e.log.With("tx", tx.ID, "type", tx.Type),
	}
	return globalRegistry.Execute(tx.Type, ctx, tx.Payload)
}
