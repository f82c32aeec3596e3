// Package consensus implements single-authority block production. One
// validator key produces a block per tick; each block is one slot.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/metrics"
	"github.com/tolelom/tolfarm/vm"
)

// ErrStateCommit means a block was stored but its state could not be
// flushed. The node must stop.
var ErrStateCommit = errors.New("state commit failed")

// Options tunes a PoA engine. Zero values use the defaults.
type Options struct {
	MaxBlockTxs int
	Clock       clockwork.Clock
	Log         *slog.Logger
}

// PoA is the single-authority consensus engine.
type PoA struct {
	bc      *core.Blockchain
	state   core.State
	mempool *core.Mempool
	exec    *vm.Executor
	emitter *events.Emitter
	privKey crypto.PrivateKey
	pubKey  crypto.PublicKey

	maxTxs int
	clock  clockwork.Clock
	log    *slog.Logger
}

// New creates a PoA engine for the validator identified by privKey.
func New(
	bc *core.Blockchain,
	state core.State,
	mempool *core.Mempool,
	exec *vm.Executor,
	emitter *events.Emitter,
	privKey crypto.PrivateKey,
	opts Options,
) *PoA {
	p := &PoA{
		bc:      bc,
		state:   state,
		mempool: mempool,
		exec:    exec,
		emitter: emitter,
		privKey: privKey,
		pubKey:  privKey.Public(),
		maxTxs:  opts.MaxBlockTxs,
		clock:   opts.Clock,
		log:     opts.Log,
	}
	if p.maxTxs <= 0 {
		p.maxTxs = 500
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	return p
}

// ProduceBlock executes up to MaxBlockTxs pending transactions at the next
// slot, seals the successful ones into a signed block and commits it.
// Failed transactions are dropped from the mempool and reported with an
// EventTxFailed.
func (p *PoA) ProduceBlock() (*core.Block, error) {
	start := p.clock.Now()

	link := p.bc.Next()
	height := link.Height
	block := core.NewBlock(height, link.PrevHash, p.pubKey.String(), start)

	snap, err := p.state.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	pending := p.mempool.Pending(p.maxTxs)
	included := make([]*core.Transaction, 0, len(pending))
	done := make([]string, 0, len(pending))
	for _, tx := range pending {
		done = append(done, tx.ID)
		if err := p.exec.ExecuteTx(block, tx); err != nil {
			p.log.Warn("dropping transaction", "tx", tx.ID, "type", tx.Type, "from", tx.From, "slot", block.Slot(), "error", err)
			p.emitter.Emit(events.Event{
				Type:        events.EventTxFailed,
				TxID:        tx.ID,
				BlockHeight: height,
				Data:        map[string]any{"type": string(tx.Type), "from": tx.From, "error": err.Error()},
			})
			continue
		}
		included = append(included, tx)
	}

	// Root from the write buffer before flushing, so a failed AddBlock
	// leaves nothing persisted.
	block.Seal(included, p.state.ComputeRoot())
	block.Sign(p.privKey)

	err = p.ValidateBlock(block)
	if err == nil {
		err = p.bc.AddBlock(block)
	}
	if err != nil {
		if revertErr := p.state.RevertToSnapshot(snap); revertErr != nil {
			return nil, fmt.Errorf("add block: %w (revert: %v)", err, revertErr)
		}
		return nil, fmt.Errorf("add block: %w", err)
	}
	if err := p.state.Commit(); err != nil {
		return nil, fmt.Errorf("%w: block %d: %v", ErrStateCommit, height, err)
	}

	p.emitter.Emit(events.Event{
		Type:        events.EventBlockCommit,
		BlockHeight: height,
		Data:        map[string]any{"hash": block.Hash, "txs": len(included), "dropped": len(done) - len(included)},
	})
	p.mempool.Remove(done)

	metrics.BlocksProduced.Inc()
	metrics.ChainHeight.Set(float64(height))
	metrics.MempoolSize.Set(float64(p.mempool.Size()))
	metrics.BlockProductionDuration.Observe(p.clock.Since(start).Seconds())
	return block, nil
}

// ValidateBlock checks that block was signed by this engine's validator
// and links to the current tip.
func (p *PoA) ValidateBlock(block *core.Block) error {
	if block.Header.Proposer != p.pubKey.String() {
		return fmt.Errorf("wrong proposer: got %s want %s", block.Header.Proposer, p.pubKey.String())
	}
	if block.ComputeHash() != block.Hash {
		return errors.New("block hash does not match header")
	}
	if err := block.Verify(p.pubKey); err != nil {
		return fmt.Errorf("block signature invalid: %w", err)
	}
	return p.bc.CheckNext(block)
}

// Run produces a block every interval until ctx is done. It returns early
// only on ErrStateCommit.
func (p *PoA) Run(ctx context.Context, interval time.Duration) error {
	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			block, err := p.ProduceBlock()
			if errors.Is(err, ErrStateCommit) {
				return err
			}
			if err != nil {
				p.log.Error("produce block", "error", err)
				continue
			}
			if n := len(block.Transactions); n > 0 {
				p.log.Debug("block committed", "height", block.Header.Height, "txs", n, "hash", block.Hash)
			}
		}
	}
}
