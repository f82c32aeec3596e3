package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	maxMempoolSize = 10_000
	maxTxAge       = time.Hour
	maxTxFuture    = 5 * time.Minute
)

// Mempool errors.
var (
	ErrMempoolFull  = errors.New("mempool full")
	ErrTxDuplicate  = errors.New("tx already in pool")
	ErrTxExpired    = errors.New("transaction expired")
	ErrTxFromFuture = errors.New("transaction timestamp too far in the future")
)

// Mempool is a thread-safe pending-transaction pool.
type Mempool struct {
	clock clockwork.Clock

	mu  sync.RWMutex
	txs map[string]*Transaction
	ord []string // insertion order, so blocks are built deterministically
}

// NewMempool creates an empty mempool that judges transaction age by clock.
func NewMempool(clock clockwork.Clock) *Mempool {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Mempool{clock: clock, txs: make(map[string]*Transaction)}
}

// Add validates and inserts a transaction. Returns an error if the pool is
// full, the tx is already present, the signature is invalid, or the
// timestamp is outside the accepted window.
func (m *Mempool) Add(tx *Transaction) error {
	if err := tx.Verify(); err != nil {
		return fmt.Errorf("invalid tx signature: %w", err)
	}
	now := m.clock.Now().UnixNano()
	if now-tx.Timestamp > int64(maxTxAge) {
		return ErrTxExpired
	}
	if tx.Timestamp-now > int64(maxTxFuture) {
		return ErrTxFromFuture
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) >= maxMempoolSize {
		return ErrMempoolFull
	}
	if _, exists := m.txs[tx.ID]; exists {
		return ErrTxDuplicate
	}
	m.txs[tx.ID] = tx
	m.ord = append(m.ord, tx.ID)
	return nil
}

// Get returns a transaction by ID.
func (m *Mempool) Get(id string) (*Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.txs[id]
	return tx, ok
}

// Pending returns up to n pending transactions in insertion order.
func (m *Mempool) Pending(n int) []*Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Transaction, 0, n)
	for _, id := range m.ord {
		if tx, ok := m.txs[id]; ok {
			result = append(result, tx)
			if len(result) >= n {
				break
			}
		}
	}
	return result
}

// Remove deletes transactions by ID. Called for both included and dropped
// transactions once a block is committed.
func (m *Mempool) Remove(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make(map[string]bool, len(ids))
	for _, id := range ids {
		delete(m.txs, id)
		removed[id] = true
	}
	filtered := m.ord[:0]
	for _, id := range m.ord {
		if !removed[id] {
			filtered = append(filtered, id)
		}
	}
	m.ord = filtered
}

// Size returns the current number of pending transactions.
func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}
