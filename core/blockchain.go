package core

import (
	"fmt"
	"strings"
	"sync"
)

// GenesisPrevHash is the previous hash carried by block 0.
const GenesisPrevHash = "0000000000000000000000000000000000000000000000000000000000000000"

// IsGenesisPrevHash reports whether h is GenesisPrevHash.
func IsGenesisPrevHash(h string) bool {
	return len(h) == len(GenesisPrevHash) && strings.Count(h, "0") == len(h)
}

// BlockStore is the persistence interface used by Blockchain.
// Implementations live in the storage package.
type BlockStore interface {
	GetBlock(hash string) (*Block, error)
	GetBlockByHeight(height int64) (*Block, error)
	// GetTip returns the current tip hash, or ("", nil) for a fresh chain.
	GetTip() (string, error)
	// CommitBlock atomically writes the block, its height index entry, and
	// updates the tip pointer.
	CommitBlock(block *Block) error
}

// Link is what the next block must carry to extend the chain: its height
// (which is also its slot) and the hash of the block before it.
type Link struct {
	Height   int64
	PrevHash string
	// NotBefore is the tip's timestamp; slots never run backwards in time.
	NotBefore int64
}

// Slot is the slot the linked block executes at.
func (l Link) Slot() uint64 { return uint64(l.Height) }

// Blockchain is the slot clock of the game: one block per slot, starting at
// slot 0 with genesis. It stores blocks and tracks the tip.
type Blockchain struct {
	mu    sync.RWMutex
	store BlockStore
	tip   *Block
}

// NewBlockchain returns a Blockchain backed by store.
// Call Init() to load an existing chain tip from storage.
func NewBlockchain(store BlockStore) *Blockchain {
	return &Blockchain{store: store}
}

// Init loads the persisted tip from the block store.
func (bc *Blockchain) Init() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	tipHash, err := bc.store.GetTip()
	if err != nil {
		return fmt.Errorf("get tip: %w", err)
	}
	if tipHash == "" {
		return nil
	}
	tip, err := bc.store.GetBlock(tipHash)
	if err != nil {
		return fmt.Errorf("load tip block: %w", err)
	}
	bc.tip = tip
	return nil
}

// Next returns the link the next block must carry.
func (bc *Blockchain) Next() Link {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.next()
}

func (bc *Blockchain) next() Link {
	if bc.tip == nil {
		return Link{Height: 0, PrevHash: GenesisPrevHash}
	}
	return Link{
		Height:    bc.tip.Header.Height + 1,
		PrevHash:  bc.tip.Hash,
		NotBefore: bc.tip.Header.Timestamp,
	}
}

// CheckNext reports whether block would extend the chain: the next slot,
// linked to the tip, not older than the tip. It does not check signatures.
func (bc *Blockchain) CheckNext(block *Block) error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.checkNext(block)
}

func (bc *Blockchain) checkNext(block *Block) error {
	want := bc.next()
	if block.Header.Height != want.Height {
		return fmt.Errorf("%w: block height %d, next slot is %d", ErrBlockHeight, block.Header.Height, want.Height)
	}
	if bc.tip == nil {
		if !IsGenesisPrevHash(block.Header.PrevHash) {
			return fmt.Errorf("%w: genesis must reference the zero hash", ErrBlockPrevHash)
		}
		return nil
	}
	if block.Header.PrevHash != want.PrevHash {
		return fmt.Errorf("%w: got %s want %s", ErrBlockPrevHash, block.Header.PrevHash, want.PrevHash)
	}
	if block.Header.Timestamp < want.NotBefore {
		return fmt.Errorf("%w: slot %d at %d is before slot %d at %d",
			ErrBlockTime, want.Height, block.Header.Timestamp, want.Height-1, want.NotBefore)
	}
	return nil
}

// AddBlock checks that block extends the tip, then persists it and advances
// the tip.
func (bc *Blockchain) AddBlock(block *Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if err := bc.checkNext(block); err != nil {
		return err
	}
	if err := bc.store.CommitBlock(block); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	bc.tip = block
	return nil
}

// GetBlock returns a block by its hash.
func (bc *Blockchain) GetBlock(hash string) (*Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.store.GetBlock(hash)
}

// GetBlockByHeight returns the block of the given slot.
func (bc *Blockchain) GetBlockByHeight(height int64) (*Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.store.GetBlockByHeight(height)
}

// Tip returns the current chain tip, or nil for a fresh chain.
func (bc *Blockchain) Tip() *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.tip
}

// Height returns the height of the current tip (0 for a fresh chain).
func (bc *Blockchain) Height() int64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if bc.tip == nil {
		return 0
	}
	return bc.tip.Header.Height
}

// Slot is the last processed slot, 0 for a fresh chain.
func (bc *Blockchain) Slot() uint64 {
	return uint64(bc.Height())
}

// NextSlot returns the slot the next block will execute at.
func (bc *Blockchain) NextSlot() uint64 {
	return bc.Next().Slot()
}
