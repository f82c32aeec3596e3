package core

import (
	"encoding/json"
	"time"

	"github.com/tolelom/tolfarm/crypto"
)

// BlockHeader contains the block metadata that is hashed and signed.
// Height doubles as the slot every transaction in the block observes.
type BlockHeader struct {
	Height    int64  `json:"height"`
	PrevHash  string `json:"prev_hash"`
	StateRoot string `json:"state_root"`
	TxRoot    string `json:"tx_root"`
	Timestamp int64  `json:"timestamp"`
	Proposer  string `json:"proposer"`
}

// Block is a collection of transactions with a signed header. Only
// transactions that executed successfully are included.
type Block struct {
	Header       BlockHeader    `json:"header"`
	Transactions []*Transaction `json:"transactions"`
	Hash         string         `json:"hash"`
	Signature    string         `json:"signature"`
}

// Slot returns the slot number of the block.
func (b *Block) Slot() uint64 {
	if b.Header.Height < 0 {
		return 0
	}
	return uint64(b.Header.Height)
}

// ComputeHash returns the hash of the serialised header.
func (b *Block) ComputeHash() string {
	data, err := json.Marshal(b.Header)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign sets Hash and signs the block with the proposer's private key.
func (b *Block) Sign(priv crypto.PrivateKey) {
	b.Hash = b.ComputeHash()
	b.Signature = crypto.Sign(priv, []byte(b.Hash))
}

// Verify checks the block signature against the given public key.
func (b *Block) Verify(pub crypto.PublicKey) error {
	return crypto.Verify(pub, []byte(b.Hash), b.Signature)
}

// ComputeTxRoot builds a deterministic root hash from all transaction IDs.
func ComputeTxRoot(txs []*Transaction) string {
	if len(txs) == 0 {
		return crypto.Hash([]byte("empty"))
	}
	var ids []byte
	for _, tx := range txs {
		ids = append(ids, []byte(tx.ID)...)
	}
	return crypto.Hash(ids)
}

// NewBlock creates an unsigned block. The tx root is filled in by Seal once
// the included transactions are known.
func NewBlock(height int64, prevHash, proposer string, now time.Time) *Block {
	return &Block{
		Header: BlockHeader{
			Height:    height,
			PrevHash:  prevHash,
			Timestamp: now.UnixNano(),
			Proposer:  proposer,
		},
	}
}

// Seal records the included transactions and the resulting state root.
func (b *Block) Seal(txs []*Transaction, stateRoot string) {
	b.Transactions = txs
	b.Header.TxRoot = ComputeTxRoot(txs)
	b.Header.StateRoot = stateRoot
}
