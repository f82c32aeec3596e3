package config

import (
	"fmt"
	"time"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/vm"
)

// GenesisHash is the previous hash of the genesis block.
const GenesisHash = core.GenesisPrevHash

// CreateGenesisBlock builds and signs block 0 at slot 0. It credits the
// allocations, records the oracle key, then runs one initialize_pool
// transaction per configured pool through exec so genesis pools are built
// exactly as later ones would be. The resulting state is committed.
func CreateGenesisBlock(cfg *Config, state core.State, exec *vm.Executor, proposerPriv crypto.PrivateKey, now time.Time) (*core.Block, error) {
	proposer := proposerPriv.Public().String()

	for addr, balance := range cfg.Genesis.Alloc {
		if err := state.SetAccount(&core.Account{Address: addr, Balance: balance}); err != nil {
			return nil, err
		}
	}
	oracleKey := cfg.Genesis.Oracle
	if oracleKey == "" {
		oracleKey = proposer
	}
	if _, err := crypto.PubKeyFromString(oracleKey); err != nil {
		return nil, fmt.Errorf("genesis oracle: %w", err)
	}
	if err := state.SetOracleConfig(&core.OracleConfig{Authority: oracleKey}); err != nil {
		return nil, err
	}

	block := core.NewBlock(0, GenesisHash, proposer, now)
	txs := make([]*core.Transaction, 0, len(cfg.Genesis.Pools))
	for i, pg := range cfg.Genesis.Pools {
		tx, err := core.NewTransaction(cfg.Genesis.ChainID, core.TxInitializePool, proposer, uint64(i), 0, pg.Payload())
		if err != nil {
			return nil, err
		}
		tx.Timestamp = now.UnixNano()
		tx.Sign(proposerPriv)
		if err := exec.ExecuteTx(block, tx); err != nil {
			return nil, fmt.Errorf("genesis pool %s: %w", pg.Symbol, err)
		}
		txs = append(txs, tx)
	}

	block.Seal(txs, state.ComputeRoot())
	block.Sign(proposerPriv)
	if err := state.Commit(); err != nil {
		return nil, err
	}
	return block, nil
}

// IsGenesisHash returns true if the hash is the canonical genesis prev-hash.
func IsGenesisHash(h string) bool {
	return core.IsGenesisPrevHash(h)
}
