package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
)

// registerPrefix records a state-key prefix into statePrefixes so that
// ComputeRoot() always covers it.
func registerPrefix(p string) string {
	statePrefixes = append(statePrefixes, p)
	return p
}

// statePrefixes is populated by registerPrefix() below.
var statePrefixes []string

var (
	prefixAccount    = registerPrefix("acct:")
	prefixMint       = registerPrefix("mint:")
	prefixToken      = registerPrefix("tok:")
	prefixPool       = registerPrefix("pool:")
	prefixPlayer     = registerPrefix("player:")
	prefixStaking    = registerPrefix("stkpool:")
	prefixStake      = registerPrefix("stake:")
	prefixOracle     = registerPrefix("oracle:")
	prefixRandomness = registerPrefix("rand:")
)

const oracleConfigKey = "config"

type stateSnapshot struct {
	dirty   map[string][]byte
	deleted map[string]bool
}

// StateDB implements core.State on top of a DB with in-memory write buffer,
// snapshot/rollback, and deterministic state-root computation.
type StateDB struct {
	db        DB
	dirty     map[string][]byte
	deleted   map[string]bool
	snapshots []stateSnapshot
}

// NewStateDB creates a StateDB backed by db.
func NewStateDB(db DB) *StateDB {
	return &StateDB{
		db:      db,
		dirty:   make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

// ---- internal helpers ----

func (s *StateDB) get(key string) ([]byte, error) {
	if s.deleted[key] {
		return nil, core.ErrNotFound
	}
	if v, ok := s.dirty[key]; ok {
		return v, nil
	}
	return s.db.Get([]byte(key))
}

func (s *StateDB) set(key string, val []byte) {
	delete(s.deleted, key)
	s.dirty[key] = val
}

func (s *StateDB) load(key string, v any) error {
	data, err := s.get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *StateDB) store(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.set(key, data)
	return nil
}

// ---- Accounts and tokens ----

func (s *StateDB) GetAccount(address string) (*core.Account, error) {
	var acc core.Account
	err := s.load(prefixAccount+address, &acc)
	if errors.Is(err, core.ErrNotFound) {
		return &core.Account{Address: address}, nil // zero-value account
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *StateDB) SetAccount(acc *core.Account) error {
	return s.store(prefixAccount+acc.Address, acc)
}

func (s *StateDB) GetMint(address string) (*core.Mint, error) {
	var m core.Mint
	if err := s.load(prefixMint+address, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *StateDB) SetMint(m *core.Mint) error {
	return s.store(prefixMint+m.Address, m)
}

func tokenKey(mint, owner string) string {
	return prefixToken + mint + ":" + owner
}

func (s *StateDB) GetTokenAccount(mint, owner string) (*core.TokenAccount, error) {
	var ta core.TokenAccount
	err := s.load(tokenKey(mint, owner), &ta)
	if errors.Is(err, core.ErrNotFound) {
		return &core.TokenAccount{Mint: mint, Owner: owner}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ta, nil
}

func (s *StateDB) SetTokenAccount(ta *core.TokenAccount) error {
	return s.store(tokenKey(ta.Mint, ta.Owner), ta)
}

// ---- Pool and players ----

func (s *StateDB) GetPool(address string) (*core.GlobalPool, error) {
	var p core.GlobalPool
	if err := s.load(prefixPool+address, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StateDB) SetPool(p *core.GlobalPool) error {
	return s.store(prefixPool+p.Address, p)
}

func (s *StateDB) GetPlayer(address string) (*core.Player, error) {
	var p core.Player
	if err := s.load(prefixPlayer+address, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StateDB) SetPlayer(p *core.Player) error {
	return s.store(prefixPlayer+p.Address, p)
}

// ---- Token staking ----

func (s *StateDB) GetStakingPool(address string) (*core.StakingPool, error) {
	var p core.StakingPool
	if err := s.load(prefixStaking+address, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StateDB) SetStakingPool(p *core.StakingPool) error {
	return s.store(prefixStaking+p.Address, p)
}

func (s *StateDB) GetStakePosition(address string) (*core.StakePosition, error) {
	var p core.StakePosition
	if err := s.load(prefixStake+address, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StateDB) SetStakePosition(p *core.StakePosition) error {
	return s.store(prefixStake+p.Address, p)
}

// ---- Randomness ----

func (s *StateDB) GetOracleConfig() (*core.OracleConfig, error) {
	var c core.OracleConfig
	if err := s.load(prefixOracle+oracleConfigKey, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *StateDB) SetOracleConfig(c *core.OracleConfig) error {
	return s.store(prefixOracle+oracleConfigKey, c)
}

func (s *StateDB) GetRandomness(address string) (*core.RandomnessAccount, error) {
	var r core.RandomnessAccount
	if err := s.load(prefixRandomness+address, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *StateDB) SetRandomness(r *core.RandomnessAccount) error {
	return s.store(prefixRandomness+r.Address, r)
}

// ---- Snapshot / Rollback / Commit ----

// Snapshot saves the current write buffer and returns a snapshot ID.
func (s *StateDB) Snapshot() (int, error) {
	s.snapshots = append(s.snapshots, stateSnapshot{
		dirty:   cloneBytesMap(s.dirty),
		deleted: cloneBoolMap(s.deleted),
	})
	return len(s.snapshots) - 1, nil
}

// RevertToSnapshot restores the write buffer to a previously saved snapshot
// and discards it and every later snapshot.
func (s *StateDB) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(s.snapshots) {
		return fmt.Errorf("invalid snapshot id %d", id)
	}
	snap := s.snapshots[id]
	s.dirty = cloneBytesMap(snap.dirty)
	s.deleted = cloneBoolMap(snap.deleted)
	s.snapshots = s.snapshots[:id]
	return nil
}

func cloneBytesMap(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = bytes.Clone(v)
	}
	return out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ComputeRoot returns the deterministic hash of the complete world state:
// persisted entries under every state prefix overlaid with the write
// buffer, sorted by key and length-prefix encoded. It does not flush.
func (s *StateDB) ComputeRoot() string {
	merged := make(map[string][]byte)
	for _, prefix := range statePrefixes {
		it := s.db.NewIterator([]byte(prefix))
		for it.Next() {
			merged[string(it.Key())] = bytes.Clone(it.Value())
		}
		it.Release()
	}
	for k, v := range s.dirty {
		merged[k] = v
	}
	for k := range s.deleted {
		delete(merged, k)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	var lenBuf [4]byte
	for _, k := range keys {
		v := merged[k]
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
		buf.Write(lenBuf[:])
		buf.WriteString(k)
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
		buf.Write(lenBuf[:])
		buf.Write(v)
	}
	return crypto.Hash(buf.Bytes())
}

// Commit atomically flushes the write buffer to the underlying DB and then
// clears it. Call ComputeRoot() before signing the block and Commit() after
// the block is stored.
func (s *StateDB) Commit() error {
	batch := s.db.NewBatch()
	for k, v := range s.dirty {
		batch.Set([]byte(k), v)
	}
	for k := range s.deleted {
		batch.Delete([]byte(k))
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.dirty = make(map[string][]byte)
	s.deleted = make(map[string]bool)
	s.snapshots = nil
	return nil
}
