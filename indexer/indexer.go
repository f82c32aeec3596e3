// Package indexer maintains secondary indexes over committed events so
// clients can list the players of a mint and the action history of an
// address without scanning state.
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/storage"
)

const (
	prefixMintPlayers = "idx:mint:players:"
	prefixHistory     = "idx:history:"

	historyCacheSize = 1024
)

// subjectKeys are the event fields that name an address whose history the
// event belongs to.
var subjectKeys = []string{"player", "owner", "referrer", "from", "to"}

// Record is one indexed event in an address's history.
type Record struct {
	ID          string           `json:"id"`
	Type        events.EventType `json:"type"`
	TxID        string           `json:"tx_id,omitempty"`
	BlockHeight int64            `json:"block_height"`
	Data        map[string]any   `json:"data"`
}

// Indexer subscribes to chain events and updates secondary lookup tables.
type Indexer struct {
	db    storage.DB
	cache *lru.Cache // address -> []Record
	log   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets where failed index writes are reported.
func WithLogger(log *slog.Logger) Option {
	return func(idx *Indexer) { idx.log = log }
}

// New creates an Indexer backed by db and subscribes it to emitter.
func New(db storage.DB, emitter *events.Emitter, opts ...Option) (*Indexer, error) {
	cache, err := lru.New(historyCacheSize)
	if err != nil {
		return nil, err
	}
	idx := &Indexer{db: db, cache: cache, log: slog.Default()}
	for _, opt := range opts {
		opt(idx)
	}
	emitter.Subscribe(events.EventFacilityPurchased, idx.onFacilityPurchased)
	emitter.SubscribeAll(idx.onEvent)
	return idx, nil
}

// PlayersByMint returns the owners that bought a facility for mint, in
// purchase order.
func (idx *Indexer) PlayersByMint(mint string) ([]string, error) {
	return idx.getList(prefixMintPlayers + mint)
}

// History returns the events that named address, oldest first. A positive
// limit keeps only the newest limit records.
func (idx *Indexer) History(address string, limit int) ([]Record, error) {
	var records []Record
	if cached, ok := idx.cache.Get(address); ok {
		records = cached.([]Record)
	} else {
		var err error
		if records, err = idx.loadHistory(address); err != nil {
			return nil, err
		}
		idx.cache.Add(address, records)
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}

// ---- event handlers ----

func (idx *Indexer) onFacilityPurchased(ev events.Event) {
	owner, _ := ev.Data["owner"].(string)
	mint, _ := ev.Data["mint"].(string)
	if owner == "" || mint == "" {
		return
	}
	if err := idx.addToList(prefixMintPlayers+mint, owner); err != nil {
		idx.log.Error("indexer: player list write failed", "mint", mint, "owner", owner, "err", err)
	}
}

func (idx *Indexer) onEvent(ev events.Event) {
	if ev.Type == events.EventBlockCommit || ev.Type == events.EventTxExecuted {
		return
	}
	seen := make(map[string]bool, len(subjectKeys))
	for _, k := range subjectKeys {
		addr, _ := ev.Data[k].(string)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		if err := idx.appendHistory(addr, ev); err != nil {
			idx.log.Error("indexer: history write failed", "address", addr, "type", ev.Type, "height", ev.BlockHeight, "err", err)
		}
	}
}

// ---- history ----

func historyKey(address string, height int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixHistory, address, height, id))
}

func (idx *Indexer) appendHistory(address string, ev events.Event) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	rec := Record{ID: id.String(), Type: ev.Type, TxID: ev.TxID, BlockHeight: ev.BlockHeight, Data: ev.Data}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := idx.db.Set(historyKey(address, ev.BlockHeight, rec.ID), data); err != nil {
		return err
	}
	idx.cache.Remove(address)
	return nil
}

func (idx *Indexer) loadHistory(address string) ([]Record, error) {
	it := idx.db.NewIterator([]byte(prefixHistory + address + ":"))
	defer it.Release()
	var records []Record
	for it.Next() {
		var rec Record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("indexer unmarshal: %w", err)
		}
		records = append(records, rec)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	// Keys already sort by height then by time-ordered id; the sort keeps
	// that guarantee for backends whose iterators are unordered.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].BlockHeight != records[j].BlockHeight {
			return records[i].BlockHeight < records[j].BlockHeight
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// ---- list helpers ----

func (idx *Indexer) getList(key string) ([]string, error) {
	data, err := idx.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("indexer unmarshal: %w", err)
	}
	return ids, nil
}

func (idx *Indexer) addToList(key, value string) error {
	ids, err := idx.getList(key)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == value {
			return nil
		}
	}
	data, err := json.Marshal(append(ids, value))
	if err != nil {
		return err
	}
	return idx.db.Set([]byte(key), data)
}
