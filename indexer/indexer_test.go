package indexer_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/indexer"
	"github.com/tolelom/tolfarm/internal/gametest"
	"github.com/tolelom/tolfarm/internal/logger"
	"github.com/tolelom/tolfarm/internal/testutil"
	"github.com/tolelom/tolfarm/storage"
)

func TestPlayersByMint(t *testing.T) {
	c := gametest.New(t, nil)
	idx, err := indexer.New(c.DB, c.Emitter)
	require.NoError(t, err)

	alice := c.Wallet(1_000_000_000)
	bob := c.Wallet(1_000_000_000)
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.PurchaseFacility(c.Mint, "", n, 0) })
	c.MustDo(bob, func(n uint64) (*core.Transaction, error) { return bob.PurchaseFacility(c.Mint, alice.Address(), n, 0) })

	owners, err := idx.PlayersByMint(c.Mint)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.Address(), bob.Address()}, owners)

	none, err := idx.PlayersByMint("other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHistory(t *testing.T) {
	c := gametest.New(t, nil)
	idx, err := indexer.New(c.DB, c.Emitter)
	require.NoError(t, err)

	alice := c.Wallet(1_000_000_000)
	bob := c.Wallet(0)
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.Transfer(bob.Address(), 10, n, 0) })
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.PurchaseFacility(c.Mint, bob.Address(), n, 0) })

	history, err := idx.History(alice.Address(), 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, events.EventNativeTransfer, history[0].Type)
	assert.Equal(t, events.EventFacilityPurchased, history[1].Type)
	assert.Less(t, history[0].BlockHeight, history[1].BlockHeight)
	assert.NotEmpty(t, history[0].TxID)

	// bob is named as recipient and as referrer.
	bobHistory, err := idx.History(bob.Address(), 0)
	require.NoError(t, err)
	assert.Len(t, bobHistory, 2)

	latest, err := idx.History(alice.Address(), 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, events.EventFacilityPurchased, latest[0].Type)

	// A cached read is invalidated by the next event.
	c.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.Transfer(bob.Address(), 1, n, 0) })
	history, err = idx.History(alice.Address(), 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestHistorySurvivesRestart(t *testing.T) {
	db := testutil.NewMemDB()
	emitter := events.NewEmitter(logger.Discard())
	idx, err := indexer.New(db, emitter)
	require.NoError(t, err)

	emitter.Emit(events.Event{Type: events.EventNativeTransfer, BlockHeight: 2, Data: map[string]any{"from": "a", "to": "b"}})
	emitter.Emit(events.Event{Type: events.EventBlockCommit, BlockHeight: 2, Data: map[string]any{"hash": "h"}})
	emitter.Emit(events.Event{Type: events.EventNativeTransfer, BlockHeight: 1, Data: map[string]any{"from": "b", "to": "a"}})

	live, err := idx.History("a", 0)
	require.NoError(t, err)
	require.Len(t, live, 2)

	reopened, err := indexer.New(db, events.NewEmitter(logger.Discard()))
	require.NoError(t, err)
	history, err := reopened.History("a", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1), history[0].BlockHeight, "ordered by height")
	assert.Equal(t, "b", history[0].Data["from"])
}

// readOnlyDB rejects every write.
type readOnlyDB struct {
	storage.DB
}

func (readOnlyDB) Set(_, _ []byte) error { return errors.New("disk full") }

func TestFailedWritesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	emitter := events.NewEmitter(logger.Discard())
	_, err := indexer.New(readOnlyDB{testutil.NewMemDB()}, emitter,
		indexer.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	emitter.Emit(events.Event{Type: events.EventFacilityPurchased, BlockHeight: 3, Data: map[string]any{"owner": "a", "mint": "m"}})

	out := buf.String()
	assert.Contains(t, out, "player list write failed")
	assert.Contains(t, out, "history write failed")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "address=a")
}
