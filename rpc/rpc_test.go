package rpc_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/indexer"
	"github.com/tolelom/tolfarm/internal/gametest"
	"github.com/tolelom/tolfarm/internal/logger"
	"github.com/tolelom/tolfarm/rpc"
)

type fixture struct {
	*gametest.Chain
	handler *rpc.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	c := gametest.New(t, nil)
	idx, err := indexer.New(c.DB, c.Emitter)
	require.NoError(t, err)
	return fixture{Chain: c, handler: rpc.NewHandler(c.BC, c.Mempool, c.State, idx, gametest.ChainID)}
}

func (f fixture) call(t *testing.T, method string, params any) rpc.Response {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		require.NoError(t, err)
	}
	return f.handler.Dispatch(rpc.Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
}

func TestDispatchErrors(t *testing.T) {
	f := newFixture(t)

	resp := f.call(t, "noSuchMethod", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeMethodNotFound, resp.Error.Code)

	resp = f.call(t, "getBalance", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeInvalidParams, resp.Error.Code)

	resp = f.call(t, "getPlayer", map[string]string{"mint": f.Mint, "owner": f.Validator.Address()})
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeNotFound, resp.Error.Code)

	resp = f.call(t, "getUnit", map[string]int{"id": 9999})
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeNotFound, resp.Error.Code)

	resp = f.call(t, "getTier", map[string]int{"level": 11})
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeInvalidParams, resp.Error.Code)
}

func TestChainQueries(t *testing.T) {
	f := newFixture(t)
	f.Next()

	resp := f.call(t, "getBlockHeight", nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, int64(1), resp.Result)

	resp = f.call(t, "getBlock", map[string]int64{"height": 0})
	require.Nil(t, resp.Error)
	genesis, ok := resp.Result.(*core.Block)
	require.True(t, ok)
	assert.Equal(t, uint64(0), genesis.Slot())

	resp = f.call(t, "getBlock", nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, f.BC.Tip().Hash, resp.Result.(*core.Block).Hash)

	resp = f.call(t, "getPool", map[string]string{"mint": f.Mint})
	require.Nil(t, resp.Error)
	assert.Equal(t, f.Pool, resp.Result.(*core.GlobalPool).Address)
}

func TestGetPlayerProjectsPendingReward(t *testing.T) {
	f := newFixture(t)
	alice := f.Wallet(1_000_000_000)
	f.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.PurchaseFacility(f.Mint, "", n, 0) })
	f.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeUnit(f.Mint, 0, n, 0) })
	staked := f.Slot()
	f.Skip(3)

	resp := f.call(t, "getPlayer", map[string]string{"mint": f.Mint, "owner": alice.Address()})
	require.Nil(t, resp.Error)
	view, ok := resp.Result.(rpc.PlayerView)
	require.True(t, ok)
	assert.Equal(t, f.BC.NextSlot(), view.AtSlot)
	assert.Equal(t, (view.AtSlot-staked)*gametest.DefaultPool().InitialRate, view.PendingReward)
	assert.Equal(t, alice.Address(), view.Owner)

	// Claiming in the next block yields exactly the projection.
	f.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.ClaimRewards(f.Mint, n, 0) })
	assert.Equal(t, view.PendingReward, f.Tokens(alice.Address()))

	resp = f.call(t, "getPlayers", map[string]string{"mint": f.Mint})
	require.Nil(t, resp.Error)
	assert.Equal(t, []string{alice.Address()}, resp.Result)

	resp = f.call(t, "getTokenBalance", map[string]string{"mint": f.Mint, "owner": alice.Address()})
	require.Nil(t, resp.Error)
	assert.Equal(t, view.PendingReward, resp.Result.(map[string]any)["balance"])
}

func TestGetStakePositionProjection(t *testing.T) {
	f := newFixture(t)
	alice := f.Wallet(0)
	f.GiveTokens(alice.Address(), 1_000)
	f.MustDo(alice, func(n uint64) (*core.Transaction, error) { return alice.StakeTokens(f.Mint, 1_000, n, 0) })
	staked := f.Slot()
	f.Skip(2)

	resp := f.call(t, "getStakePosition", map[string]string{"mint": f.Mint, "owner": alice.Address()})
	require.Nil(t, resp.Error)
	view := resp.Result.(rpc.StakeView)
	rate := gametest.DefaultPool().TokenRewardRate
	assert.Equal(t, (view.AtSlot-staked)*rate, view.PendingTokens)
	assert.Equal(t, staked+gametest.DefaultPool().StakingLockupSlots, view.UnlockSlot)
	assert.Equal(t, uint64(1_000), view.Amount)
}

func TestSendTx(t *testing.T) {
	f := newFixture(t)
	alice := f.Wallet(100)
	bob := f.Wallet(0)

	tx, err := alice.Transfer(bob.Address(), 1, 0, 0)
	require.NoError(t, err)
	tx.Timestamp = f.Clock.Now().UnixNano()
	tx.Sign(alice.PrivKey())

	resp := f.call(t, "sendTx", tx)
	require.Nil(t, resp.Error)
	assert.Equal(t, map[string]string{"tx_id": tx.ID}, resp.Result)
	assert.Equal(t, 1, f.Mempool.Size())

	resp = f.call(t, "sendTx", tx)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeRejected, resp.Error.Code)

	unknown := *tx
	unknown.Type = "mint_anything"
	resp = f.call(t, "sendTx", &unknown)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeInvalidParams, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unknown transaction type")

	foreign := *tx
	foreign.ChainID = "elsewhere"
	resp = f.call(t, "sendTx", &foreign)
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpc.CodeInvalidParams, resp.Error.Code)

	f.Next()
	assert.Equal(t, uint64(1), f.Native(bob.Address()))
}

func TestGetTxTypes(t *testing.T) {
	f := newFixture(t)

	resp := f.call(t, "getTxTypes", nil)
	require.Nil(t, resp.Error)
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var types []struct {
		Type   string `json:"type"`
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(data, &types))

	access := make(map[string]string, len(types))
	for i, tt := range types {
		if i > 0 {
			assert.Less(t, types[i-1].Type, tt.Type)
		}
		access[tt.Type] = tt.Access
	}
	assert.Equal(t, "anyone", access[string(core.TxTransfer)])
	assert.Equal(t, "pool_authority", access[string(core.TxUpdateSolRewards)])
	assert.Equal(t, "pool_authority", access[string(core.TxResetPlayer)])
}

func TestCatalogQueries(t *testing.T) {
	f := newFixture(t)

	resp := f.call(t, "getTier", map[string]int{"level": 2})
	require.Nil(t, resp.Error)
	assert.Equal(t, uint8(2), resp.Result.(catalog.Tier).Level)

	resp = f.call(t, "getUnit", map[string]int{"id": 132})
	require.Nil(t, resp.Error)
	assert.Equal(t, "Puffbird", resp.Result.(catalog.Unit).Name)

	resp = f.call(t, "findUnit", map[string]any{"query": "puffbird", "limit": 3})
	require.Nil(t, resp.Error)
	found := resp.Result.([]catalog.Unit)
	require.NotEmpty(t, found)
	assert.LessOrEqual(t, len(found), 3)
	assert.EqualValues(t, 132, found[0].ID)
}

func post(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServerAuthAndRoutes(t *testing.T) {
	f := newFixture(t)
	srv := rpc.NewServer(":0", f.handler, rpc.Options{AuthToken: "s3cret", Log: logger.Discard()})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":7,"method":"getBlockHeight"}`
	assert.Equal(t, http.StatusUnauthorized, post(t, ts.URL, "", body).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, post(t, ts.URL, "wrong", body).StatusCode)

	resp := post(t, ts.URL, "s3cret", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out rpc.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Nil(t, out.Error)
	assert.EqualValues(t, 7, out.ID)
	assert.EqualValues(t, 0, out.Result)

	resp = post(t, ts.URL, "s3cret", `{"jsonrpc":"1.0","id":1,"method":"getBlockHeight"}`)
	out = rpc.Response{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	assert.Equal(t, rpc.CodeInvalidRequest, out.Error.Code)

	resp = post(t, ts.URL, "s3cret", `{not json`)
	out = rpc.Response{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	assert.Equal(t, rpc.CodeParseError, out.Error.Code)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(text, []byte("tolfarm_rpc_requests_total")))
}

func TestServerRateLimit(t *testing.T) {
	f := newFixture(t)
	srv := rpc.NewServer(":0", f.handler, rpc.Options{RateLimit: 0.001, RateBurst: 1, Log: logger.Discard()})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"getMempoolSize"}`
	assert.Equal(t, http.StatusOK, post(t, ts.URL, "", body).StatusCode)
	limited := post(t, ts.URL, "", body)
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)
	assert.NotEmpty(t, limited.Header.Get("Retry-After"))
}

func TestServerCORS(t *testing.T) {
	f := newFixture(t)
	srv := rpc.NewServer(":0", f.handler, rpc.Options{CORSOrigins: []string{"https://app.example"}, Log: logger.Discard()})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
