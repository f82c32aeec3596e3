package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/indexer"
	"github.com/tolelom/tolfarm/ledger"
	"github.com/tolelom/tolfarm/reward"
	"github.com/tolelom/tolfarm/vm"
)

const maxHistory = 500

// Handler holds all dependencies needed to serve RPC methods. state must be
// a read-only view of committed state; it is never written.
type Handler struct {
	bc      *core.Blockchain
	mempool *core.Mempool
	state   core.State
	ledger  *ledger.StateLedger
	indexer *indexer.Indexer
	chainID string
}

// NewHandler creates an RPC Handler.
func NewHandler(bc *core.Blockchain, mempool *core.Mempool, state core.State, idx *indexer.Indexer, chainID string) *Handler {
	return &Handler{bc: bc, mempool: mempool, state: state, ledger: ledger.New(state), indexer: idx, chainID: chainID}
}

type methodFunc func(h *Handler, params json.RawMessage) (any, error)

var methods = map[string]methodFunc{
	"getBlockHeight":   func(h *Handler, _ json.RawMessage) (any, error) { return h.bc.Height(), nil },
	"getMempoolSize":   func(h *Handler, _ json.RawMessage) (any, error) { return h.mempool.Size(), nil },
	"getBlock":         (*Handler).getBlock,
	"getBalance":       (*Handler).getBalance,
	"getTokenBalance":  (*Handler).getTokenBalance,
	"getPool":          (*Handler).getPool,
	"getPlayer":        (*Handler).getPlayer,
	"getStakingPool":   (*Handler).getStakingPool,
	"getStakePosition": (*Handler).getStakePosition,
	"getRandomness":    (*Handler).getRandomness,
	"getUnit":          (*Handler).getUnit,
	"findUnit":         (*Handler).findUnit,
	"getTier":          (*Handler).getTier,
	"getPlayers":       (*Handler).getPlayers,
	"getHistory":       (*Handler).getHistory,
	"getTxTypes":       (*Handler).getTxTypes,
	"sendTx":           (*Handler).sendTx,
}

// rpcError carries a specific JSON-RPC code out of a method.
type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string { return e.msg }

func invalidParams(format string, args ...any) error {
	return &rpcError{code: CodeInvalidParams, msg: fmt.Sprintf(format, args...)}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	m, ok := methods[req.Method]
	if !ok {
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
	result, err := m(h, req.Params)
	if err != nil {
		var re *rpcError
		switch {
		case errors.As(err, &re):
			return errResponse(req.ID, re.code, re.msg)
		case errors.Is(err, core.ErrNotFound):
			return errResponse(req.ID, CodeNotFound, err.Error())
		default:
			return errResponse(req.ID, CodeInternalError, err.Error())
		}
	}
	return okResponse(req.ID, result)
}

func decode(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return invalidParams("params are required")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("params: %v", err)
	}
	return nil
}

func (h *Handler) getBlock(params json.RawMessage) (any, error) {
	var p struct {
		Hash   string `json:"hash"`
		Height *int64 `json:"height"`
	}
	if len(params) > 0 {
		if err := decode(params, &p); err != nil {
			return nil, err
		}
	}
	var block *core.Block
	var err error
	switch {
	case p.Hash != "":
		block, err = h.bc.GetBlock(p.Hash)
	case p.Height != nil:
		block, err = h.bc.GetBlockByHeight(*p.Height)
	default:
		block = h.bc.Tip()
	}
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("block: %w", core.ErrNotFound)
	}
	return block, nil
}

func (h *Handler) getBalance(params json.RawMessage) (any, error) {
	var p struct {
		Address string `json:"address"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Address == "" {
		return nil, invalidParams("address is required")
	}
	return h.state.GetAccount(p.Address)
}

func (h *Handler) getTokenBalance(params json.RawMessage) (any, error) {
	var p struct {
		Mint  string `json:"mint"`
		Owner string `json:"owner"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Mint == "" || p.Owner == "" {
		return nil, invalidParams("mint and owner are required")
	}
	bal, err := h.ledger.TokenBalance(p.Mint, p.Owner)
	if err != nil {
		return nil, err
	}
	return map[string]any{"mint": p.Mint, "owner": p.Owner, "balance": bal}, nil
}

type mintOwnerParams struct {
	Mint  string `json:"mint"`
	Owner string `json:"owner"`
}

func (h *Handler) getPool(params json.RawMessage) (any, error) {
	var p mintOwnerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	addr, err := crypto.PoolAddress(p.Mint)
	if err != nil {
		return nil, invalidParams("mint: %v", err)
	}
	return h.state.GetPool(addr)
}

// getPlayer returns the player with the reward it could claim in the next
// block.
func (h *Handler) getPlayer(params json.RawMessage) (any, error) {
	var p mintOwnerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	poolAddr, err := crypto.PoolAddress(p.Mint)
	if err != nil {
		return nil, invalidParams("mint: %v", err)
	}
	playerAddr, err := crypto.PlayerAddress(p.Owner, p.Mint)
	if err != nil {
		return nil, invalidParams("owner: %v", err)
	}
	pool, err := h.state.GetPool(poolAddr)
	if err != nil {
		return nil, err
	}
	pl, err := h.state.GetPlayer(playerAddr)
	if err != nil {
		return nil, err
	}
	slot := h.bc.NextSlot()
	return PlayerView{Player: pl, PendingReward: reward.Pending(pool, pl, slot), AtSlot: slot}, nil
}

func (h *Handler) getStakingPool(params json.RawMessage) (any, error) {
	var p mintOwnerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	addr, err := crypto.StakingPoolAddress(p.Mint)
	if err != nil {
		return nil, invalidParams("mint: %v", err)
	}
	return h.state.GetStakingPool(addr)
}

func (h *Handler) getStakePosition(params json.RawMessage) (any, error) {
	var p mintOwnerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	spAddr, err := crypto.StakingPoolAddress(p.Mint)
	if err != nil {
		return nil, invalidParams("mint: %v", err)
	}
	posAddr, err := crypto.StakePositionAddress(p.Owner, p.Mint)
	if err != nil {
		return nil, invalidParams("owner: %v", err)
	}
	sp, err := h.state.GetStakingPool(spAddr)
	if err != nil {
		return nil, err
	}
	pos, err := h.state.GetStakePosition(posAddr)
	if err != nil {
		return nil, err
	}
	vault, err := h.ledger.NativeBalance(sp.SolVault)
	if err != nil {
		return nil, err
	}
	slot := h.bc.NextSlot()
	projected := *sp
	reward.UpdateStaking(&projected, vault, slot)
	sol, tokens := reward.StakePending(&projected, pos)
	return StakeView{
		StakePosition: pos,
		UnlockSlot:    reward.SaturatingAdd(pos.LastStakeSlot, sp.LockupSlots),
		PendingSol:    sol,
		PendingTokens: tokens,
		AtSlot:        slot,
	}, nil
}

func (h *Handler) getRandomness(params json.RawMessage) (any, error) {
	var p struct {
		Account string `json:"account"`
		Owner   string `json:"owner"`
		Nonce   uint64 `json:"nonce"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	addr := p.Account
	if addr == "" {
		if p.Owner == "" {
			return nil, invalidParams("account or owner is required")
		}
		var err error
		if addr, err = crypto.RandomnessAddress(p.Owner, p.Nonce); err != nil {
			return nil, invalidParams("owner: %v", err)
		}
	}
	return h.state.GetRandomness(addr)
}

func (h *Handler) getUnit(params json.RawMessage) (any, error) {
	var p struct {
		ID uint16 `json:"id"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	u, err := catalog.Lookup(p.ID)
	if err != nil {
		return nil, &rpcError{code: CodeNotFound, msg: err.Error()}
	}
	return u, nil
}

func (h *Handler) findUnit(params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Limit <= 0 || p.Limit > 50 {
		p.Limit = 10
	}
	return catalog.Search(p.Query, p.Limit), nil
}

func (h *Handler) getTier(params json.RawMessage) (any, error) {
	var p struct {
		Level uint8 `json:"level"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	t, err := catalog.TierInfo(p.Level)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	return t, nil
}

func (h *Handler) getPlayers(params json.RawMessage) (any, error) {
	var p mintOwnerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	owners, err := h.indexer.PlayersByMint(p.Mint)
	if err != nil {
		return nil, err
	}
	if owners == nil {
		owners = []string{}
	}
	return owners, nil
}

func (h *Handler) getHistory(params json.RawMessage) (any, error) {
	var p struct {
		Address string `json:"address"`
		Limit   int    `json:"limit"`
	}
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Address == "" {
		return nil, invalidParams("address is required")
	}
	if p.Limit <= 0 || p.Limit > maxHistory {
		p.Limit = maxHistory
	}
	return h.indexer.History(p.Address, p.Limit)
}

func (h *Handler) sendTx(params json.RawMessage) (any, error) {
	var tx core.Transaction
	if err := decode(params, &tx); err != nil {
		return nil, err
	}
	if tx.ChainID != h.chainID {
		return nil, invalidParams("chain ID mismatch: got %q want %q", tx.ChainID, h.chainID)
	}
	if _, ok := vm.Registered(tx.Type); !ok {
		return nil, invalidParams("unknown transaction type %q", tx.Type)
	}
	// Recompute the ID server-side; do not trust the client-provided value.
	tx.ID = tx.Hash()
	if err := h.mempool.Add(&tx); err != nil {
		return nil, &rpcError{code: CodeRejected, msg: err.Error()}
	}
	return map[string]string{"tx_id": tx.ID}, nil
}

type txTypeInfo struct {
	Type   core.TxType `json:"type"`
	Access string      `json:"access"`
}

func (h *Handler) getTxTypes(_ json.RawMessage) (any, error) {
	types := vm.TxTypes()
	out := make([]txTypeInfo, 0, len(types))
	for _, typ := range types {
		access, _ := vm.Registered(typ)
		out = append(out, txTypeInfo{Type: typ, Access: access.String()})
	}
	return out, nil
}
