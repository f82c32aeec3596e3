// Package rpc exposes chain and game state via a JSON-RPC 2.0 HTTP endpoint.
package rpc

import (
	"encoding/json"

	"github.com/tolelom/tolfarm/core"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Standard JSON-RPC error codes, plus server-defined ones.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeUnauthorized   = -32000
	CodeNotFound       = -32001
	CodeRejected       = -32002
)

func errResponse(id any, code int, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: msg},
	}
}

func okResponse(id, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// PlayerView is a player record with the reward it could claim at AtSlot.
type PlayerView struct {
	*core.Player
	PendingReward uint64 `json:"pending_reward"`
	AtSlot        uint64 `json:"at_slot"`
}

// StakeView is a stake position with the rewards it could claim at AtSlot.
type StakeView struct {
	*core.StakePosition
	UnlockSlot    uint64 `json:"unlock_slot"`
	PendingSol    uint64 `json:"pending_sol"`
	PendingTokens uint64 `json:"pending_tokens"`
	AtSlot        uint64 `json:"at_slot"`
}
