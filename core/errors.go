package core

import "errors"

// ErrNotFound is returned when a requested object does not exist in storage.
var ErrNotFound = errors.New("not found")

// Validation errors.
var (
	ErrInvalidUnitIndex        = errors.New("unit index out of range")
	ErrUnitAlreadyActive       = errors.New("unit is already active")
	ErrUnitNotActive           = errors.New("unit is not active")
	ErrUnitActive              = errors.New("unit is active and must be unstaked first")
	ErrInventoryFull           = errors.New("unit inventory is full")
	ErrMachineCapacityExceeded = errors.New("facility has no free unit slots")
	ErrPowerCapacityExceeded   = errors.New("facility capacity exceeded")
	ErrInvalidTier             = errors.New("invalid facility tier")
	ErrInvalidRarity           = errors.New("invalid rarity")
	ErrUnknownUnit             = errors.New("unknown unit id")
	ErrZeroAmount              = errors.New("amount must be > 0")
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrInvalidRecycleBatch     = errors.New("invalid recycle batch")
	ErrSelfReferral            = errors.New("player cannot refer themselves")
	ErrPlayerExists            = errors.New("player already initialised")
	ErrPoolExists              = errors.New("pool already initialised")
)

// Arithmetic errors.
var (
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrSupplyExhausted    = errors.New("mintable supply exhausted")
)

// Protocol and state errors.
var (
	ErrUnauthorized              = errors.New("unauthorized")
	ErrProductionDisabled        = errors.New("production is disabled")
	ErrCooldownNotExpired        = errors.New("cooldown not expired")
	ErrActionPending             = errors.New("a randomized action is already pending")
	ErrNoPendingAction           = errors.New("no matching randomized action is pending")
	ErrRandomnessDelayNotMet     = errors.New("randomness delay not met")
	ErrInvalidRandomnessAccount  = errors.New("randomness account does not match commitment")
	ErrRandomnessExpired         = errors.New("randomness seed slot has moved on")
	ErrRandomnessNotResolved     = errors.New("randomness not resolved")
	ErrRandomnessAlreadyRevealed = errors.New("randomness already revealed")
	ErrCancelTooEarly            = errors.New("pending action has not timed out")
	ErrLockupActive              = errors.New("stake is still locked")
	ErrInsufficientStake         = errors.New("insufficient staked amount")
)

// Chain errors.
var (
	ErrBlockHeight   = errors.New("block height does not follow the tip")
	ErrBlockPrevHash = errors.New("block prev_hash does not link to the tip")
	ErrBlockTime     = errors.New("block timestamp is before the tip")
)

// External collaborator errors.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMintAuthority     = errors.New("signer is not the mint authority")
)
