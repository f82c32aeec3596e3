package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tolelom/tolfarm/crypto"
)

// TxType identifies the kind of operation a transaction performs.
type TxType string

const (
	TxTransfer      TxType = "transfer"
	TxTokenTransfer TxType = "token_transfer"

	TxInitializePool   TxType = "initialize_pool"
	TxPurchaseFacility TxType = "purchase_initial_facility"
	TxStakeUnit        TxType = "stake_unit"
	TxUnstakeUnit      TxType = "unstake_unit"
	TxDiscardUnit      TxType = "discard_unit"
	TxUpgradeFacility  TxType = "upgrade_facility"
	TxClaimRewards     TxType = "claim_rewards"

	TxRequestBooster TxType = "request_booster"
	TxSettleBooster  TxType = "settle_booster"
	TxRequestRecycle TxType = "request_recycle"
	TxSettleRecycle  TxType = "settle_recycle"
	TxGambleCommit   TxType = "gamble_commit"
	TxGambleSettle   TxType = "gamble_settle"
	TxCancelPending  TxType = "cancel_pending_action"

	TxStakeTokens         TxType = "stake_tokens"
	TxUnstakeTokens       TxType = "unstake_tokens"
	TxClaimStakingRewards TxType = "claim_staking_rewards"

	TxToggleProduction  TxType = "toggle_production"
	TxUpdateParameter   TxType = "update_parameter"
	TxAdvancePoolManual TxType = "advance_pool_manual"
	TxResetPlayer       TxType = "reset_player"
	TxUpdateSolRewards  TxType = "update_sol_rewards"

	TxRandomnessCommit TxType = "randomness_commit"
	TxRandomnessReveal TxType = "randomness_reveal"
)

// Transaction is the atomic unit of work on the chain.
// From holds the sender's base58 ed25519 public key.
// Signature covers all fields except ID and Signature.
type Transaction struct {
	ID        string          `json:"id"`
	ChainID   string          `json:"chain_id"`
	Type      TxType          `json:"type"`
	From      string          `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Fee       uint64          `json:"fee"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// signingBody holds the fields that are covered by the signature.
type signingBody struct {
	ChainID   string          `json:"chain_id"`
	Type      TxType          `json:"type"`
	From      string          `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Fee       uint64          `json:"fee"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Hash returns a deterministic hash of the transaction (sans Signature).
// Returns an empty string if marshalling fails (which cannot happen in practice).
func (tx *Transaction) Hash() string {
	body := signingBody{
		ChainID:   tx.ChainID,
		Type:      tx.Type,
		From:      tx.From,
		Nonce:     tx.Nonce,
		Fee:       tx.Fee,
		Timestamp: tx.Timestamp,
		Payload:   tx.Payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign computes the signature and sets ID.
func (tx *Transaction) Sign(priv crypto.PrivateKey) {
	hash := tx.Hash()
	tx.Signature = crypto.Sign(priv, []byte(hash))
	tx.ID = hash
}

// Verify checks the signature and that From is a valid public key.
func (tx *Transaction) Verify() error {
	if tx.From == "" {
		return errors.New("missing from field")
	}
	pub, err := crypto.PubKeyFromString(tx.From)
	if err != nil {
		return fmt.Errorf("invalid from (must be base58 ed25519 pubkey): %w", err)
	}
	return crypto.Verify(pub, []byte(tx.Hash()), tx.Signature)
}

// NewTransaction creates an unsigned transaction with the current timestamp.
func NewTransaction(chainID string, typ TxType, from string, nonce, fee uint64, payload any) (*Transaction, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Transaction{
		ChainID:   chainID,
		Type:      typ,
		From:      from,
		Nonce:     nonce,
		Fee:       fee,
		Timestamp: time.Now().UnixNano(),
		Payload:   raw,
	}, nil
}

// ---- Payload types ----

// TransferPayload transfers native currency.
type TransferPayload struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// TokenTransferPayload transfers tokens of one mint.
type TokenTransferPayload struct {
	Mint   string `json:"mint"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// InitializePoolPayload creates a mint, its reward pool and its staking pool.
// A nil Economics keeps the defaults.
type InitializePoolPayload struct {
	Symbol               string     `json:"symbol"`
	Decimals             uint8      `json:"decimals"`
	FeesWallet           string     `json:"fees_wallet"`
	TotalSupply          uint64     `json:"total_supply"`
	InitialRate          uint64     `json:"initial_rate"`
	HalvingIntervalSlots uint64     `json:"halving_interval_slots"`
	StakingLockupSlots   uint64     `json:"staking_lockup_slots"`
	TokenRewardRate      uint64     `json:"token_reward_rate"`
	Economics            *Economics `json:"economics,omitempty"`
}

// MintPayload addresses the caller's player record for mint.
type MintPayload struct {
	Mint string `json:"mint"`
}

// PurchaseFacilityPayload creates the caller's player record.
type PurchaseFacilityPayload struct {
	Mint     string `json:"mint"`
	Referrer string `json:"referrer,omitempty"`
}

// UnitIndexPayload addresses one inventory slot.
type UnitIndexPayload struct {
	Mint  string `json:"mint"`
	Index uint8  `json:"index"`
}

// UpgradeFacilityPayload moves the facility to Tier.
type UpgradeFacilityPayload struct {
	Mint string `json:"mint"`
	Tier uint8  `json:"tier"`
}

// RandomnessPayload names the randomness account a request binds to, or
// the one a settlement consumes.
type RandomnessPayload struct {
	Mint       string `json:"mint"`
	Randomness string `json:"randomness"`
}

// RecycleRequestPayload submits RecycleBatch distinct inventory indices.
type RecycleRequestPayload struct {
	Mint       string  `json:"mint"`
	Randomness string  `json:"randomness"`
	Indices    []uint8 `json:"indices"`
}

// GambleCommitPayload stakes Amount tokens on one gamble.
type GambleCommitPayload struct {
	Mint       string `json:"mint"`
	Randomness string `json:"randomness"`
	Amount     uint64 `json:"amount"`
}

// StakeTokensPayload moves tokens into or out of the staking pool.
type StakeTokensPayload struct {
	Mint   string `json:"mint"`
	Amount uint64 `json:"amount"`
}

// ToggleProductionPayload flips the production kill-switch.
type ToggleProductionPayload struct {
	Mint    string `json:"mint"`
	Enabled bool   `json:"enabled"`
}

// UpdateParameterPayload sets one named pool parameter.
type UpdateParameterPayload struct {
	Mint  string `json:"mint"`
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// ResetPlayerPayload wipes the player record of Owner.
type ResetPlayerPayload struct {
	Mint  string `json:"mint"`
	Owner string `json:"owner"`
}

// RandomnessCommitPayload creates or re-binds the caller's randomness
// account Nonce to the previous slot's seed.
type RandomnessCommitPayload struct {
	Nonce uint64 `json:"nonce"`
}

// RandomnessRevealPayload publishes the oracle signature for Account.
type RandomnessRevealPayload struct {
	Account   string `json:"account"`
	Signature string `json:"signature"`
}
