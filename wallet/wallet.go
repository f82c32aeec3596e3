package wallet

import (
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/oracle"
)

// Wallet signs transactions for one key on one chain.
type Wallet struct {
	priv    crypto.PrivateKey
	pub     crypto.PublicKey
	chainID string
}

// New creates a Wallet from an existing private key.
func New(priv crypto.PrivateKey, chainID string) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public(), chainID: chainID}
}

// Generate creates a Wallet with a freshly generated key pair.
func Generate(chainID string) (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(priv, chainID), nil
}

// PrivKey returns the raw private key (handle with care).
func (w *Wallet) PrivKey() crypto.PrivateKey {
	return w.priv
}

// Address returns the base58 public key used as the "from" address.
func (w *Wallet) Address() string {
	return w.pub.String()
}

// ChainID returns the chain the wallet signs for.
func (w *Wallet) ChainID() string {
	return w.chainID
}

// NewTx creates a signed transaction. nonce must match the account's
// current nonce.
func (w *Wallet) NewTx(typ core.TxType, nonce, fee uint64, payload any) (*core.Transaction, error) {
	tx, err := core.NewTransaction(w.chainID, typ, w.Address(), nonce, fee, payload)
	if err != nil {
		return nil, err
	}
	tx.Sign(w.priv)
	return tx, nil
}

// Transfer sends native currency.
func (w *Wallet) Transfer(to string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxTransfer, nonce, fee, core.TransferPayload{To: to, Amount: amount})
}

// TokenTransfer sends tokens of mint.
func (w *Wallet) TokenTransfer(mint, to string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxTokenTransfer, nonce, fee, core.TokenTransferPayload{Mint: mint, To: to, Amount: amount})
}

// InitializePool creates a mint together with its reward and staking pools.
func (w *Wallet) InitializePool(p core.InitializePoolPayload, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxInitializePool, nonce, fee, p)
}

// PurchaseFacility creates the caller's player record. referrer may be empty.
func (w *Wallet) PurchaseFacility(mint, referrer string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxPurchaseFacility, nonce, fee, core.PurchaseFacilityPayload{Mint: mint, Referrer: referrer})
}

func (w *Wallet) StakeUnit(mint string, index uint8, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxStakeUnit, nonce, fee, core.UnitIndexPayload{Mint: mint, Index: index})
}

func (w *Wallet) UnstakeUnit(mint string, index uint8, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxUnstakeUnit, nonce, fee, core.UnitIndexPayload{Mint: mint, Index: index})
}

func (w *Wallet) DiscardUnit(mint string, index uint8, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxDiscardUnit, nonce, fee, core.UnitIndexPayload{Mint: mint, Index: index})
}

func (w *Wallet) UpgradeFacility(mint string, tier uint8, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxUpgradeFacility, nonce, fee, core.UpgradeFacilityPayload{Mint: mint, Tier: tier})
}

func (w *Wallet) ClaimRewards(mint string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxClaimRewards, nonce, fee, core.MintPayload{Mint: mint})
}

// Randomized actions reference a randomness account committed in the
// previous slot.

func (w *Wallet) RequestBooster(mint, randomness string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxRequestBooster, nonce, fee, core.RandomnessPayload{Mint: mint, Randomness: randomness})
}

func (w *Wallet) SettleBooster(mint, randomness string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxSettleBooster, nonce, fee, core.RandomnessPayload{Mint: mint, Randomness: randomness})
}

func (w *Wallet) RequestRecycle(mint, randomness string, indices []uint8, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxRequestRecycle, nonce, fee, core.RecycleRequestPayload{Mint: mint, Randomness: randomness, Indices: indices})
}

func (w *Wallet) SettleRecycle(mint, randomness string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxSettleRecycle, nonce, fee, core.RandomnessPayload{Mint: mint, Randomness: randomness})
}

func (w *Wallet) GambleCommit(mint, randomness string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxGambleCommit, nonce, fee, core.GambleCommitPayload{Mint: mint, Randomness: randomness, Amount: amount})
}

func (w *Wallet) GambleSettle(mint, randomness string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxGambleSettle, nonce, fee, core.RandomnessPayload{Mint: mint, Randomness: randomness})
}

func (w *Wallet) CancelPending(mint string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxCancelPending, nonce, fee, core.MintPayload{Mint: mint})
}

func (w *Wallet) StakeTokens(mint string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxStakeTokens, nonce, fee, core.StakeTokensPayload{Mint: mint, Amount: amount})
}

func (w *Wallet) UnstakeTokens(mint string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxUnstakeTokens, nonce, fee, core.StakeTokensPayload{Mint: mint, Amount: amount})
}

func (w *Wallet) ClaimStakingRewards(mint string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxClaimStakingRewards, nonce, fee, core.MintPayload{Mint: mint})
}

func (w *Wallet) UpdateSolRewards(mint string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxUpdateSolRewards, nonce, fee, core.MintPayload{Mint: mint})
}

// Pool authority operations.

func (w *Wallet) ToggleProduction(mint string, enabled bool, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxToggleProduction, nonce, fee, core.ToggleProductionPayload{Mint: mint, Enabled: enabled})
}

func (w *Wallet) UpdateParameter(mint, name string, value, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxUpdateParameter, nonce, fee, core.UpdateParameterPayload{Mint: mint, Name: name, Value: value})
}

func (w *Wallet) AdvancePool(mint string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxAdvancePoolManual, nonce, fee, core.MintPayload{Mint: mint})
}

func (w *Wallet) ResetPlayer(mint, owner string, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxResetPlayer, nonce, fee, core.ResetPlayerPayload{Mint: mint, Owner: owner})
}

// RandomnessCommit binds the wallet's randomness account for accountNonce
// to the previous slot.
func (w *Wallet) RandomnessCommit(accountNonce, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxRandomnessCommit, nonce, fee, core.RandomnessCommitPayload{Nonce: accountNonce})
}

// RandomnessReveal signs (account, seedSlot) with the wallet key and wraps
// the signature in a reveal transaction. Only the oracle key's reveal is
// accepted.
func (w *Wallet) RandomnessReveal(account string, seedSlot, nonce, fee uint64) (*core.Transaction, error) {
	sig := crypto.Sign(w.priv, oracle.Message(account, seedSlot))
	return w.NewTx(core.TxRandomnessReveal, nonce, fee, core.RandomnessRevealPayload{Account: account, Signature: sig})
}
