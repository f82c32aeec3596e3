package core

// Account holds a participant's native balance and replay-protection nonce.
// Address is the base58-encoded ed25519 public key or a derived address.
type Account struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// Mint describes a fungible token. Only Authority may mint new supply.
type Mint struct {
	Address   string `json:"address"`
	Symbol    string `json:"symbol"`
	Authority string `json:"authority"`
	Decimals  uint8  `json:"decimals"`
	Supply    uint64 `json:"supply"`
}

// TokenAccount is the balance of one owner for one mint.
type TokenAccount struct {
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}

// OracleConfig names the key that is allowed to reveal randomness.
type OracleConfig struct {
	Authority string `json:"authority"`
}

// State is the full chain state interface. Implementations must be
// snapshot-able so the executor can roll back failed transactions.
type State interface {
	// Native accounts
	GetAccount(address string) (*Account, error)
	SetAccount(account *Account) error

	// Token ledger
	GetMint(address string) (*Mint, error)
	SetMint(m *Mint) error
	GetTokenAccount(mint, owner string) (*TokenAccount, error)
	SetTokenAccount(ta *TokenAccount) error

	// Reward pool and players
	GetPool(address string) (*GlobalPool, error)
	SetPool(p *GlobalPool) error
	GetPlayer(address string) (*Player, error)
	SetPlayer(p *Player) error

	// Auxiliary staking
	GetStakingPool(address string) (*StakingPool, error)
	SetStakingPool(p *StakingPool) error
	GetStakePosition(address string) (*StakePosition, error)
	SetStakePosition(p *StakePosition) error

	// Randomness
	GetOracleConfig() (*OracleConfig, error)
	SetOracleConfig(c *OracleConfig) error
	GetRandomness(address string) (*RandomnessAccount, error)
	SetRandomness(r *RandomnessAccount) error

	// Snapshot / rollback / commit
	Snapshot() (int, error)
	RevertToSnapshot(id int) error
	// ComputeRoot returns the deterministic state root from the current write
	// buffer without flushing. Call this before signing a block.
	ComputeRoot() string
	// Commit flushes the write buffer to the underlying DB and clears it.
	Commit() error
}
