// Package config loads node configuration from a TOML file, an optional
// .env file and TOLFARM_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/tolelom/tolfarm/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOLFARM_"

// Config holds all node configuration.
type Config struct {
	DataDir       string   `toml:"data_dir"`
	Engine        string   `toml:"engine"` // leveldb or sqlite
	RPCAddr       string   `toml:"rpc_addr"`
	RPCAuthToken  string   `toml:"rpc_auth_token"`
	CORSOrigins   []string `toml:"cors_origins"`
	RateLimit     float64  `toml:"rate_limit"` // requests per second per client IP; 0 disables
	RateBurst     int      `toml:"rate_burst"`
	BlockInterval string   `toml:"block_interval"`
	MaxBlockTxs   int      `toml:"max_block_txs"`
	Verbose       bool     `toml:"verbose"`

	Genesis GenesisConfig `toml:"genesis"`
}

// GenesisConfig describes the chain's initial state.
type GenesisConfig struct {
	ChainID string            `toml:"chain_id"`
	Alloc   map[string]uint64 `toml:"alloc"` // base58 address -> native balance
	// Oracle is the base58 key allowed to reveal randomness. Empty means
	// the validator key.
	Oracle string        `toml:"oracle"`
	Pools  []PoolGenesis `toml:"pools"`
}

// PoolGenesis is an initialize_pool transaction issued by the validator in
// the genesis block.
type PoolGenesis struct {
	Symbol               string          `toml:"symbol"`
	Decimals             uint8           `toml:"decimals"`
	FeesWallet           string          `toml:"fees_wallet"`
	TotalSupply          uint64          `toml:"total_supply"`
	InitialRate          uint64          `toml:"initial_rate"`
	HalvingIntervalSlots uint64          `toml:"halving_interval_slots"`
	StakingLockupSlots   uint64          `toml:"staking_lockup_slots"`
	TokenRewardRate      uint64          `toml:"token_reward_rate"`
	Economics            *core.Economics `toml:"economics"`
}

// Payload converts the genesis entry into its transaction payload.
func (p PoolGenesis) Payload() core.InitializePoolPayload {
	return core.InitializePoolPayload{
		Symbol:               p.Symbol,
		Decimals:             p.Decimals,
		FeesWallet:           p.FeesWallet,
		TotalSupply:          p.TotalSupply,
		InitialRate:          p.InitialRate,
		HalvingIntervalSlots: p.HalvingIntervalSlots,
		StakingLockupSlots:   p.StakingLockupSlots,
		TokenRewardRate:      p.TokenRewardRate,
		Economics:            p.Economics,
	}
}

// DefaultConfig returns a single-node development configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:       "./data",
		Engine:        "leveldb",
		RPCAddr:       ":8545",
		CORSOrigins:   []string{"http://localhost:*"},
		RateLimit:     20,
		RateBurst:     40,
		BlockInterval: "400ms",
		MaxBlockTxs:   500,
		Genesis: GenesisConfig{
			ChainID: "tolfarm-dev",
			Alloc:   map[string]uint64{},
		},
	}
}

// Load reads path over the defaults and then applies the environment. A
// missing file is not an error. envFile, when non-empty, is loaded into the
// process environment first without overriding variables already set.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"DATA_DIR":       &c.DataDir,
		"ENGINE":         &c.Engine,
		"RPC_ADDR":       &c.RPCAddr,
		"RPC_AUTH_TOKEN": &c.RPCAuthToken,
		"BLOCK_INTERVAL": &c.BlockInterval,
		"CHAIN_ID":       &c.Genesis.ChainID,
		"ORACLE":         &c.Genesis.Oracle,
	}
	for name, dst := range str {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	if v := getenv(EnvPrefix + "CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	if v := getenv(EnvPrefix + "RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		c.RateLimit = f
	}
	if v := getenv(EnvPrefix + "MAX_BLOCK_TXS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_BLOCK_TXS: %w", EnvPrefix, err)
		}
		c.MaxBlockTxs = n
	}
	if getenv(EnvPrefix+"VERBOSE") == "true" {
		c.Verbose = true
	}
	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Genesis.ChainID == "" {
		return errors.New("genesis.chain_id is required")
	}
	switch c.Engine {
	case "leveldb", "sqlite":
	default:
		return fmt.Errorf("unknown storage engine %q", c.Engine)
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	if c.MaxBlockTxs <= 0 {
		return errors.New("max_block_txs must be > 0")
	}
	return nil
}

// Interval parses BlockInterval. One block is one slot.
func (c *Config) Interval() (time.Duration, error) {
	d, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, fmt.Errorf("block_interval: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("block_interval must be > 0")
	}
	return d, nil
}

// Save writes cfg to path as TOML.
func Save(cfg *Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
