package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID anchors every derived address on the chain. Derived addresses
// are off-curve, so no private key can ever sign for them.
var ProgramID = solana.MustPublicKeyFromBase58("PoZ2MCf1TeEep82Wi1TARMg6hoG8x4bNxxU6WGWeznt")

// Seed namespaces for derived addresses.
var (
	SeedGlobalState  = []byte("global_state")
	SeedPlayer       = []byte("player")
	SeedMint         = []byte("mint")
	SeedStakingPool  = []byte("staking_pool")
	SeedStake        = []byte("stake")
	SeedStakingVault = []byte("staking_vault")
	SeedSolRewards   = []byte("sol_rewards")
	SeedRandomness   = []byte("randomness")
)

// DeriveAddress returns the base58 program-derived address for seeds.
// String seeds that are valid base58 keys are decoded to their 32 raw bytes
// so that ("player", owner, mint) hashes the same key material an external
// client would use.
func DeriveAddress(seeds ...[]byte) (string, error) {
	addr, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return "", fmt.Errorf("derive address: %w", err)
	}
	return addr.String(), nil
}

// KeySeed decodes a base58 address into a seed. Anything that is not a
// 32-byte key is used verbatim, truncated to the 32-byte seed limit.
func KeySeed(addr string) []byte {
	if pk, err := solana.PublicKeyFromBase58(addr); err == nil {
		return pk.Bytes()
	}
	b := []byte(addr)
	if len(b) > solana.MaxSeedLength {
		b = b[:solana.MaxSeedLength]
	}
	return b
}

// U64Seed encodes n as an 8-byte little-endian seed.
func U64Seed(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}

// PoolAddress derives the GlobalPool address for mint.
func PoolAddress(mint string) (string, error) {
	return DeriveAddress(SeedGlobalState, KeySeed(mint))
}

// PlayerAddress derives the Player address for (owner, mint).
func PlayerAddress(owner, mint string) (string, error) {
	return DeriveAddress(SeedPlayer, KeySeed(owner), KeySeed(mint))
}

// MintAddress derives the token mint created by authority under symbol.
func MintAddress(authority, symbol string) (string, error) {
	return DeriveAddress(SeedMint, KeySeed(authority), KeySeed(symbol))
}

// StakingPoolAddress derives the auxiliary staking pool address for mint.
func StakingPoolAddress(mint string) (string, error) {
	return DeriveAddress(SeedStakingPool, KeySeed(mint))
}

// StakePositionAddress derives a staker's position address.
func StakePositionAddress(owner, mint string) (string, error) {
	return DeriveAddress(SeedStake, KeySeed(owner), KeySeed(mint))
}

// StakingVaultAddress derives the token vault that holds staked tokens.
func StakingVaultAddress(mint string) (string, error) {
	return DeriveAddress(SeedStakingVault, KeySeed(mint))
}

// SolRewardsAddress derives the native-currency vault whose deposits are
// distributed to token stakers.
func SolRewardsAddress(mint string) (string, error) {
	return DeriveAddress(SeedSolRewards, KeySeed(mint))
}

// RandomnessAddress derives a randomness account owned by owner.
func RandomnessAddress(owner string, nonce uint64) (string, error) {
	return DeriveAddress(SeedRandomness, KeySeed(owner), U64Seed(nonce))
}
