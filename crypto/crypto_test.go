package crypto_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolfarm/crypto"
)

func TestKeysRoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	assert.Equal(t, pub, priv.Public())

	decoded, err := crypto.PubKeyFromString(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, decoded)

	decodedPriv, err := crypto.PrivKeyFromString(priv.String())
	require.NoError(t, err)
	assert.Equal(t, priv, decodedPriv)

	_, err = crypto.PubKeyFromString("short")
	assert.Error(t, err)
	_, err = crypto.PubKeyFromString("0OIl")
	assert.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	data := []byte("hello tolfarm")

	sig := crypto.Sign(priv, data)
	require.NoError(t, crypto.Verify(pub, data, sig))
	assert.Error(t, crypto.Verify(pub, []byte("tampered"), sig))
	assert.Error(t, crypto.Verify(pub, data, "not-base58-0OIl"))

	_, other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	assert.Error(t, crypto.Verify(other, data, sig))
}

func TestHash(t *testing.T) {
	assert.Len(t, crypto.Hash([]byte("x")), 64)
	assert.Equal(t, crypto.Hash([]byte("x")), crypto.Hash([]byte("x")))
	assert.NotEqual(t, crypto.Hash([]byte("x")), crypto.Hash([]byte("y")))
	assert.Len(t, crypto.HashBytes([]byte("x")), 32)
}

func TestDerivedAddresses(t *testing.T) {
	_, owner, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	_, other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	mint, err := crypto.MintAddress(owner.String(), "FARM")
	require.NoError(t, err)
	again, err := crypto.MintAddress(owner.String(), "FARM")
	require.NoError(t, err)
	assert.Equal(t, mint, again)

	otherMint, err := crypto.MintAddress(other.String(), "FARM")
	require.NoError(t, err)
	assert.NotEqual(t, mint, otherMint)

	derive := map[string]func() (string, error){
		"pool":     func() (string, error) { return crypto.PoolAddress(mint) },
		"player":   func() (string, error) { return crypto.PlayerAddress(owner.String(), mint) },
		"staking":  func() (string, error) { return crypto.StakingPoolAddress(mint) },
		"position": func() (string, error) { return crypto.StakePositionAddress(owner.String(), mint) },
		"vault":    func() (string, error) { return crypto.StakingVaultAddress(mint) },
		"sol":      func() (string, error) { return crypto.SolRewardsAddress(mint) },
		"rand0":    func() (string, error) { return crypto.RandomnessAddress(owner.String(), 0) },
		"rand1":    func() (string, error) { return crypto.RandomnessAddress(owner.String(), 1) },
	}
	seen := map[string]string{mint: "mint"}
	for name, fn := range derive {
		addr, err := fn()
		require.NoError(t, err, name)
		pk, err := solana.PublicKeyFromBase58(addr)
		require.NoError(t, err, name)
		assert.False(t, pk.IsOnCurve(), "%s must not have a private key", name)
		prev, dup := seen[addr]
		assert.False(t, dup, "%s collides with %s", name, prev)
		seen[addr] = name
	}
}

func TestKeySeed(t *testing.T) {
	_, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), crypto.KeySeed(pub.String()))
	assert.Equal(t, []byte("FARM"), crypto.KeySeed("FARM"))
	assert.Len(t, crypto.KeySeed("a-symbol-longer-than-thirty-two-bytes-in-total"), solana.MaxSeedLength)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, crypto.U64Seed(1))
}
