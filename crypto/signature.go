package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Sign signs data with the private key and returns a base58 signature.
func Sign(priv PrivateKey, data []byte) string {
	return base58.Encode(SignBytes(priv, data))
}

// SignBytes returns the raw ed25519 signature over data.
func SignBytes(priv PrivateKey, data []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv), data)
}

// Verify checks a base58 signature against data using the public key.
func Verify(pub PublicKey, data []byte, sig string) error {
	raw, err := base58.Decode(sig)
	if err != nil {
		return fmt.Errorf("invalid signature base58: %w", err)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), data, raw) {
		return errors.New("signature verification failed")
	}
	return nil
}
