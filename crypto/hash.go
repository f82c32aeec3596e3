package crypto

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Hash returns the BLAKE3-256 hash of data as a lowercase hex string.
func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashBytes returns the raw BLAKE3-256 bytes of data.
func HashBytes(data []byte) []byte {
	h := blake3.Sum256(data)
	return h[:]
}
