package core

// RandomnessLen is the length of every resolved randomness value.
const RandomnessLen = 32

// RandomnessAccount binds a future random value to the seed of one slot.
// The designated Oracle reveals it later; until then Value is empty.
type RandomnessAccount struct {
	Address    string `json:"address"`
	Owner      string `json:"owner"`
	Oracle     string `json:"oracle"`
	SeedSlot   uint64 `json:"seed_slot"`
	RevealSlot uint64 `json:"reveal_slot,omitempty"`
	Value      []byte `json:"value,omitempty"`
}

// Revealed reports whether the oracle has published the value.
func (r *RandomnessAccount) Revealed() bool {
	return len(r.Value) == RandomnessLen
}
