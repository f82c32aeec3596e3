package core

import (
	"math/bits"

	sdkmath "cosmossdk.io/math"
)

const (
	// MaxUnits bounds a player's inventory and is the width of ActiveSet.
	MaxUnits = 128
	// MaxActiveUnits is the hard ceiling on staked units at any tier.
	MaxActiveUnits = 25
	// RecycleBatch is the exact number of units consumed by one recycle.
	RecycleBatch = 10
)

// Unit is one production card in a player's inventory.
type Unit struct {
	ID           uint16 `json:"id"`
	Rarity       uint8  `json:"rarity"`
	YieldPower   uint64 `json:"yield_power"`
	CapacityCost uint64 `json:"capacity_cost"`
}

// Facility is the player's current tier and the limits it grants.
type Facility struct {
	Tier           uint8  `json:"tier"`
	MaxActiveUnits uint8  `json:"max_active_units"`
	CapacityLimit  uint64 `json:"capacity_limit"`
}

// ActiveSet is a 128-bit mask of inventory indices that are staked.
type ActiveSet [2]uint64

// Has reports whether index i is marked active.
func (s *ActiveSet) Has(i int) bool {
	if i < 0 || i >= MaxUnits {
		return false
	}
	return s[i/64]&(1<<(uint(i)%64)) != 0
}

// Set marks index i active.
func (s *ActiveSet) Set(i int) {
	s[i/64] |= 1 << (uint(i) % 64)
}

// Clear marks index i inactive.
func (s *ActiveSet) Clear(i int) {
	s[i/64] &^= 1 << (uint(i) % 64)
}

// Count returns the number of active indices.
func (s *ActiveSet) Count() int {
	return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1])
}

// Indices returns the active indices in ascending order.
func (s *ActiveSet) Indices() []int {
	out := make([]int, 0, s.Count())
	for i := 0; i < MaxUnits; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// RemoveAt rewrites the set for the deletion of inventory slot i: flags
// below i are kept, flags above i move down by one and the flag at i is
// dropped.
func (s *ActiveSet) RemoveAt(i int) {
	var out ActiveSet
	for j := 0; j < MaxUnits; j++ {
		if j == i || !s.Has(j) {
			continue
		}
		if j > i {
			out.Set(j - 1)
		} else {
			out.Set(j)
		}
	}
	*s = out
}

// PendingKind tags the randomized action a player is waiting on.
type PendingKind uint8

const (
	PendingNone PendingKind = iota
	PendingGamble
	PendingBooster
	PendingRecycle
)

func (k PendingKind) String() string {
	switch k {
	case PendingNone:
		return "none"
	case PendingGamble:
		return "gamble"
	case PendingBooster:
		return "booster"
	case PendingRecycle:
		return "recycle"
	default:
		return "unknown"
	}
}

// PendingAction is the single outstanding randomized action. Amount is set
// only for gambles; Recycled only for recycles.
type PendingAction struct {
	Kind     PendingKind `json:"kind"`
	Amount   uint64      `json:"amount,omitempty"`
	Recycled []uint16    `json:"recycled,omitempty"`
}

// PlayerStats are informational counters.
type PlayerStats struct {
	BoosterPacksOpened uint64 `json:"booster_packs_opened"`
	RecycleAttempts    uint64 `json:"recycle_attempts"`
	RecycleSuccesses   uint64 `json:"recycle_successes"`
	UnitsRecycled      uint64 `json:"units_recycled"`
	Gambles            uint64 `json:"gambles"`
	GambleWins         uint64 `json:"gamble_wins"`
	NativeSpent        uint64 `json:"native_spent"`
	TokensSpent        uint64 `json:"tokens_spent"`
}

// Player is one owner's farm for one mint.
type Player struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Mint     string `json:"mint"`
	Referrer string `json:"referrer,omitempty"`

	Units     [MaxUnits]Unit `json:"units"`
	UnitCount uint8          `json:"unit_count"`
	Active    ActiveSet      `json:"active"`

	Facility           Facility `json:"facility"`
	ActiveCapacityUsed uint64   `json:"active_capacity_used"`
	ActiveYieldPower   uint64   `json:"active_yield_power"`
	LastUpgradeSlot    uint64   `json:"last_upgrade_slot"`

	LastAccRewardPerYieldUnit sdkmath.Uint `json:"last_acc_reward_per_yield_unit"`
	LastClaimSlot             uint64       `json:"last_claim_slot"`
	CumulativeClaimed         uint64       `json:"cumulative_claimed"`

	Pending          PendingAction `json:"pending"`
	OracleCommitSlot uint64        `json:"oracle_commit_slot"`
	OracleAccount    string        `json:"oracle_account,omitempty"`

	Stats PlayerStats `json:"stats"`
}

// UnitList returns the occupied part of the inventory.
func (p *Player) UnitList() []Unit {
	return p.Units[:p.UnitCount]
}

// AddUnit appends u to the inventory.
func (p *Player) AddUnit(u Unit) error {
	if int(p.UnitCount) >= MaxUnits {
		return ErrInventoryFull
	}
	p.Units[p.UnitCount] = u
	p.UnitCount++
	return nil
}

// ActivateUnit stakes the unit at i against the facility limits and adds its
// contribution to the player's totals. Pool aggregates are the caller's job.
func (p *Player) ActivateUnit(i int) (Unit, error) {
	if i < 0 || i >= int(p.UnitCount) {
		return Unit{}, ErrInvalidUnitIndex
	}
	if p.Active.Has(i) {
		return Unit{}, ErrUnitAlreadyActive
	}
	if p.Active.Count()+1 > int(p.Facility.MaxActiveUnits) {
		return Unit{}, ErrMachineCapacityExceeded
	}
	u := p.Units[i]
	capacity, overflow := bits.Add64(p.ActiveCapacityUsed, u.CapacityCost, 0)
	if overflow != 0 {
		return Unit{}, ErrArithmeticOverflow
	}
	if capacity > p.Facility.CapacityLimit {
		return Unit{}, ErrPowerCapacityExceeded
	}
	yield, overflow := bits.Add64(p.ActiveYieldPower, u.YieldPower, 0)
	if overflow != 0 {
		return Unit{}, ErrArithmeticOverflow
	}
	p.Active.Set(i)
	p.ActiveCapacityUsed = capacity
	p.ActiveYieldPower = yield
	return u, nil
}

// DeactivateUnit unstakes the unit at i and removes its contribution.
func (p *Player) DeactivateUnit(i int) (Unit, error) {
	if i < 0 || i >= int(p.UnitCount) {
		return Unit{}, ErrInvalidUnitIndex
	}
	if !p.Active.Has(i) {
		return Unit{}, ErrUnitNotActive
	}
	u := p.Units[i]
	if p.ActiveCapacityUsed < u.CapacityCost || p.ActiveYieldPower < u.YieldPower {
		return Unit{}, ErrArithmeticOverflow
	}
	p.Active.Clear(i)
	p.ActiveCapacityUsed -= u.CapacityCost
	p.ActiveYieldPower -= u.YieldPower
	return u, nil
}

// RemoveUnit deletes the unit at i, shifting later units down and
// re-indexing the active set. If the unit was active its contribution is
// removed from the player totals and wasActive is true, so the caller can
// adjust pool aggregates in the same transaction.
func (p *Player) RemoveUnit(i int) (removed Unit, wasActive bool, err error) {
	if i < 0 || i >= int(p.UnitCount) {
		return Unit{}, false, ErrInvalidUnitIndex
	}
	removed = p.Units[i]
	wasActive = p.Active.Has(i)
	if wasActive {
		if _, err := p.DeactivateUnit(i); err != nil {
			return Unit{}, false, err
		}
	}
	last := int(p.UnitCount) - 1
	copy(p.Units[i:last], p.Units[i+1:last+1])
	p.Units[last] = Unit{}
	p.UnitCount--
	p.Active.RemoveAt(i)
	return removed, wasActive, nil
}

// ClearPending returns the player to the idle state.
func (p *Player) ClearPending() {
	p.Pending = PendingAction{}
	p.OracleCommitSlot = 0
	p.OracleAccount = ""
}

// NewPlayer returns an empty player record with an initialised checkpoint.
func NewPlayer(address, owner, mint string) *Player {
	return &Player{
		Address:                   address,
		Owner:                     owner,
		Mint:                      mint,
		LastAccRewardPerYieldUnit: sdkmath.ZeroUint(),
	}
}
