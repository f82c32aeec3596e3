// Package catalog is the static table of production units and facility
// tiers, and the rarity roll used by booster packs and recycling.
package catalog

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/tolelom/tolfarm/core"
)

// Rarity orders units from most to least common.
type Rarity uint8

const (
	Common Rarity = iota
	Uncommon
	Rare
	DoubleRare
	VeryRare
	SuperRare
	MegaRare
)

// NumRarities is the number of rarity tiers.
const NumRarities = int(MegaRare) + 1

var rarityNames = [NumRarities]string{
	"common", "uncommon", "rare", "double_rare", "very_rare", "super_rare", "mega_rare",
}

func (r Rarity) String() string {
	if int(r) < NumRarities {
		return rarityNames[r]
	}
	return fmt.Sprintf("rarity(%d)", uint8(r))
}

// Unit is a catalog entry.
type Unit struct {
	ID           uint16 `json:"id"`
	Name         string `json:"name"`
	Rarity       Rarity `json:"rarity"`
	YieldPower   uint64 `json:"yield_power"`
	CapacityCost uint64 `json:"capacity_cost"`
}

// Instance returns the inventory record for u.
func (u Unit) Instance() core.Unit {
	return core.Unit{
		ID:           u.ID,
		Rarity:       uint8(u.Rarity),
		YieldPower:   u.YieldPower,
		CapacityCost: u.CapacityCost,
	}
}

// StarterIDs are granted on facility purchase.
var StarterIDs = [...]uint16{179, 175, 147}

var (
	byID     = make(map[uint16]Unit, len(units))
	byRarity [NumRarities][]Unit
)

func init() {
	for _, u := range units {
		byID[u.ID] = u
		byRarity[u.Rarity] = append(byRarity[u.Rarity], u)
	}
}

// Lookup returns the catalog entry for id.
func Lookup(id uint16) (Unit, error) {
	u, ok := byID[id]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %d", core.ErrUnknownUnit, id)
	}
	return u, nil
}

// ByRarity returns the units of rarity r in catalog order.
func ByRarity(r Rarity) ([]Unit, error) {
	if int(r) >= NumRarities {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidRarity, r)
	}
	return byRarity[r], nil
}

// All returns every unit in id order.
func All() []Unit {
	out := make([]Unit, len(units))
	copy(out, units[:])
	return out
}

// Starters returns the inventory records granted to a new player.
func Starters() []core.Unit {
	out := make([]core.Unit, 0, len(StarterIDs))
	for _, id := range StarterIDs {
		out = append(out, byID[id].Instance())
	}
	return out
}

type searchItems []Unit

func (s searchItems) Len() int            { return len(s) }
func (s searchItems) String(i int) string { return strings.ToLower(s[i].Name) }

// Search fuzzy-matches query against unit names, best match first.
func Search(query string, limit int) []Unit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	items := searchItems(units[:])
	matches := fuzzy.FindFrom(query, items)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Unit, len(matches))
	for i, m := range matches {
		out[i] = items[m.Index]
	}
	return out
}
