package catalog

// rarityTable holds cumulative per-mille thresholds: a roll r%1000 below
// rarityTable[i] selects rarity i.
var rarityTable = [NumRarities]uint32{
	500,  // common 50%
	750,  // uncommon 25%
	900,  // rare 15%
	960,  // double rare 6%
	990,  // very rare 3%
	999,  // super rare 0.9%
	1000, // mega rare 0.1%
}

// RollRarity maps a random word onto a rarity.
func RollRarity(r uint32) Rarity {
	pm := r % 1000
	for i, limit := range rarityTable {
		if pm < limit {
			return Rarity(i)
		}
	}
	return MegaRare
}

// Pick selects one unit from a random word: the word chooses the rarity,
// then indexes into the units of that rarity.
func Pick(r uint32) Unit {
	pool := byRarity[RollRarity(r)]
	return pool[int(r%uint32(len(pool)))]
}
