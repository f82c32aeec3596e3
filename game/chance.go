package game

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/tolelom/tolfarm/catalog"
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/reward"
)

// commit binds a new pending action to the oracle account ref. The account
// must be freshly committed to the previous slot's seed and unrevealed, so
// its value is unknown to everyone when the player commits.
func (s *Session) commit(ref string) (uint64, error) {
	if s.Player.Pending.Kind != core.PendingNone {
		return 0, fmt.Errorf("%w: %s", core.ErrActionPending, s.Player.Pending.Kind)
	}
	c, err := s.Oracle.Commitment(ref)
	if err != nil {
		return 0, err
	}
	if c.Revealed || c.SeedSlot+1 != s.Now {
		return 0, core.ErrRandomnessAlreadyRevealed
	}
	return c.SeedSlot, nil
}

func (s *Session) setPending(action core.PendingAction, ref string, seedSlot uint64) {
	s.Player.Pending = action
	s.Player.OracleCommitSlot = seedSlot
	s.Player.OracleAccount = ref
}

// resolve runs the settle-side checks for kind and returns the random value.
func (s *Session) resolve(kind core.PendingKind, ref string) ([]byte, error) {
	if s.Player.Pending.Kind != kind {
		return nil, fmt.Errorf("%w: want %s, have %s", core.ErrNoPendingAction, kind, s.Player.Pending.Kind)
	}
	if s.Now <= s.Player.OracleCommitSlot+MinRandomnessDelaySlots {
		return nil, core.ErrRandomnessDelayNotMet
	}
	if ref != s.Player.OracleAccount {
		return nil, core.ErrInvalidRandomnessAccount
	}
	c, err := s.Oracle.Commitment(ref)
	if err != nil {
		return nil, err
	}
	if c.SeedSlot != s.Player.OracleCommitSlot {
		return nil, core.ErrRandomnessExpired
	}
	value, err := s.Oracle.Resolve(ref, s.Now)
	if err != nil {
		return nil, err
	}
	if len(value) < core.RandomnessLen {
		return nil, core.ErrRandomnessNotResolved
	}
	return value, nil
}

// chunk reads the i-th little-endian u32 of value.
func chunk(value []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(value[4*i : 4*i+4])
}

// RequestBooster pays for a booster pack and commits to ref.
func (s *Session) RequestBooster(ref string) (uint64, error) {
	if err := s.requireProduction(); err != nil {
		return 0, err
	}
	if int(s.Player.UnitCount)+BoosterSize > core.MaxUnits {
		return 0, core.ErrInventoryFull
	}
	seedSlot, err := s.commit(ref)
	if err != nil {
		return 0, err
	}
	if _, err := s.flush(); err != nil {
		return 0, err
	}
	referral, err := s.payTokens(s.Pool.Economics.BoosterPackCost, true)
	if err != nil {
		return 0, err
	}
	s.setPending(core.PendingAction{Kind: core.PendingBooster}, ref, seedSlot)
	return referral, nil
}

// SettleBooster opens the pending pack. Unit i is drawn from the i-th u32
// of the random value.
func (s *Session) SettleBooster(ref string) ([]core.Unit, error) {
	value, err := s.resolve(core.PendingBooster, ref)
	if err != nil {
		return nil, err
	}
	if int(s.Player.UnitCount)+BoosterSize > core.MaxUnits {
		return nil, core.ErrInventoryFull
	}
	if _, err := s.flush(); err != nil {
		return nil, err
	}

	drawn := make([]core.Unit, 0, BoosterSize)
	for i := 0; i < BoosterSize; i++ {
		u := catalog.Pick(chunk(value, i)).Instance()
		if err := s.Player.AddUnit(u); err != nil {
			return nil, err
		}
		drawn = append(drawn, u)
	}
	s.Player.ClearPending()
	s.Player.Stats.BoosterPacksOpened = reward.SaturatingAdd(s.Player.Stats.BoosterPacksOpened, 1)
	s.Pool.Stats.BoosterPacksOpened = reward.SaturatingAdd(s.Pool.Stats.BoosterPacksOpened, 1)
	return drawn, nil
}

// RequestRecycle consumes exactly core.RecycleBatch distinct, unstaked
// units and commits to ref. The units are gone whatever the outcome.
func (s *Session) RequestRecycle(ref string, indices []int) ([]core.Unit, error) {
	if err := s.requireProduction(); err != nil {
		return nil, err
	}
	if len(indices) != core.RecycleBatch {
		return nil, fmt.Errorf("%w: need %d units, got %d", core.ErrInvalidRecycleBatch, core.RecycleBatch, len(indices))
	}
	seedSlot, err := s.commit(ref)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	for i, idx := range sorted {
		if idx < 0 || idx >= int(s.Player.UnitCount) {
			return nil, core.ErrInvalidUnitIndex
		}
		if i > 0 && sorted[i-1] == idx {
			return nil, fmt.Errorf("%w: duplicate index %d", core.ErrInvalidRecycleBatch, idx)
		}
		if s.Player.Active.Has(idx) {
			return nil, fmt.Errorf("%w: index %d", core.ErrUnitActive, idx)
		}
	}
	if _, err := s.flush(); err != nil {
		return nil, err
	}

	// Highest index first so earlier removals do not shift later ones.
	consumed := make([]core.Unit, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		u, _, err := s.Player.RemoveUnit(sorted[i])
		if err != nil {
			return nil, err
		}
		consumed = append(consumed, u)
	}
	slices.Reverse(consumed)

	ids := make([]uint16, len(consumed))
	for i, u := range consumed {
		ids[i] = u.ID
	}
	s.setPending(core.PendingAction{Kind: core.PendingRecycle, Recycled: ids}, ref, seedSlot)
	s.Player.Stats.RecycleAttempts = reward.SaturatingAdd(s.Player.Stats.RecycleAttempts, 1)
	s.Player.Stats.UnitsRecycled = reward.SaturatingAdd(s.Player.Stats.UnitsRecycled, uint64(len(ids)))
	s.Pool.Stats.RecycleAttempts = reward.SaturatingAdd(s.Pool.Stats.RecycleAttempts, 1)
	return consumed, nil
}

// RecycleOutcome is the result of a settled recycle.
type RecycleOutcome struct {
	Success  bool
	Unit     core.Unit
	Recycled []uint16
}

// SettleRecycle rolls the pending recycle. Byte 0 decides success; the
// second u32 picks the new unit.
func (s *Session) SettleRecycle(ref string) (RecycleOutcome, error) {
	value, err := s.resolve(core.PendingRecycle, ref)
	if err != nil {
		return RecycleOutcome{}, err
	}
	if _, err := s.flush(); err != nil {
		return RecycleOutcome{}, err
	}

	out := RecycleOutcome{Recycled: s.Player.Pending.Recycled}
	if uint64(value[0]%100) < s.Pool.Economics.RecycleSuccessPct {
		out.Success = true
		out.Unit = catalog.Pick(chunk(value, 1)).Instance()
		if err := s.Player.AddUnit(out.Unit); err != nil {
			return RecycleOutcome{}, err
		}
		s.Player.Stats.RecycleSuccesses = reward.SaturatingAdd(s.Player.Stats.RecycleSuccesses, 1)
		s.Pool.Stats.RecycleSuccesses = reward.SaturatingAdd(s.Pool.Stats.RecycleSuccesses, 1)
	}
	s.Player.ClearPending()
	return out, nil
}

// GambleCommit pays the native gamble fee, burns amount tokens and commits
// to ref.
func (s *Session) GambleCommit(ref string, amount uint64) error {
	if err := s.requireProduction(); err != nil {
		return err
	}
	if amount == 0 {
		return core.ErrZeroAmount
	}
	seedSlot, err := s.commit(ref)
	if err != nil {
		return err
	}
	balance, err := s.Ledger.TokenBalance(s.Pool.Mint, s.Player.Owner)
	if err != nil {
		return err
	}
	if balance < amount {
		return core.ErrInsufficientFunds
	}
	if _, err := s.flush(); err != nil {
		return err
	}

	fee := s.Pool.Economics.GambleFee
	if err := s.Ledger.TransferNative(s.Player.Owner, s.Pool.FeesWallet, fee); err != nil {
		return err
	}
	if err := s.Ledger.Burn(s.Pool.Mint, s.Player.Owner, amount); err != nil {
		return err
	}
	reward.RecordBurn(s.Pool, amount)

	s.setPending(core.PendingAction{Kind: core.PendingGamble, Amount: amount}, ref, seedSlot)
	s.Player.Stats.NativeSpent = reward.SaturatingAdd(s.Player.Stats.NativeSpent, fee)
	s.Player.Stats.TokensSpent = reward.SaturatingAdd(s.Player.Stats.TokensSpent, amount)
	s.Player.Stats.Gambles = reward.SaturatingAdd(s.Player.Stats.Gambles, 1)
	s.Pool.Stats.Gambles = reward.SaturatingAdd(s.Pool.Stats.Gambles, 1)
	return nil
}

// GambleOutcome is the result of a settled gamble.
type GambleOutcome struct {
	Won    bool
	Amount uint64
	Payout uint64
}

// GambleSettle rolls the pending gamble. A win mints amount times the
// payout multiplier, limited by the remaining mintable supply.
func (s *Session) GambleSettle(ref string) (GambleOutcome, error) {
	value, err := s.resolve(core.PendingGamble, ref)
	if err != nil {
		return GambleOutcome{}, err
	}
	if _, err := s.flush(); err != nil {
		return GambleOutcome{}, err
	}

	out := GambleOutcome{Amount: s.Player.Pending.Amount}
	if uint64(value[0]%100) < s.Pool.Economics.GambleWinThresholdPct {
		out.Won = true
		payout, err := reward.CheckedMul(out.Amount, s.Pool.Economics.GamblePayoutMultiplier)
		if err != nil {
			return GambleOutcome{}, err
		}
		out.Payout = reward.ReserveMint(s.Pool, payout)
		if err := s.mintReward(out.Payout); err != nil {
			return GambleOutcome{}, err
		}
		s.Player.Stats.GambleWins = reward.SaturatingAdd(s.Player.Stats.GambleWins, 1)
		s.Pool.Stats.GambleWins = reward.SaturatingAdd(s.Pool.Stats.GambleWins, 1)
	}
	s.Player.ClearPending()
	return out, nil
}

// Cancel abandons a pending action once it has timed out. Nothing paid at
// commit is returned, and recycled units stay destroyed.
func (s *Session) Cancel() (core.PendingAction, error) {
	if s.Player.Pending.Kind == core.PendingNone {
		return core.PendingAction{}, core.ErrNoPendingAction
	}
	deadline := reward.SaturatingAdd(s.Player.OracleCommitSlot, CancelTimeoutSlots)
	if s.Now <= deadline {
		return core.PendingAction{}, fmt.Errorf("%w: cancellable after slot %d", core.ErrCancelTooEarly, deadline)
	}
	abandoned := s.Player.Pending
	s.Player.ClearPending()
	return abandoned, nil
}
