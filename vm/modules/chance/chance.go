// Package chance handles the randomized actions: booster packs, recycling
// and the gamble, each as a commit transaction followed by a settle once
// the oracle has revealed, plus cancellation of a timed-out commitment.
package chance

import (
	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/metrics"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxRequestBooster, vm.Anyone, vm.Decode(needsRandomness(handleRequestBooster)))
	vm.Register(core.TxSettleBooster, vm.Anyone, vm.Decode(needsRandomness(handleSettleBooster)))
	vm.Register(core.TxRequestRecycle, vm.Anyone, vm.Decode(handleRequestRecycle))
	vm.Register(core.TxSettleRecycle, vm.Anyone, vm.Decode(needsRandomness(handleSettleRecycle)))
	vm.Register(core.TxGambleCommit, vm.Anyone, vm.Decode(handleGambleCommit))
	vm.Register(core.TxGambleSettle, vm.Anyone, vm.Decode(needsRandomness(handleGambleSettle)))
	vm.Register(core.TxCancelPending, vm.Anyone, vm.Decode(handleCancel))
}

// needsRandomness rejects payloads that name no randomness account.
func needsRandomness(fn func(*vm.Context, core.RandomnessPayload) error) func(*vm.Context, core.RandomnessPayload) error {
	return func(ctx *vm.Context, p core.RandomnessPayload) error {
		if p.Randomness == "" {
			return core.ErrInvalidRandomnessAccount
		}
		return fn(ctx, p)
	}
}

func outcome(won bool) string {
	if won {
		return "win"
	}
	return "loss"
}

func handleRequestBooster(ctx *vm.Context, p core.RandomnessPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	referral, err := s.RequestBooster(p.Randomness)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	if referral > 0 {
		metrics.ReferralPaid.WithLabelValues("token").Add(float64(referral))
	}

	ctx.Emit(events.EventBoosterRequested, map[string]any{
		"player":      s.Player.Address,
		"randomness":  p.Randomness,
		"commit_slot": s.Player.OracleCommitSlot,
		"cost":        s.Pool.Economics.BoosterPackCost,
		"referral":    referral,
	})
	return nil
}

func handleSettleBooster(ctx *vm.Context, p core.RandomnessPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	units, err := s.SettleBooster(p.Randomness)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	metrics.RandomOutcomes.WithLabelValues("booster", "opened").Inc()

	ids := make([]uint16, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	ctx.Emit(events.EventBoosterOpened, map[string]any{
		"player": s.Player.Address,
		"units":  ids,
	})
	return nil
}

func handleRequestRecycle(ctx *vm.Context, p core.RecycleRequestPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	indices := make([]int, len(p.Indices))
	for i, idx := range p.Indices {
		indices[i] = int(idx)
	}
	consumed, err := s.RequestRecycle(p.Randomness, indices)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}

	ctx.Emit(events.EventRecycleRequested, map[string]any{
		"player":      s.Player.Address,
		"randomness":  p.Randomness,
		"commit_slot": s.Player.OracleCommitSlot,
		"consumed":    len(consumed),
	})
	return nil
}

func handleSettleRecycle(ctx *vm.Context, p core.RandomnessPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	out, err := s.SettleRecycle(p.Randomness)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	metrics.RandomOutcomes.WithLabelValues("recycle", outcome(out.Success)).Inc()

	data := map[string]any{
		"player":   s.Player.Address,
		"success":  out.Success,
		"recycled": out.Recycled,
	}
	if out.Success {
		data["unit_id"] = out.Unit.ID
	}
	ctx.Emit(events.EventRecycleSettled, data)
	return nil
}

func handleGambleCommit(ctx *vm.Context, p core.GambleCommitPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	if err := s.GambleCommit(p.Randomness, p.Amount); err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}

	ctx.Emit(events.EventGambleCommitted, map[string]any{
		"player":      s.Player.Address,
		"randomness":  p.Randomness,
		"commit_slot": s.Player.OracleCommitSlot,
		"amount":      p.Amount,
	})
	return nil
}

func handleGambleSettle(ctx *vm.Context, p core.RandomnessPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	out, err := s.GambleSettle(p.Randomness)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	metrics.RandomOutcomes.WithLabelValues("gamble", outcome(out.Won)).Inc()
	if out.Payout > 0 {
		metrics.RewardsMinted.WithLabelValues("gamble").Add(float64(out.Payout))
	}

	ctx.Emit(events.EventGambleSettled, map[string]any{
		"player": s.Player.Address,
		"won":    out.Won,
		"amount": out.Amount,
		"payout": out.Payout,
	})
	return nil
}

func handleCancel(ctx *vm.Context, p core.MintPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	abandoned, err := s.Cancel()
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	metrics.RandomOutcomes.WithLabelValues(abandoned.Kind.String(), "cancelled").Inc()

	ctx.Emit(events.EventActionCancelled, map[string]any{
		"player": s.Player.Address,
		"kind":   abandoned.Kind.String(),
	})
	return nil
}
