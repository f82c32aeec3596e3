// Package production handles the deterministic player actions: buying the
// starter facility, staking and unstaking units, discarding, upgrading and
// claiming rewards.
package production

import (
	"errors"

	"github.com/tolelom/tolfarm/core"
	"github.com/tolelom/tolfarm/crypto"
	"github.com/tolelom/tolfarm/events"
	"github.com/tolelom/tolfarm/metrics"
	"github.com/tolelom/tolfarm/vm"
)

func init() {
	vm.Register(core.TxPurchaseFacility, vm.Anyone, vm.Decode(handlePurchase))
	vm.Register(core.TxStakeUnit, vm.Anyone, vm.Decode(handleStakeUnit))
	vm.Register(core.TxUnstakeUnit, vm.Anyone, vm.Decode(handleUnstakeUnit))
	vm.Register(core.TxDiscardUnit, vm.Anyone, vm.Decode(handleDiscardUnit))
	vm.Register(core.TxUpgradeFacility, vm.Anyone, vm.Decode(handleUpgrade))
	vm.Register(core.TxClaimRewards, vm.Anyone, vm.Decode(handleClaim))
}

func handlePurchase(ctx *vm.Context, p core.PurchaseFacilityPayload) error {
	pool, err := ctx.Pool(p.Mint)
	if err != nil {
		return err
	}
	addr, err := crypto.PlayerAddress(ctx.Tx.From, p.Mint)
	if err != nil {
		return err
	}
	if _, err := ctx.State.GetPlayer(addr); err == nil {
		return core.ErrPlayerExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	s := ctx.NewSession(pool, core.NewPlayer(addr, ctx.Tx.From, p.Mint))
	res, err := s.Purchase(p.Referrer)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}

	if res.Referral > 0 {
		metrics.ReferralPaid.WithLabelValues("native").Add(float64(res.Referral))
	}
	ctx.Emit(events.EventFacilityPurchased, map[string]any{
		"player":   addr,
		"owner":    ctx.Tx.From,
		"mint":     p.Mint,
		"referrer": p.Referrer,
		"fee":      res.Fee,
		"referral": res.Referral,
		"units":    len(res.Units),
	})
	return nil
}

func recordFlush(amount uint64) {
	if amount > 0 {
		metrics.RewardsMinted.WithLabelValues("accumulator").Add(float64(amount))
	}
}

func handleStakeUnit(ctx *vm.Context, p core.UnitIndexPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	u, flushed, err := s.StakeUnit(int(p.Index))
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	recordFlush(flushed)

	ctx.Emit(events.EventUnitStaked, map[string]any{
		"player":      s.Player.Address,
		"index":       p.Index,
		"unit_id":     u.ID,
		"yield_power": u.YieldPower,
		"flushed":     flushed,
	})
	return nil
}

func handleUnstakeUnit(ctx *vm.Context, p core.UnitIndexPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	u, flushed, err := s.UnstakeUnit(int(p.Index))
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	recordFlush(flushed)

	ctx.Emit(events.EventUnitUnstaked, map[string]any{
		"player":  s.Player.Address,
		"index":   p.Index,
		"unit_id": u.ID,
		"flushed": flushed,
	})
	return nil
}

func handleDiscardUnit(ctx *vm.Context, p core.UnitIndexPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	u, flushed, err := s.DiscardUnit(int(p.Index))
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	recordFlush(flushed)

	ctx.Emit(events.EventUnitDiscarded, map[string]any{
		"player":  s.Player.Address,
		"index":   p.Index,
		"unit_id": u.ID,
	})
	return nil
}

func handleUpgrade(ctx *vm.Context, p core.UpgradeFacilityPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	tier, err := s.Upgrade(p.Tier)
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}

	ctx.Emit(events.EventFacilityUpgraded, map[string]any{
		"player": s.Player.Address,
		"tier":   tier.Level,
		"cost":   tier.Cost,
	})
	return nil
}

func handleClaim(ctx *vm.Context, p core.MintPayload) error {
	s, err := ctx.Session(p.Mint)
	if err != nil {
		return err
	}
	amount, err := s.Claim()
	if err != nil {
		return err
	}
	if err := ctx.Save(s); err != nil {
		return err
	}
	recordFlush(amount)

	ctx.Emit(events.EventRewardsClaimed, map[string]any{
		"player": s.Player.Address,
		"amount": amount,
		"slot":   ctx.Slot(),
	})
	return nil
}
