package reward

import (
	"github.com/tolelom/tolfarm/core"
)

// Pending returns what pl could claim at now without mutating anything.
func Pending(p *core.GlobalPool, pl *core.Player, now uint64) uint64 {
	view := *p
	Advance(&view, now)
	return pendingAt(&view, pl)
}

// Settle is the explicit claim path. It rejects a second claim in the same
// slot, then behaves like Flush.
func Settle(p *core.GlobalPool, pl *core.Player, now uint64) (uint64, error) {
	Advance(p, now)
	if now <= pl.LastClaimSlot {
		return 0, core.ErrCooldownNotExpired
	}
	return checkpoint(p, pl, now), nil
}

// Flush advances the pool and moves pl's checkpoints to now, returning the
// amount the caller must mint to the player. Every state-changing action
// flushes before it touches yield power, so rewards accrued under the old
// yield are never diluted or inflated. Flushing twice in one slot returns 0
// the second time.
func Flush(p *core.GlobalPool, pl *core.Player, now uint64) uint64 {
	Advance(p, now)
	return checkpoint(p, pl, now)
}

func checkpoint(p *core.GlobalPool, pl *core.Player, now uint64) uint64 {
	amount := pendingAt(p, pl)
	pl.LastAccRewardPerYieldUnit = p.AccRewardPerYieldUnit
	if now > pl.LastClaimSlot {
		pl.LastClaimSlot = now
	}
	pl.CumulativeClaimed = SaturatingAdd(pl.CumulativeClaimed, amount)
	return amount
}

func pendingAt(p *core.GlobalPool, pl *core.Player) uint64 {
	amount := Share(pl.ActiveYieldPower, p.AccRewardPerYieldUnit, pl.LastAccRewardPerYieldUnit)
	if remaining := p.RemainingSupply(); amount > remaining {
		amount = remaining
	}
	return amount
}
