// Package reward implements the emission schedule and the scaled
// accumulator that turns pool emission into per-player rewards.
//
// Every 64-bit counter update goes through one of the helpers below and is
// either checked (fails with core.ErrArithmeticOverflow) or saturating.
// Saturation is used only for monotonic counters and supply floors.
package reward

import (
	"math/bits"

	sdkmath "cosmossdk.io/math"

	"github.com/tolelom/tolfarm/core"
)

// Scale is the fixed-point scale of every accumulator.
const Scale uint64 = 1_000_000_000_000

var scale = sdkmath.NewUint(Scale)

// HalvingsElapsed is floor((now-start)/interval), zero before start.
func HalvingsElapsed(now, start, interval uint64) uint64 {
	if now <= start || interval == 0 {
		return 0
	}
	return (now - start) / interval
}

// MaxHalvings is the halving count after which initial>>h is zero, i.e. the
// bit length of initial.
func MaxHalvings(initial uint64) uint64 {
	return uint64(bits.Len64(initial))
}

// RateAfterHalvings is initial>>h, zero once every bit is shifted out.
func RateAfterHalvings(initial, h uint64) uint64 {
	if h >= 64 {
		return 0
	}
	return initial >> h
}

// CheckedAdd returns a+b or ErrArithmeticOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, core.ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrArithmeticOverflow on underflow.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, core.ErrArithmeticOverflow
	}
	return a - b, nil
}

// CheckedMul returns a*b or ErrArithmeticOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, core.ErrArithmeticOverflow
	}
	return lo, nil
}

// SaturatingAdd returns a+b clamped to MaxUint64.
func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

// SaturatingSub returns a-b clamped to zero.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Percent returns floor(amount*pct/100) computed in 128 bits. pct is at most
// 100 wherever it is called, so the result always fits.
func Percent(amount, pct uint64) uint64 {
	hi, lo := bits.Mul64(amount, pct)
	if hi >= 100 {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, 100)
	return q
}

// Share returns floor(weight*(acc-last)/Scale). The subtraction saturates at
// zero so a stale checkpoint never yields a negative reward. A result that
// does not fit 64 bits is clamped to MaxUint64; callers clamp further to
// remaining supply.
func Share(weight uint64, acc, last sdkmath.Uint) uint64 {
	if weight == 0 || !acc.GT(last) {
		return 0
	}
	v := sdkmath.NewUint(weight).Mul(acc.Sub(last)).Quo(scale)
	if !v.BigInt().IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}

// accIncrement returns amount*Scale/weight.
func accIncrement(amount, weight uint64) sdkmath.Uint {
	return sdkmath.NewUint(amount).Mul(scale).Quo(sdkmath.NewUint(weight))
}
