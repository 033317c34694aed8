// Package fixedpoint implements the checked Q-format arithmetic the core
// engine uses for every reserve, price, slope, and accumulator value.
//
// Nothing here uses float64 or big.Int on the hot path: products that can
// overflow a uint64 are carried through a 128-bit intermediate built from
// two uint64 words (see U128), and every operation returns an error instead
// of panicking or wrapping on overflow.
package fixedpoint

import (
	"math/big"
	"math/bits"

	"github.com/ninja0404/ammcore/pkg/types"
)

// Precision is the Q-format scale factor (10^12) used for prices, slopes,
// the funding accumulator, and the EMA.
const Precision uint64 = 1_000_000_000_000

// U128 is an unsigned 128-bit integer stored as (Hi, Lo) big-endian words.
type U128 struct {
	Hi uint64
	Lo uint64
}

// Mul128 computes the full 128-bit product of two uint64 values.
func Mul128(a, b uint64) U128 {
	hi, lo := bits.Mul64(a, b)
	return U128{Hi: hi, Lo: lo}
}

// Add adds two U128 values, returning an overflow flag instead of wrapping.
func (x U128) Add(y U128) (U128, bool) {
	lo, carry := bits.Add64(x.Lo, y.Lo, 0)
	hi, carry := bits.Add64(x.Hi, y.Hi, carry)
	if carry != 0 {
		return U128{}, true
	}
	return U128{Hi: hi, Lo: lo}, false
}

// Cmp returns -1, 0, or 1 as x is less than, equal to, or greater than y.
func (x U128) Cmp(y U128) int {
	switch {
	case x.Hi != y.Hi:
		if x.Hi < y.Hi {
			return -1
		}
		return 1
	case x.Lo != y.Lo:
		if x.Lo < y.Lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Div divides the 128-bit value x by a uint64 divisor, returning a uint64
// quotient. Fails if the divisor is zero or the quotient overflows 64 bits.
func (x U128) Div(divisor uint64) (uint64, error) {
	if divisor == 0 {
		return 0, types.ErrDivisionByZero
	}
	if x.Hi == 0 {
		return x.Lo / divisor, nil
	}
	if x.Hi >= divisor {
		return 0, types.ErrArithmeticOverflow
	}
	q, _ := bits.Div64(x.Hi, x.Lo, divisor)
	return q, nil
}

// MulDiv computes floor(a*b/c) using a 128-bit intermediate product so the
// a*b step cannot silently overflow a uint64.
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, types.ErrDivisionByZero
	}
	return Mul128(a, b).Div(c)
}

// MulQ multiplies two Q-format values: a*b/Precision.
func MulQ(a, b uint64) (uint64, error) {
	return MulDiv(a, b, Precision)
}

// DivQ divides one Q-format value by another: a*Precision/b.
func DivQ(a, b uint64) (uint64, error) {
	return MulDiv(a, Precision, b)
}

// CheckedAdd returns a+b, failing on overflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, types.ErrArithmeticOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b, failing if the result would be negative.
func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, types.ErrArithmeticUnderflow
	}
	return a - b, nil
}

// CheckedMul returns a*b, failing on overflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, types.ErrArithmeticOverflow
	}
	return lo, nil
}

// CheckedDiv returns a/b, failing on division by zero.
func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, types.ErrDivisionByZero
	}
	return a / b, nil
}

// ToU64 narrows a U128 to a uint64, failing if the high word is set.
func (x U128) ToU64() (uint64, error) {
	if x.Hi != 0 {
		return 0, types.ErrArithmeticOverflow
	}
	return x.Lo, nil
}

// Sub returns x-y as a U128, with an underflow flag set if y > x.
func (x U128) Sub(y U128) (U128, bool) {
	return x.sub(y)
}

// IsZero reports whether x is the zero value.
func (x U128) IsZero() bool {
	return x.Hi == 0 && x.Lo == 0
}

// String renders x in base 10. Only used for logging/display (event sinks,
// metrics labels); never on the checked-arithmetic settlement path.
func (x U128) String() string {
	v := new(big.Int).Lsh(new(big.Int).SetUint64(x.Hi), 64)
	v.Or(v, new(big.Int).SetUint64(x.Lo))
	return v.String()
}

// Float64 approximates x as a float64, losing precision above 2^53. Used
// only for Prometheus gauge export, which is float64 by construction.
func (x U128) Float64() float64 {
	const twoPow64 = 18446744073709551616.0
	return float64(x.Hi)*twoPow64 + float64(x.Lo)
}

// AddU128 returns a+b, failing on overflow.
func AddU128(a, b U128) (U128, error) {
	sum, overflow := a.Add(b)
	if overflow {
		return U128{}, types.ErrArithmeticOverflow
	}
	return sum, nil
}

// SubU128 returns a-b, failing if the result would be negative.
func SubU128(a, b U128) (U128, error) {
	diff, underflow := a.Sub(b)
	if underflow {
		return U128{}, types.ErrArithmeticUnderflow
	}
	return diff, nil
}

// MulU128Scalar computes the full-width product x*s, failing if the true
// product does not fit in 128 bits. Used wherever a K-units accumulator
// (itself already wider than 64 bits) needs scaling by a plain uint64.
func MulU128Scalar(x U128, s uint64) (U128, error) {
	loHi, loLo := bits.Mul64(x.Lo, s)
	hiHi, hiLo := bits.Mul64(x.Hi, s)
	sumHi, carry := bits.Add64(loHi, hiLo, 0)
	if hiHi != 0 || carry != 0 {
		return U128{}, types.ErrArithmeticOverflow
	}
	return U128{Hi: sumHi, Lo: loLo}, nil
}

// MulQU128 multiplies a K-units accumulator by a Q-format fraction:
// x*qFrac/Precision, keeping the result as a U128 since K-units routinely
// exceed 64 bits even when qFrac itself does not.
func MulQU128(x U128, qFrac uint64) (U128, error) {
	prod, err := MulU128Scalar(x, qFrac)
	if err != nil {
		return U128{}, err
	}
	return DivU128(prod, U128{Lo: Precision})
}

func (x U128) sub(y U128) (U128, bool) {
	lo, borrow := bits.Sub64(x.Lo, y.Lo, 0)
	hi, borrow := bits.Sub64(x.Hi, y.Hi, borrow)
	if borrow != 0 {
		return U128{}, true
	}
	return U128{Hi: hi, Lo: lo}, false
}

func shiftLeft1(x U128) U128 {
	return U128{Hi: (x.Hi << 1) | (x.Lo >> 63), Lo: x.Lo << 1}
}

func bitAt(x U128, i int) bool {
	if i >= 64 {
		return (x.Hi>>uint(i-64))&1 == 1
	}
	return (x.Lo>>uint(i))&1 == 1
}

func setBit(x U128, i int) U128 {
	if i >= 64 {
		x.Hi |= 1 << uint(i-64)
	} else {
		x.Lo |= 1 << uint(i)
	}
	return x
}

// DivU128 computes floor(numerator/divisor), returning a full-width U128
// quotient (unlike U128.Div, which only accepts and produces a uint64).
// Used both where the divisor itself exceeds 64 bits (the funding update's
// leverage-ratio step, where the quotient is expected to be small) and
// where the divisor fits in 64 bits but the quotient does not (the
// K-units accumulator math in pkg/pool and pkg/position). The narrow
// divisor case runs two-word schoolbook division; the wide divisor case
// falls back to a 128-bit binary long division.
func DivU128(numerator, divisor U128) (U128, error) {
	if divisor.Hi == 0 && divisor.Lo == 0 {
		return U128{}, types.ErrDivisionByZero
	}
	if divisor.Hi == 0 {
		qHi := numerator.Hi / divisor.Lo
		rHi := numerator.Hi % divisor.Lo
		qLo, _ := bits.Div64(rHi, numerator.Lo, divisor.Lo)
		return U128{Hi: qHi, Lo: qLo}, nil
	}
	if numerator.Cmp(divisor) < 0 {
		return U128{}, nil
	}

	var quotient, remainder U128
	for i := 127; i >= 0; i-- {
		remainder = shiftLeft1(remainder)
		if bitAt(numerator, i) {
			remainder.Lo |= 1
		}
		if remainder.Cmp(divisor) >= 0 {
			remainder, _ = remainder.sub(divisor)
			quotient = setBit(quotient, i)
		}
	}
	return quotient, nil
}

// MinU64 and MaxU64 are small helpers used throughout the saturating
// accumulator math in pkg/pool.
func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func MaxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// SqrtU128 computes floor(sqrt(x)) for a 128-bit value using integer
// Newton's method, seeded from a 64-bit approximation. Used by the bonding
// curve's inverse-quadratic pricing formula.
func SqrtU128(x U128) uint64 {
	if x.Hi == 0 && x.Lo == 0 {
		return 0
	}
	// Seed the iteration with a bit-length guess at or above the root, then
	// refine with integer-only Newton steps so the final result is exact.
	guess := seedGuess(x)
	if guess == 0 {
		guess = 1
	}

	for {
		// next = (guess + x/guess) / 2
		q, err := x.Div(guess)
		if err != nil {
			// x/guess overflowed 64 bits: guess is too small, bump it up.
			guess <<= 1
			continue
		}
		next := avg(guess, q)
		if next >= guess {
			break
		}
		guess = next
	}

	// Newton's method can overshoot by one ulp on integer division; step
	// back down until guess*guess <= x.
	for Mul128(guess, guess).Cmp(x) > 0 {
		guess--
	}
	for {
		next := guess + 1
		if Mul128(next, next).Cmp(x) > 0 {
			break
		}
		guess = next
	}
	return guess
}

func avg(a, b uint64) uint64 {
	// Avoid overflow in (a+b)/2 by halving before adding.
	return a/2 + b/2 + (a%2+b%2)/2
}

func seedGuess(x U128) uint64 {
	if x.Hi == 0 {
		return sqrtU64(x.Lo)
	}
	// Approximate via bit length: x < 2^n, so sqrt(x) < 2^ceil(n/2).
	bitLen := 128 - bitsLeadingZeros128(x)
	shift := (bitLen + 1) / 2
	if shift >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << uint(shift)
}

func bitsLeadingZeros128(x U128) int {
	if x.Hi != 0 {
		return bits.LeadingZeros64(x.Hi)
	}
	return 64 + bits.LeadingZeros64(x.Lo)
}

func sqrtU64(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	guess := uint64(1) << uint((64-bits.LeadingZeros64(x))/2+1)
	for {
		next := avg(guess, x/guess)
		if next >= guess {
			break
		}
		guess = next
	}
	for guess > 0 && guess*guess > x {
		guess--
	}
	for guess < 1<<32-1 && (guess+1)*(guess+1) <= x {
		guess++
	}
	return guess
}
