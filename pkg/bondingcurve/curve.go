// Package bondingcurve implements spec §4.B: the linear-price primary
// market a mint starts on before it graduates to a live constant-product
// pool. Grounded on the teacher's absence of a curve package (pump-go-sdk
// only ever reads `pump.BondingCurve` accounts, never computes curve math
// itself) plus the retrieved canopy-network-launchpad and pump-fun-sniper
// curve implementations for the quadratic-integral/clamp-and-refund shape.
package bondingcurve

import (
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

// slopeScale is the display-only scale SlopeM is stored at. It is far
// wider than fixedpoint.Precision because a realistic slope
// (2*target_base/target_tokens^2) is on the order of 1e-18 in raw units —
// storing it at fixedpoint.Precision (1e12) would floor to zero. Exact
// settlement math never reads this field; it exists purely so
// BondingCurveLaunched/inspect output can show a meaningful coefficient.
var slopeScale = big.NewInt(0).Exp(big.NewInt(10), big.NewInt(24), nil)

// BuyResult reports the outcome of a curve buy, including any refund
// issued when the purchase is clamped at the graduation boundary.
type BuyResult struct {
	TokensOut uint64
	BaseIn    uint64 // actual amount spent, after clamp
	Refund    uint64
	Graduated bool
}

// SellResult reports the outcome of a curve sell.
type SellResult struct {
	BaseOut uint64
}

// SlopeM computes the display-scaled linear coefficient
// 2*target_base/target_tokens^2 (spec §4.B).
func SlopeM(targetBase, targetTokens uint64) (uint64, error) {
	if targetTokens == 0 {
		return 0, types.ErrInvalidBondingCurveParams
	}
	num := new(big.Int).Mul(big.NewInt(2), new(big.Int).SetUint64(targetBase))
	num.Mul(num, slopeScale)

	denom := new(big.Int).SetUint64(targetTokens)
	denom.Mul(denom, denom)

	slope := new(big.Int).Quo(num, denom)
	if !slope.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return slope.Uint64(), nil
}

// NewCurve builds a fresh, Active bonding curve for a mint.
func NewCurve(mint solana.PublicKey, totalSupply, targetBase, targetTokens uint64, meta store.Metadata) (*store.BondingCurve, error) {
	if err := types.ValidateBondingCurveParams(totalSupply, targetBase, targetTokens); err != nil {
		return nil, err
	}
	slope, err := SlopeM(targetBase, targetTokens)
	if err != nil {
		return nil, err
	}
	return &store.BondingCurve{
		Mint:         mint,
		SlopeM:       slope,
		TokensSold:   0,
		BaseRaised:   0,
		TargetBase:   targetBase,
		TargetTokens: targetTokens,
		Status:       types.BondingCurveActive,
		Meta:         meta,
	}, nil
}

// CostBetween computes the exact BASE cost of moving tokens_sold from q1 to
// q2 along the curve: target_base*(q2^2-q1^2)/target_tokens^2. Requires
// q2 >= q1.
func CostBetween(q1, q2, targetBase, targetTokens uint64) (uint64, error) {
	if q2 < q1 {
		return 0, types.ErrArithmeticUnderflow
	}
	if targetTokens == 0 {
		return 0, types.ErrDivisionByZero
	}

	bq1 := new(big.Int).SetUint64(q1)
	bq2 := new(big.Int).SetUint64(q2)
	diff := new(big.Int).Sub(new(big.Int).Mul(bq2, bq2), new(big.Int).Mul(bq1, bq1))
	diff.Mul(diff, new(big.Int).SetUint64(targetBase))

	tt := new(big.Int).SetUint64(targetTokens)
	ttSq := new(big.Int).Mul(tt, tt)

	diff.Quo(diff, ttSq)
	if !diff.IsUint64() {
		return 0, types.ErrArithmeticOverflow
	}
	return diff.Uint64(), nil
}

// InverseQuadratic solves for q2 given q1 (tokens already sold) and baseIn
// (additional BASE spent): q2 = sqrt(q1^2 + base_in*target_tokens^2/target_base).
// The wide intermediate products are carried through math/big (they exceed
// 128 bits for realistic target_tokens), and only the final sqrt argument —
// which is bounded by target_tokens^2 plus one swap's worth of base_in — is
// narrowed into a fixedpoint.U128 for the integer sqrt primitive.
func InverseQuadratic(tokensSold, baseIn, targetBase, targetTokens uint64) (uint64, error) {
	if targetBase == 0 {
		return 0, types.ErrInvalidBondingCurveParams
	}

	q1 := new(big.Int).SetUint64(tokensSold)
	q1Sq := new(big.Int).Mul(q1, q1)

	tt := new(big.Int).SetUint64(targetTokens)
	ttSq := new(big.Int).Mul(tt, tt)

	term := new(big.Int).SetUint64(baseIn)
	term.Mul(term, ttSq)
	term.Quo(term, new(big.Int).SetUint64(targetBase))

	underSqrt := new(big.Int).Add(q1Sq, term)

	u128, err := bigToU128(underSqrt)
	if err != nil {
		return 0, err
	}
	return fixedpoint.SqrtU128(u128), nil
}

// bigToU128 narrows a non-negative big.Int into a fixedpoint.U128, failing
// if it does not fit in 128 bits.
func bigToU128(x *big.Int) (fixedpoint.U128, error) {
	if x.Sign() < 0 {
		return fixedpoint.U128{}, types.ErrArithmeticUnderflow
	}
	if x.BitLen() > 128 {
		return fixedpoint.U128{}, types.ErrArithmeticOverflow
	}
	var buf [16]byte
	x.FillBytes(buf[:])
	return fixedpoint.U128{
		Hi: binary.BigEndian.Uint64(buf[:8]),
		Lo: binary.BigEndian.Uint64(buf[8:]),
	}, nil
}

// Buy executes a curve purchase, mutating curve in place. If baseIn would
// carry tokens_sold past target_tokens, the purchase is clamped to exactly
// fill the curve and the excess BASE is reported as a refund (spec §4.B,
// grounded on the pump-fun-sniper-bot clamp-and-refund boundary behavior).
// Graduated is set once the curve has sold out or raised its full target.
func Buy(curve *store.BondingCurve, baseIn uint64) (*BuyResult, error) {
	if curve == nil {
		return nil, types.ErrBondingCurveNotFound
	}
	if curve.Status != types.BondingCurveActive {
		return nil, types.ErrBondingCurveNotActive
	}
	if baseIn == 0 {
		return nil, types.ErrZeroAmount
	}

	q1 := curve.TokensSold
	q2, err := InverseQuadratic(q1, baseIn, curve.TargetBase, curve.TargetTokens)
	if err != nil {
		return nil, err
	}

	actualBaseIn := baseIn
	var refund uint64
	clamped := false
	if q2 > curve.TargetTokens {
		q2 = curve.TargetTokens
		clamped = true

		cost, err := CostBetween(q1, q2, curve.TargetBase, curve.TargetTokens)
		if err != nil {
			return nil, err
		}
		if cost > baseIn {
			cost = baseIn
		}
		actualBaseIn = cost
		refund, err = fixedpoint.CheckedSub(baseIn, actualBaseIn)
		if err != nil {
			return nil, err
		}
	}

	tokensOut, err := fixedpoint.CheckedSub(q2, q1)
	if err != nil {
		return nil, err
	}

	newBaseRaised, err := fixedpoint.CheckedAdd(curve.BaseRaised, actualBaseIn)
	if err != nil {
		return nil, err
	}

	curve.TokensSold = q2
	curve.BaseRaised = newBaseRaised

	graduated := clamped || curve.TokensSold >= curve.TargetTokens || curve.BaseRaised >= curve.TargetBase
	if graduated {
		curve.Status = types.BondingCurveGraduated
	}

	return &BuyResult{TokensOut: tokensOut, BaseIn: actualBaseIn, Refund: refund, Graduated: graduated}, nil
}

// Sell executes a curve sale, mutating curve in place. Fails if more
// tokens are offered than have ever been sold on the curve (spec §4.B,
// ErrInsufficientTokensSold).
func Sell(curve *store.BondingCurve, tokensIn uint64) (*SellResult, error) {
	if curve == nil {
		return nil, types.ErrBondingCurveNotFound
	}
	if curve.Status != types.BondingCurveActive {
		return nil, types.ErrBondingCurveNotActive
	}
	if tokensIn == 0 {
		return nil, types.ErrZeroAmount
	}

	q1 := curve.TokensSold
	q2, err := fixedpoint.CheckedSub(q1, tokensIn)
	if err != nil {
		return nil, types.ErrInsufficientTokensSold
	}

	baseOut, err := CostBetween(q2, q1, curve.TargetBase, curve.TargetTokens)
	if err != nil {
		return nil, err
	}
	if baseOut > curve.BaseRaised {
		return nil, types.ErrInsufficientCurveSol
	}

	curve.TokensSold = q2
	curve.BaseRaised -= baseOut
	return &SellResult{BaseOut: baseOut}, nil
}
