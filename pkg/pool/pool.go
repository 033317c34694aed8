// Package pool implements spec §4.C: the live constant-product pool that a
// bonding curve graduates into, its funding accumulator, and the EMA oracle
// used to gate liquidations. There is no equivalent package in the teacher
// (pump-go-sdk only ever reads `pumpamm.Pool` accounts via RPC); the
// constant-product helper is grounded on the closing-price/AMM-math style
// of johnayoung-go-crypto-quant-toolkit, and the checked-arithmetic
// discipline is grounded on pkg/fixedpoint.
package pool

import (
	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

// UpdateFunding advances a pool's funding accumulator, per-side debt
// counters, and EMA to time `now` (spec §4.C). With no outstanding debt
// only the timestamp advances; the EMA is left untouched. Every live-phase
// operation runs this first, and no other code path mutates funding state.
func UpdateFunding(p *store.Pool, now int64) error {
	dt := now - p.LastUpdatedTimestamp
	if dt <= 0 {
		return nil
	}

	d, err := fixedpoint.AddU128(p.TotalDeltaKLongs, p.TotalDeltaKShorts)
	if err != nil {
		return err
	}
	if d.IsZero() {
		p.LastUpdatedTimestamp = now
		return nil
	}

	effectiveK := fixedpoint.Mul128(p.EffectiveSolReserve, p.EffectiveTokenReserve)
	if effectiveK.IsZero() {
		return types.ErrDivisionByZero
	}

	dScaled, err := fixedpoint.MulU128Scalar(d, fixedpoint.Precision)
	if err != nil {
		return err
	}
	leverageRatioU128, err := fixedpoint.DivU128(dScaled, effectiveK)
	if err != nil {
		return err
	}
	leverageRatio, err := leverageRatioU128.ToU64()
	if err != nil {
		return err
	}

	leverageRatioSq, err := fixedpoint.MulQ(leverageRatio, leverageRatio)
	if err != nil {
		return err
	}
	fundingRate, err := fixedpoint.MulQ(leverageRatioSq, p.FundingConstantC)
	if err != nil {
		return err
	}

	deltaAccU128 := fixedpoint.Mul128(fundingRate, uint64(dt))
	capRemaining, err := fixedpoint.CheckedSub(fixedpoint.Precision, p.CumulativeFundingAcc)
	if err != nil {
		return err
	}
	if deltaAccU128.Cmp(fixedpoint.U128{Lo: capRemaining}) > 0 {
		deltaAccU128 = fixedpoint.U128{Lo: capRemaining}
	}
	deltaAcc, err := deltaAccU128.ToU64()
	if err != nil {
		return err
	}

	p.CumulativeFundingAcc, err = fixedpoint.CheckedAdd(p.CumulativeFundingAcc, deltaAcc)
	if err != nil {
		return err
	}

	feesLong, err := fixedpoint.MulQU128(p.TotalDeltaKLongs, deltaAcc)
	if err != nil {
		return err
	}
	feesShort, err := fixedpoint.MulQU128(p.TotalDeltaKShorts, deltaAcc)
	if err != nil {
		return err
	}

	if !feesLong.IsZero() {
		tokenDeltaU128, err := fixedpoint.DivU128(feesLong, fixedpoint.U128{Lo: p.EffectiveSolReserve})
		if err != nil {
			return err
		}
		tokenDelta, err := tokenDeltaU128.ToU64()
		if err != nil {
			return err
		}
		p.EffectiveTokenReserve, err = fixedpoint.CheckedAdd(p.EffectiveTokenReserve, tokenDelta)
		if err != nil {
			return err
		}
	}
	if !feesShort.IsZero() {
		solDeltaU128, err := fixedpoint.DivU128(feesShort, fixedpoint.U128{Lo: p.EffectiveTokenReserve})
		if err != nil {
			return err
		}
		solDelta, err := solDeltaU128.ToU64()
		if err != nil {
			return err
		}
		p.EffectiveSolReserve, err = fixedpoint.CheckedAdd(p.EffectiveSolReserve, solDelta)
		if err != nil {
			return err
		}
	}

	p.TotalDeltaKLongs, err = fixedpoint.SubU128(p.TotalDeltaKLongs, feesLong)
	if err != nil {
		return err
	}
	p.TotalDeltaKShorts, err = fixedpoint.SubU128(p.TotalDeltaKShorts, feesShort)
	if err != nil {
		return err
	}

	p.LastUpdatedTimestamp = now

	spot, err := SpotPrice(p)
	if err != nil {
		return err
	}
	if !p.EmaInitialized {
		p.EmaPrice = spot
		p.EmaInitialized = true
		return nil
	}

	alpha, err := fixedpoint.MulDiv(uint64(dt), fixedpoint.Precision, uint64(config.EMAHalfLife)+uint64(dt))
	if err != nil {
		return err
	}
	oneMinusAlpha, err := fixedpoint.CheckedSub(fixedpoint.Precision, alpha)
	if err != nil {
		return err
	}
	decayed, err := fixedpoint.MulQ(p.EmaPrice, oneMinusAlpha)
	if err != nil {
		return err
	}
	contributed, err := fixedpoint.MulQ(spot, alpha)
	if err != nil {
		return err
	}
	p.EmaPrice, err = fixedpoint.CheckedAdd(decayed, contributed)
	return err
}

// SpotPrice returns effective_sol_reserve/effective_token_reserve as a
// Q-format price.
func SpotPrice(p *store.Pool) (uint64, error) {
	return fixedpoint.DivQ(p.EffectiveSolReserve, p.EffectiveTokenReserve)
}

// ConstantProductOut computes a_out = R_out - (R_in*R_out)/(R_in+a_in)
// (spec §4.C), with the R_in*R_out product carried through a 128-bit
// intermediate.
func ConstantProductOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	if amountIn == 0 {
		return 0, types.ErrZeroAmount
	}
	denom, err := fixedpoint.CheckedAdd(reserveIn, amountIn)
	if err != nil {
		return 0, err
	}
	quoted, err := fixedpoint.MulDiv(reserveIn, reserveOut, denom)
	if err != nil {
		return 0, err
	}
	return fixedpoint.CheckedSub(reserveOut, quoted)
}

// RemainingFactor returns the Q-format fraction of a position's size/debt
// that has not yet been decayed by funding (spec §4.C):
// remaining = 1 - (cumulative - entry), clamped to [0, 1].
func RemainingFactor(cumulativeFundingAcc, entryFundingAcc uint64) uint64 {
	if cumulativeFundingAcc <= entryFundingAcc {
		return fixedpoint.Precision
	}
	decayed := cumulativeFundingAcc - entryFundingAcc
	if decayed >= fixedpoint.Precision {
		return 0
	}
	return fixedpoint.Precision - decayed
}

// Safety is the result of the EMA liquidation-manipulation gate.
type Safety struct {
	Safe          bool
	DivergencePct uint64
}

// CheckLiquidationSafety implements spec §4.C's EMA divergence gate: a
// liquidation is blocked if spot has been pushed more than
// liq_divergence_threshold_pct below the EMA.
func CheckLiquidationSafety(p *store.Pool) (Safety, error) {
	if !p.EmaInitialized {
		return Safety{Safe: true}, nil
	}
	spot, err := SpotPrice(p)
	if err != nil {
		return Safety{}, err
	}
	if spot >= p.EmaPrice {
		return Safety{Safe: true}, nil
	}
	diff, err := fixedpoint.CheckedSub(p.EmaPrice, spot)
	if err != nil {
		return Safety{}, err
	}
	divergenceQ, err := fixedpoint.DivQ(diff, p.EmaPrice)
	if err != nil {
		return Safety{}, err
	}
	divergencePct, err := fixedpoint.CheckedMul(divergenceQ, 100)
	if err != nil {
		return Safety{}, err
	}
	divergencePct /= fixedpoint.Precision
	return Safety{Safe: divergencePct <= p.LiqDivergenceThreshPct, DivergencePct: divergencePct}, nil
}
