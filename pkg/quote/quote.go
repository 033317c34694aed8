// Package quote implements spec §6's read-only preview path: computing the
// same swap/open math the live engine would apply, without mutating any
// store record. Grounded on the teacher's pkg/quote (pump-go-sdk's
// AmmBuyQuote/AmmSellQuote), which returns a QuoteResult{ExpectedOut,
// MinOut, PriceImpactBps, SpotPrice, ExecutionPrice} computed from RPC-
// fetched reserves; this package keeps that result shape and its
// basis-point price-impact math but reads reserves straight off an
// in-memory *store.Pool/*store.BondingCurve instead of simulating a
// transaction over RPC.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/ninja0404/ammcore/pkg/bondingcurve"
	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/pool"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

// SwapQuote mirrors the teacher's QuoteResult for a live-pool spot trade.
type SwapQuote struct {
	ExpectedOut    uint64
	MinOut         uint64
	SpotPrice      uint64 // Q-format BASE per token
	ExecutionPrice uint64 // Q-format BASE per token
	PriceImpactBps uint64
}

// applySlippage mirrors the teacher's helper: the minimum acceptable
// output after allowing for up to slippageBps/10000 of adverse movement.
func applySlippage(amount, slippageBps uint64) (uint64, error) {
	if slippageBps >= 10_000 {
		return 0, types.ErrInvalidSlippage
	}
	keepBps, err := fixedpoint.CheckedSub(10_000, slippageBps)
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDiv(amount, keepBps, 10_000)
}

func execPriceQ(amountIn, amountOut uint64, inputIsBase bool) (uint64, error) {
	if amountOut == 0 {
		return 0, nil
	}
	if inputIsBase {
		return fixedpoint.DivQ(amountIn, amountOut)
	}
	return fixedpoint.DivQ(amountOut, amountIn)
}

// priceImpactBps mirrors the teacher's calculatePriceMetrics in spirit:
// the adverse movement of execution price away from spot, in bps of spot.
func priceImpactBps(spot, exec uint64, inputIsBase bool) (uint64, error) {
	if spot == 0 {
		return 0, nil
	}
	var adverse uint64
	var err error
	if inputIsBase {
		// Buying the token: a higher execution price than spot is worse.
		if exec <= spot {
			return 0, nil
		}
		adverse, err = fixedpoint.CheckedSub(exec, spot)
	} else {
		// Selling the token: a lower execution price than spot is worse.
		if spot <= exec {
			return 0, nil
		}
		adverse, err = fixedpoint.CheckedSub(spot, exec)
	}
	if err != nil {
		return 0, err
	}
	return fixedpoint.MulDiv(adverse, 10_000, spot)
}

// Swap previews a live-pool spot trade without mutating the pool (spec
// §6's quote_swap). slippageBps is the caller's tolerance, used only to
// derive MinOut for display; it plays no role in the quoted amount.
func Swap(p *store.Pool, amountIn uint64, inputIsBase bool, slippageBps uint64) (*SwapQuote, error) {
	if p.Status != types.PoolLive {
		return nil, types.ErrPoolNotLive
	}
	if amountIn == 0 {
		return nil, types.ErrZeroAmount
	}

	spot, err := pool.SpotPrice(p)
	if err != nil {
		return nil, err
	}

	var amountOut uint64
	if inputIsBase {
		amountOut, err = pool.ConstantProductOut(p.EffectiveSolReserve, p.EffectiveTokenReserve, amountIn)
	} else {
		amountOut, err = pool.ConstantProductOut(p.EffectiveTokenReserve, p.EffectiveSolReserve, amountIn)
	}
	if err != nil {
		return nil, err
	}

	exec, err := execPriceQ(amountIn, amountOut, inputIsBase)
	if err != nil {
		return nil, err
	}
	impact, err := priceImpactBps(spot, exec, inputIsBase)
	if err != nil {
		return nil, err
	}
	minOut, err := applySlippage(amountOut, slippageBps)
	if err != nil {
		return nil, err
	}

	return &SwapQuote{
		ExpectedOut:    amountOut,
		MinOut:         minOut,
		SpotPrice:      spot,
		ExecutionPrice: exec,
		PriceImpactBps: impact,
	}, nil
}

// CurveQuote previews a bonding-curve buy without mutating the curve
// (spec §6's quote_swap_on_curve path). It reports whether the buy as
// quoted would clamp to the graduation boundary.
type CurveQuote struct {
	TokensOut     uint64
	WillGraduate  bool
	RemainingRoom uint64 // tokens left to sell before graduation, pre-trade
}

// Curve previews a bonding-curve buy against the curve's current state.
func Curve(curve *store.BondingCurve, baseIn uint64) (*CurveQuote, error) {
	if curve.Status != types.BondingCurveActive {
		return nil, types.ErrBondingCurveNotActive
	}
	if baseIn == 0 {
		return nil, types.ErrZeroAmount
	}

	remainingRoom, err := fixedpoint.CheckedSub(curve.TargetTokens, curve.TokensSold)
	if err != nil {
		return nil, err
	}

	q2, err := bondingcurve.InverseQuadratic(curve.TokensSold, baseIn, curve.TargetBase, curve.TargetTokens)
	if err != nil {
		return nil, err
	}
	tokensOut, err := fixedpoint.CheckedSub(q2, curve.TokensSold)
	if err != nil {
		return nil, err
	}
	willGraduate := tokensOut >= remainingRoom
	if willGraduate {
		tokensOut = remainingRoom
	}

	return &CurveQuote{TokensOut: tokensOut, WillGraduate: willGraduate, RemainingRoom: remainingRoom}, nil
}

// OpenQuote previews a leveraged position's entry size (spec §6's
// quote_leverage_swap).
type OpenQuote struct {
	Notional uint64
	Size     uint64
}

// Open previews the size a leverage_swap would receive at the pool's
// current effective reserves, ignoring any funding update that a live
// command would apply first — quoting is a snapshot of "right now".
func Open(p *store.Pool, collateral, leverageTenths uint64, isLong bool) (*OpenQuote, error) {
	if p.Status != types.PoolLive {
		return nil, types.ErrPoolNotLive
	}
	if err := types.ValidateLeverageParams(collateral, leverageTenths); err != nil {
		return nil, err
	}

	notional, err := fixedpoint.MulDiv(collateral, leverageTenths, 10)
	if err != nil {
		return nil, err
	}

	var size uint64
	if isLong {
		size, err = pool.ConstantProductOut(p.EffectiveSolReserve, p.EffectiveTokenReserve, notional)
	} else {
		size, err = pool.ConstantProductOut(p.EffectiveTokenReserve, p.EffectiveSolReserve, notional)
	}
	if err != nil {
		return nil, err
	}

	return &OpenQuote{Notional: notional, Size: size}, nil
}

// FormatAmount renders a raw integer amount at the given decimal places
// as a human-readable decimal string, for CLI inspect/quote output only —
// never used in settlement math.
func FormatAmount(raw uint64, decimals uint8) string {
	return decimal.New(int64(raw), -int32(decimals)).String()
}

// FormatPriceQ renders a Q-format (fixedpoint.Precision-scaled) price as a
// fixed 9-decimal-place human-readable string.
func FormatPriceQ(priceQ uint64) string {
	return decimal.New(int64(priceQ), -12).StringFixed(9)
}

// FormatBps renders a basis-point value as a percentage string, e.g.
// 125 -> "1.25%".
func FormatBps(bps uint64) string {
	return decimal.New(int64(bps), -2).StringFixed(2) + "%"
}
