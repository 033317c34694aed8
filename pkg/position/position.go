// Package position implements spec §4.D: the live-phase spot swap and the
// leveraged long/short lifecycle (open/close/liquidate). Every entry point
// runs the pool's funding update first, matching spec §4.C's "all
// live-phase operations begin with a funding update" rule and §5's
// ordering guarantee. Grounded on pkg/pool for the shared constant-product
// and funding primitives; there is no teacher equivalent (pump-go-sdk
// reads positions, it never opens or settles them).
package position

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/pool"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

// Swap executes a live-pool spot trade, mutating both the real and
// effective reserves on both sides (spec §4.D).
func Swap(p *store.Pool, args types.SwapArgs) (uint64, error) {
	if p.Status != types.PoolLive {
		return 0, types.ErrPoolNotLive
	}
	if err := pool.UpdateFunding(p, args.Now); err != nil {
		return 0, err
	}
	if err := types.ValidateSwapParams(args.AmountIn, args.MinAmountOut); err != nil {
		return 0, err
	}

	var amountOut uint64
	var err error
	if args.InputIsBase {
		amountOut, err = pool.ConstantProductOut(p.EffectiveSolReserve, p.EffectiveTokenReserve, args.AmountIn)
	} else {
		amountOut, err = pool.ConstantProductOut(p.EffectiveTokenReserve, p.EffectiveSolReserve, args.AmountIn)
	}
	if err != nil {
		return 0, err
	}
	if amountOut < args.MinAmountOut {
		return 0, types.ErrSlippageExceeded
	}

	if args.InputIsBase {
		if p.SolReserve, err = fixedpoint.CheckedAdd(p.SolReserve, args.AmountIn); err != nil {
			return 0, err
		}
		if p.EffectiveSolReserve, err = fixedpoint.CheckedAdd(p.EffectiveSolReserve, args.AmountIn); err != nil {
			return 0, err
		}
		if p.TokenReserve, err = fixedpoint.CheckedSub(p.TokenReserve, amountOut); err != nil {
			return 0, err
		}
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedSub(p.EffectiveTokenReserve, amountOut); err != nil {
			return 0, err
		}
	} else {
		if p.TokenReserve, err = fixedpoint.CheckedAdd(p.TokenReserve, args.AmountIn); err != nil {
			return 0, err
		}
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedAdd(p.EffectiveTokenReserve, args.AmountIn); err != nil {
			return 0, err
		}
		if p.SolReserve, err = fixedpoint.CheckedSub(p.SolReserve, amountOut); err != nil {
			return 0, err
		}
		if p.EffectiveSolReserve, err = fixedpoint.CheckedSub(p.EffectiveSolReserve, amountOut); err != nil {
			return 0, err
		}
	}
	return amountOut, nil
}

// Open creates a new leveraged position (spec §4.D). The caller is
// responsible for persisting the returned record and for enforcing the
// (owner, nonce) uniqueness constraint (store.PutPosition).
func Open(p *store.Pool, authority solana.PublicKey, args types.LeverageSwapArgs) (*store.Position, error) {
	if p.Status != types.PoolLive {
		return nil, types.ErrPoolNotLive
	}
	if err := pool.UpdateFunding(p, args.Now); err != nil {
		return nil, err
	}
	if err := types.ValidateLeverageParams(args.Collateral, args.LeverageTenths); err != nil {
		return nil, err
	}

	notional, err := fixedpoint.MulDiv(args.Collateral, args.LeverageTenths, 10)
	if err != nil {
		return nil, err
	}

	var size uint64
	if args.IsLong {
		size, err = pool.ConstantProductOut(p.EffectiveSolReserve, p.EffectiveTokenReserve, notional)
	} else {
		size, err = pool.ConstantProductOut(p.EffectiveTokenReserve, p.EffectiveSolReserve, notional)
	}
	if err != nil {
		return nil, err
	}
	if size < args.MinSizeOut {
		return nil, types.ErrSlippageExceeded
	}

	kBefore := fixedpoint.Mul128(p.EffectiveSolReserve, p.EffectiveTokenReserve)

	if args.IsLong {
		if p.EffectiveSolReserve, err = fixedpoint.CheckedAdd(p.EffectiveSolReserve, args.Collateral); err != nil {
			return nil, err
		}
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedSub(p.EffectiveTokenReserve, size); err != nil {
			return nil, err
		}
		if p.SolReserve, err = fixedpoint.CheckedAdd(p.SolReserve, args.Collateral); err != nil {
			return nil, err
		}
	} else {
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedAdd(p.EffectiveTokenReserve, args.Collateral); err != nil {
			return nil, err
		}
		if p.EffectiveSolReserve, err = fixedpoint.CheckedSub(p.EffectiveSolReserve, size); err != nil {
			return nil, err
		}
		if p.TokenReserve, err = fixedpoint.CheckedAdd(p.TokenReserve, args.Collateral); err != nil {
			return nil, err
		}
	}

	kAfter := fixedpoint.Mul128(p.EffectiveSolReserve, p.EffectiveTokenReserve)

	// delta_k is the K shortfall this leveraged withdrawal introduces: the
	// position took `size` worth of output but only contributed
	// `collateral` (not the full `notional`) to the other side. It is a
	// reserve product (K-units), routinely well past 64 bits, so it is
	// carried as a U128 rather than narrowed. Floor rounding can
	// occasionally leave k_after >= k_before at the lowest leverage tier;
	// treat that as zero debt rather than an error.
	var deltaK fixedpoint.U128
	if diff, underflow := kBefore.Sub(kAfter); !underflow {
		deltaK = diff
	}

	if args.IsLong {
		if p.TotalDeltaKLongs, err = fixedpoint.AddU128(p.TotalDeltaKLongs, deltaK); err != nil {
			return nil, err
		}
	} else {
		if p.TotalDeltaKShorts, err = fixedpoint.AddU128(p.TotalDeltaKShorts, deltaK); err != nil {
			return nil, err
		}
	}

	return &store.Position{
		Authority:               authority,
		Pool:                    p.TokenMint,
		Owner:                   authority,
		Nonce:                   args.Nonce,
		IsLong:                  args.IsLong,
		Collateral:              args.Collateral,
		Size:                    size,
		DeltaK:                  deltaK,
		EntryFundingAccumulator: p.CumulativeFundingAcc,
	}, nil
}

// settlement is the shared close/liquidate computation of spec §4.D: the
// funding-decayed size/debt and the resulting payout. positive is false
// when the decayed debt exceeds the position's reserve-side value, i.e. the
// payout would be negative (payout is then 0); a payout that floors to 0
// still reports positive.
type settlement struct {
	effectiveSize   uint64
	effectiveDeltaK fixedpoint.U128
	payout          uint64
	positive        bool
}

func settle(p *store.Pool, pos *store.Position) (settlement, error) {
	remaining := pool.RemainingFactor(p.CumulativeFundingAcc, pos.EntryFundingAccumulator)

	effectiveSize, err := fixedpoint.MulQ(pos.Size, remaining)
	if err != nil {
		return settlement{}, err
	}
	effectiveDeltaK, err := fixedpoint.MulQU128(pos.DeltaK, remaining)
	if err != nil {
		return settlement{}, err
	}

	var numerator fixedpoint.U128
	var denom uint64
	if pos.IsLong {
		numerator = fixedpoint.Mul128(p.EffectiveSolReserve, effectiveSize)
		denom, err = fixedpoint.CheckedAdd(p.EffectiveTokenReserve, effectiveSize)
	} else {
		numerator = fixedpoint.Mul128(p.EffectiveTokenReserve, effectiveSize)
		denom, err = fixedpoint.CheckedAdd(p.EffectiveSolReserve, effectiveSize)
	}
	if err != nil {
		return settlement{}, err
	}

	reduced, underflow := numerator.Sub(effectiveDeltaK)
	if underflow {
		return settlement{effectiveSize: effectiveSize, effectiveDeltaK: effectiveDeltaK}, nil
	}

	payout, err := reduced.Div(denom)
	if err != nil {
		return settlement{}, err
	}
	return settlement{effectiveSize: effectiveSize, effectiveDeltaK: effectiveDeltaK, payout: payout, positive: true}, nil
}

// applySettlement mirrors the open-time accounting to unwind a position
// and pay out the real reserve (spec §4.D step 5/6).
func applySettlement(p *store.Pool, pos *store.Position, s settlement) error {
	var err error
	if pos.IsLong {
		if p.TotalDeltaKLongs, err = fixedpoint.SubU128(p.TotalDeltaKLongs, s.effectiveDeltaK); err != nil {
			return err
		}
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedAdd(p.EffectiveTokenReserve, s.effectiveSize); err != nil {
			return err
		}
		if p.EffectiveSolReserve, err = fixedpoint.CheckedSub(p.EffectiveSolReserve, s.payout); err != nil {
			return err
		}
		if p.SolReserve, err = fixedpoint.CheckedSub(p.SolReserve, s.payout); err != nil {
			return err
		}
	} else {
		if p.TotalDeltaKShorts, err = fixedpoint.SubU128(p.TotalDeltaKShorts, s.effectiveDeltaK); err != nil {
			return err
		}
		if p.EffectiveSolReserve, err = fixedpoint.CheckedAdd(p.EffectiveSolReserve, s.effectiveSize); err != nil {
			return err
		}
		if p.EffectiveTokenReserve, err = fixedpoint.CheckedSub(p.EffectiveTokenReserve, s.payout); err != nil {
			return err
		}
		if p.TokenReserve, err = fixedpoint.CheckedSub(p.TokenReserve, s.payout); err != nil {
			return err
		}
	}
	return nil
}

// Close unwinds a position at its authority's request (spec §4.D). A
// payout that would be zero or negative is clamped to zero rather than
// rejected — only liquidate enforces PositionUnderwater.
func Close(p *store.Pool, pos *store.Position, caller solana.PublicKey, now int64) (uint64, error) {
	if p.Status != types.PoolLive {
		return 0, types.ErrPoolNotLive
	}
	if err := types.RequireAuthority(pos.AuthorityID(), caller); err != nil {
		return 0, err
	}
	if err := pool.UpdateFunding(p, now); err != nil {
		return 0, err
	}

	s, err := settle(p, pos)
	if err != nil {
		return 0, err
	}
	if !s.positive {
		s.payout = 0
	}

	if err := applySettlement(p, pos, s); err != nil {
		return 0, err
	}
	return s.payout, nil
}

// Liquidate force-closes a distressed position. Callable by anyone, but
// gated by the EMA divergence check and the 5% gross-value threshold
// (spec §4.D).
func Liquidate(p *store.Pool, pos *store.Position, now int64) (uint64, error) {
	if p.Status != types.PoolLive {
		return 0, types.ErrPoolNotLive
	}
	if err := pool.UpdateFunding(p, now); err != nil {
		return 0, err
	}

	safety, err := pool.CheckLiquidationSafety(p)
	if err != nil {
		return 0, err
	}
	if !safety.Safe {
		return 0, types.ErrLiquidationPriceManipulation
	}

	s, err := settle(p, pos)
	if err != nil {
		return 0, err
	}
	if !s.positive || s.payout == 0 {
		return 0, types.ErrPositionUnderwater
	}

	var grossValue uint64
	if pos.IsLong {
		grossValue, err = pool.ConstantProductOut(p.EffectiveTokenReserve, p.EffectiveSolReserve, s.effectiveSize)
	} else {
		grossValue, err = pool.ConstantProductOut(p.EffectiveSolReserve, p.EffectiveTokenReserve, s.effectiveSize)
	}
	if err != nil {
		return 0, err
	}

	threshold, err := fixedpoint.MulDiv(grossValue, 5, 100)
	if err != nil {
		return 0, err
	}
	if s.payout > threshold {
		return 0, types.ErrPositionNotLiquidatable
	}

	if err := applySettlement(p, pos, s); err != nil {
		return 0, err
	}
	return s.payout, nil
}
