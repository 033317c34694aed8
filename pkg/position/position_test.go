package position

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/pool"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

func liveTestPool() *store.Pool {
	return &store.Pool{
		SolReserve:             200_000_000_000,
		TokenReserve:           280_000_000_000_000,
		EffectiveSolReserve:    200_000_000_000,
		EffectiveTokenReserve:  140_000_000_000_000,
		LastUpdatedTimestamp:   1_000,
		Status:                 types.PoolLive,
		FundingConstantC:       fixedpoint.Precision / 10_000,
		LiqDivergenceThreshPct: 10,
	}
}

func TestSwapRejectsWhenPoolNotLive(t *testing.T) {
	p := liveTestPool()
	p.Status = types.PoolUninitialized
	_, err := Swap(p, types.SwapArgs{AmountIn: 1, MinAmountOut: 1, InputIsBase: true, Now: 1_001})
	if err != types.ErrPoolNotLive {
		t.Fatalf("expected ErrPoolNotLive, got %v", err)
	}
}

func TestSwapEnforcesSlippage(t *testing.T) {
	p := liveTestPool()
	_, err := Swap(p, types.SwapArgs{AmountIn: 1_000_000_000, MinAmountOut: 1_000_000_000_000_000, InputIsBase: true, Now: 1_001})
	if err != types.ErrSlippageExceeded {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
}

func TestSwapUpdatesBothRealAndEffectiveReserves(t *testing.T) {
	p := liveTestPool()
	out, err := Swap(p, types.SwapArgs{AmountIn: 1_000_000_000, MinAmountOut: 1, InputIsBase: true, Now: 1_001})
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if p.SolReserve != p.EffectiveSolReserve {
		t.Fatalf("spot swap must keep real and effective sol reserves in parity: %d vs %d", p.SolReserve, p.EffectiveSolReserve)
	}
	if p.TokenReserve-280_000_000_000_000+140_000_000_000_000 != p.EffectiveTokenReserve {
		t.Fatalf("real/effective token reserves diverged unexpectedly")
	}
	if out == 0 {
		t.Fatalf("expected nonzero output")
	}
}

func TestOpenLongCreatesDebtAndPosition(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()

	pos, err := Open(p, owner, types.LeverageSwapArgs{
		Collateral:     10_000_000_000, // 10 BASE
		IsLong:         true,
		LeverageTenths: 50, // 5.0x
		Nonce:          1,
		Now:            1_001,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if pos.Size == 0 {
		t.Fatalf("expected nonzero position size")
	}
	if p.TotalDeltaKLongs.IsZero() {
		t.Fatalf("a leveraged open should register debt against total_delta_k_longs")
	}
	if !p.TotalDeltaKShorts.IsZero() {
		t.Fatalf("a long open must not touch the short debt counter")
	}
	if p.SolReserve != 200_000_000_000+10_000_000_000 {
		t.Fatalf("real sol reserve should have received the collateral")
	}
}

func TestOpenRejectsLeverageOutOfRange(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	_, err := Open(p, owner, types.LeverageSwapArgs{Collateral: 1_000_000_000, IsLong: true, LeverageTenths: 500, Now: 1_001})
	if err != types.ErrLeverageTooHigh {
		t.Fatalf("expected ErrLeverageTooHigh, got %v", err)
	}
}

func openTestPosition(t *testing.T, p *store.Pool, owner solana.PublicKey, isLong bool) *store.Position {
	t.Helper()
	pos, err := Open(p, owner, types.LeverageSwapArgs{
		Collateral:     10_000_000_000,
		IsLong:         isLong,
		LeverageTenths: 30,
		Nonce:          1,
		Now:            1_001,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return pos
}

func TestCloseByNonAuthorityRejected(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	pos := openTestPosition(t, p, owner, true)

	stranger := solana.NewWallet().PublicKey()
	if _, err := Close(p, pos, stranger, 1_002); err != types.ErrNotPositionAuthority {
		t.Fatalf("expected ErrNotPositionAuthority, got %v", err)
	}
}

func TestCloseRoundTripPaysOutNearCollateral(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	pos := openTestPosition(t, p, owner, true)

	payout, err := Close(p, pos, owner, 1_002) // immediate close, negligible funding
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if payout == 0 {
		t.Fatalf("expected a nonzero payout on an immediate close")
	}
	if payout < pos.Collateral*99/100 || payout > pos.Collateral*101/100 {
		t.Fatalf("immediate close should pay back ~collateral %d, got %d", pos.Collateral, payout)
	}
}

func TestLiquidateBlockedByEMADivergence(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	pos := openTestPosition(t, p, owner, true)

	// Force the EMA far above spot to simulate a manipulated dump.
	p.EmaInitialized = true
	ema, err := fixedpoint.MulDiv(p.EffectiveSolReserve, fixedpoint.Precision*10, p.EffectiveTokenReserve)
	if err != nil {
		t.Fatalf("MulDiv: %v", err)
	}
	p.EmaPrice = ema // 10x spot

	if _, err := Liquidate(p, pos, 1_002); err != types.ErrLiquidationPriceManipulation {
		t.Fatalf("expected ErrLiquidationPriceManipulation, got %v", err)
	}
}

func TestLiquidateRejectsHealthyPosition(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	pos := openTestPosition(t, p, owner, true)

	if _, err := Liquidate(p, pos, 1_002); err != types.ErrPositionNotLiquidatable {
		t.Fatalf("expected ErrPositionNotLiquidatable for a freshly opened, healthy position, got %v", err)
	}
}

func TestFundingErodesRemainingFactorOverTime(t *testing.T) {
	p := liveTestPool()
	owner := solana.NewWallet().PublicKey()
	pos := openTestPosition(t, p, owner, true)

	// Advance the clock a long way via repeated swaps, each of which
	// forces a funding update, and confirm the cumulative accumulator
	// strictly increases (spec §8 scenario 6).
	prevAcc := p.CumulativeFundingAcc
	for i := 0; i < 5; i++ {
		if _, err := Swap(p, types.SwapArgs{AmountIn: 1_000_000, MinAmountOut: 1, InputIsBase: true, Now: 1_002 + int64(i)*100_000}); err != nil {
			t.Fatalf("Swap: %v", err)
		}
		if p.CumulativeFundingAcc <= prevAcc {
			t.Fatalf("cumulative funding accumulator must strictly increase")
		}
		prevAcc = p.CumulativeFundingAcc
	}
	if prevAcc == 0 {
		t.Fatalf("expected funding to have accrued over repeated swaps with open interest")
	}
	if pool.RemainingFactor(p.CumulativeFundingAcc, pos.EntryFundingAccumulator) >= fixedpoint.Precision {
		t.Fatalf("expected the position's remaining factor to have eroded below 1.0")
	}
}
