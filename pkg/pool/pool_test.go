package pool

import (
	"testing"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/store"
)

func liveTestPool() *store.Pool {
	return &store.Pool{
		SolReserve:             200_000_000_000,
		TokenReserve:           280_000_000_000_000,
		EffectiveSolReserve:    200_000_000_000,
		EffectiveTokenReserve:  140_000_000_000_000,
		LastUpdatedTimestamp:   1_000,
		FundingConstantC:       fixedpoint.Precision / 10_000,
		LiqDivergenceThreshPct: 10,
	}
}

func TestUpdateFundingNoOpWithoutOpenInterest(t *testing.T) {
	p := liveTestPool()
	if err := UpdateFunding(p, 2_000); err != nil {
		t.Fatalf("UpdateFunding: %v", err)
	}
	if p.LastUpdatedTimestamp != 2_000 {
		t.Fatalf("timestamp should still advance with zero open interest")
	}
	if p.CumulativeFundingAcc != 0 {
		t.Fatalf("no open interest should accrue no funding")
	}
	if p.EmaInitialized {
		t.Fatalf("EMA should not seed with zero open interest")
	}
}

func TestUpdateFundingNegativeDeltaIsNoOp(t *testing.T) {
	p := liveTestPool()
	if err := UpdateFunding(p, 500); err != nil {
		t.Fatalf("UpdateFunding: %v", err)
	}
	if p.LastUpdatedTimestamp != 1_000 {
		t.Fatalf("timestamp should not move backwards")
	}
}

func TestUpdateFundingAccruesWithOpenInterest(t *testing.T) {
	p := liveTestPool()
	// delta-K is in K-units (a reserve product): 1e24 against K = 2.8e25.
	debt := fixedpoint.Mul128(1_000_000_000_000, 1_000_000_000_000)
	p.TotalDeltaKLongs = debt

	if err := UpdateFunding(p, 1_100); err != nil {
		t.Fatalf("UpdateFunding: %v", err)
	}
	if p.CumulativeFundingAcc == 0 {
		t.Fatalf("expected nonzero funding accrual with open interest")
	}
	if p.CumulativeFundingAcc > fixedpoint.Precision {
		t.Fatalf("accumulator must never exceed PRECISION, got %d", p.CumulativeFundingAcc)
	}
	if p.TotalDeltaKLongs.Cmp(debt) >= 0 {
		t.Fatalf("funding should have decayed outstanding long debt")
	}
}

func TestUpdateFundingSaturatesAtPrecision(t *testing.T) {
	p := liveTestPool()
	p.TotalDeltaKLongs = fixedpoint.Mul128(50_000_000_000_000, 1_000_000_000_000)
	p.CumulativeFundingAcc = fixedpoint.Precision - 1

	if err := UpdateFunding(p, 1_000_000); err != nil {
		t.Fatalf("UpdateFunding: %v", err)
	}
	if p.CumulativeFundingAcc != fixedpoint.Precision {
		t.Fatalf("expected saturation at PRECISION, got %d", p.CumulativeFundingAcc)
	}
}

func TestRemainingFactorClampsToUnitInterval(t *testing.T) {
	if got := RemainingFactor(0, 0); got != fixedpoint.Precision {
		t.Fatalf("fresh position should have remaining=1.0, got %d", got)
	}
	if got := RemainingFactor(fixedpoint.Precision, 0); got != 0 {
		t.Fatalf("fully decayed position should have remaining=0, got %d", got)
	}
	half := fixedpoint.Precision / 2
	if got := RemainingFactor(half, 0); got != half {
		t.Fatalf("expected remaining=0.5, got %d", got)
	}
}

func TestConstantProductOutBoundedForBalancedPool(t *testing.T) {
	out, err := ConstantProductOut(1_000_000, 1_000_000, 100_000)
	if err != nil {
		t.Fatalf("ConstantProductOut: %v", err)
	}
	if out == 0 || out >= 100_000 {
		t.Fatalf("unexpected output %d for a balanced pool", out)
	}
}

func TestConstantProductOutZeroAmountRejected(t *testing.T) {
	if _, err := ConstantProductOut(1_000, 1_000, 0); err == nil {
		t.Fatalf("expected an error for zero amount in")
	}
}

func TestCheckLiquidationSafetyBlocksOnDivergence(t *testing.T) {
	p := liveTestPool()
	p.EmaInitialized = true
	p.EmaPrice = 2 * fixedpoint.Precision // EMA says price should be ~2
	p.EffectiveSolReserve = 1 * fixedpoint.Precision
	p.EffectiveTokenReserve = 1 * fixedpoint.Precision // spot = 1 BASE/token vs EMA=2: ~50% divergence

	safety, err := CheckLiquidationSafety(p)
	if err != nil {
		t.Fatalf("CheckLiquidationSafety: %v", err)
	}
	if safety.Safe {
		t.Fatalf("expected unsafe divergence, got safe (pct=%d)", safety.DivergencePct)
	}
}

func TestCheckLiquidationSafetyUninitializedIsSafe(t *testing.T) {
	p := liveTestPool()
	safety, err := CheckLiquidationSafety(p)
	if err != nil {
		t.Fatalf("CheckLiquidationSafety: %v", err)
	}
	if !safety.Safe {
		t.Fatalf("an uninitialized EMA must never block liquidation")
	}
}
