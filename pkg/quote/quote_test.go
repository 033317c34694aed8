package quote

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
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

func activeTestCurve() *store.BondingCurve {
	return &store.BondingCurve{
		Mint:         solana.NewWallet().PublicKey(),
		TargetBase:   200_000_000_000,
		TargetTokens: 280_000_000_000_000,
		Status:       types.BondingCurveActive,
	}
}

func TestSwapRejectsWhenPoolNotLive(t *testing.T) {
	p := liveTestPool()
	p.Status = types.PoolUninitialized
	if _, err := Swap(p, 1_000, true, 100); err != types.ErrPoolNotLive {
		t.Fatalf("expected ErrPoolNotLive, got %v", err)
	}
}

func TestSwapDoesNotMutatePool(t *testing.T) {
	p := liveTestPool()
	before := *p
	if _, err := Swap(p, 1_000_000_000, true, 100); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if *p != before {
		t.Fatalf("quoting a swap must not mutate pool state")
	}
}

func TestSwapReportsPositivePriceImpactOnBuy(t *testing.T) {
	p := liveTestPool()
	q, err := Swap(p, 10_000_000_000, true, 100)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if q.ExpectedOut == 0 {
		t.Fatalf("expected nonzero output")
	}
	if q.ExecutionPrice <= q.SpotPrice {
		t.Fatalf("buying should execute above spot: exec=%d spot=%d", q.ExecutionPrice, q.SpotPrice)
	}
	if q.PriceImpactBps == 0 {
		t.Fatalf("expected nonzero price impact for a sizable trade")
	}
	if q.MinOut >= q.ExpectedOut {
		t.Fatalf("min_out must be strictly less than expected_out with nonzero slippage tolerance")
	}
}

func TestSwapRejectsZeroAmount(t *testing.T) {
	p := liveTestPool()
	if _, err := Swap(p, 0, true, 100); err != types.ErrZeroAmount {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}

func TestSwapRejectsInvalidSlippage(t *testing.T) {
	p := liveTestPool()
	if _, err := Swap(p, 1_000, true, 10_000); err != types.ErrInvalidSlippage {
		t.Fatalf("expected ErrInvalidSlippage, got %v", err)
	}
}

func TestCurveQuoteReportsGraduationAtTargetBoundary(t *testing.T) {
	curve := activeTestCurve()
	q, err := Curve(curve, curve.TargetBase*2)
	if err != nil {
		t.Fatalf("Curve: %v", err)
	}
	if !q.WillGraduate {
		t.Fatalf("buying well past target_base should graduate")
	}
	if q.TokensOut != q.RemainingRoom {
		t.Fatalf("a graduating quote should clamp to the remaining room: got %d want %d", q.TokensOut, q.RemainingRoom)
	}
}

func TestCurveQuoteDoesNotMutateCurve(t *testing.T) {
	curve := activeTestCurve()
	before := *curve
	if _, err := Curve(curve, 1_000_000_000); err != nil {
		t.Fatalf("Curve: %v", err)
	}
	if *curve != before {
		t.Fatalf("quoting a curve buy must not mutate curve state")
	}
}

func TestCurveQuoteRejectsInactiveCurve(t *testing.T) {
	curve := activeTestCurve()
	curve.Status = types.BondingCurveGraduated
	if _, err := Curve(curve, 1_000); err != types.ErrBondingCurveNotActive {
		t.Fatalf("expected ErrBondingCurveNotActive, got %v", err)
	}
}

func TestOpenQuoteMatchesLeverageNotional(t *testing.T) {
	p := liveTestPool()
	q, err := Open(p, 10_000_000_000, 50, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if q.Notional != 50_000_000_000 {
		t.Fatalf("expected notional = collateral*leverage/10, got %d", q.Notional)
	}
	if q.Size == 0 {
		t.Fatalf("expected nonzero size")
	}
}

func TestOpenQuoteRejectsLeverageOutOfRange(t *testing.T) {
	p := liveTestPool()
	if _, err := Open(p, 1_000_000_000, 500, true); err != types.ErrLeverageTooHigh {
		t.Fatalf("expected ErrLeverageTooHigh, got %v", err)
	}
}

func TestFormatAmountRendersDecimalPlaces(t *testing.T) {
	if got := FormatAmount(1_500_000_000, 9); got != "1.5" {
		t.Fatalf("expected 1.5, got %s", got)
	}
}

func TestFormatPriceQRendersFixedDecimals(t *testing.T) {
	got := FormatPriceQ(fixedpoint.Precision)
	if got != "1.000000000" {
		t.Fatalf("expected 1.000000000, got %s", got)
	}
}

func TestFormatBpsRendersPercentage(t *testing.T) {
	if got := FormatBps(125); got != "1.25%" {
		t.Fatalf("expected 1.25%%, got %s", got)
	}
}
