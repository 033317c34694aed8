package bondingcurve

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

func testMint() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func mustCurve(t *testing.T, totalSupply, targetBase, targetTokens uint64) *store.BondingCurve {
	t.Helper()
	c, err := NewCurve(testMint(), totalSupply, targetBase, targetTokens, store.Metadata{Name: "Test", Ticker: "TST"})
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return c
}

func TestNewCurveRejectsUndersizedSupply(t *testing.T) {
	_, err := NewCurve(testMint(), 100, 1000, 60, store.Metadata{})
	if err != types.ErrInvalidBondingCurveParams {
		t.Fatalf("expected ErrInvalidBondingCurveParams, got %v", err)
	}
}

func TestBuySmallFillStaysActive(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)

	res, err := Buy(curve, 1_000_000_000) // 1 BASE
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if res.Graduated {
		t.Fatalf("should not graduate on a small buy")
	}
	if res.TokensOut == 0 {
		t.Fatalf("expected nonzero tokens out")
	}
	if curve.TokensSold != res.TokensOut {
		t.Fatalf("tokens_sold mismatch: got %d want %d", curve.TokensSold, res.TokensOut)
	}
	if curve.BaseRaised != res.BaseIn {
		t.Fatalf("base_raised mismatch: got %d want %d", curve.BaseRaised, res.BaseIn)
	}
}

func TestBuyClampsAndRefundsAtGraduation(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)

	// A buy far larger than the entire curve target must clamp exactly at
	// target_tokens and refund the unused BASE.
	res, err := Buy(curve, 10_000_000_000_000) // 10,000 BASE, way oversized
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if !res.Graduated {
		t.Fatalf("expected graduation on an oversized buy")
	}
	if curve.Status != types.BondingCurveGraduated {
		t.Fatalf("curve status not updated to graduated")
	}
	if curve.TokensSold != curve.TargetTokens {
		t.Fatalf("tokens_sold should clamp exactly to target_tokens: got %d want %d", curve.TokensSold, curve.TargetTokens)
	}
	if res.Refund == 0 {
		t.Fatalf("expected a nonzero refund")
	}
	if res.BaseIn+res.Refund != 10_000_000_000_000 {
		t.Fatalf("base_in + refund must equal the original amount: got %d", res.BaseIn+res.Refund)
	}
}

func TestBuyRejectsWhenNotActive(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)
	curve.Status = types.BondingCurveGraduated

	if _, err := Buy(curve, 1_000_000_000); err != types.ErrBondingCurveNotActive {
		t.Fatalf("expected ErrBondingCurveNotActive, got %v", err)
	}
}

func TestSellRoundTripApproximatesBuy(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)

	buyRes, err := Buy(curve, 5_000_000_000) // 5 BASE
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	sellRes, err := Sell(curve, buyRes.TokensOut)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}

	// Selling back every token just bought returns the BASE spent to within
	// one unit: CostBetween is the same integral run in reverse, but both
	// legs floor, so the sell can come back one unit short (never over).
	if sellRes.BaseOut > buyRes.BaseIn || buyRes.BaseIn-sellRes.BaseOut > 1 {
		t.Fatalf("round trip mismatch: bought for %d, sold back for %d", buyRes.BaseIn, sellRes.BaseOut)
	}
	if curve.TokensSold != 0 || curve.BaseRaised > 1 {
		t.Fatalf("curve should be back to its initial state, got sold=%d raised=%d", curve.TokensSold, curve.BaseRaised)
	}
}

func TestSellRejectsMoreThanEverSold(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)
	if _, err := Sell(curve, 1); err != types.ErrInsufficientTokensSold {
		t.Fatalf("expected ErrInsufficientTokensSold, got %v", err)
	}
}

func TestBuyZeroAmountRejected(t *testing.T) {
	curve := mustCurve(t, 560_000_000_000_000, 200_000_000_000, 280_000_000_000_000)
	if _, err := Buy(curve, 0); err != types.ErrZeroAmount {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}
