package launch

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/bondingcurve"
	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/types"
)

func TestDirectRejectsZeroInitialBase(t *testing.T) {
	args := types.LaunchDirectArgs{
		Caller:      solana.NewWallet().PublicKey(),
		Mint:        solana.NewWallet().PublicKey(),
		InitialBase: 0,
		TotalSupply: 1_000_000,
	}
	if _, err := Direct(args, config.DefaultEngineConfig()); err != types.ErrZeroAmount {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}

func TestDirectProducesLivePool(t *testing.T) {
	args := types.LaunchDirectArgs{
		Caller:      solana.NewWallet().PublicKey(),
		Mint:        solana.NewWallet().PublicKey(),
		InitialBase: 50_000_000_000,
		TotalSupply: 1_000_000_000_000,
		Name:        "Test Token",
		Ticker:      "TST",
	}
	p, err := Direct(args, config.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if p.Status != types.PoolLive {
		t.Fatalf("expected a Live pool, got %s", p.Status)
	}
	if p.SolReserve != p.EffectiveSolReserve || p.TokenReserve != p.EffectiveTokenReserve {
		t.Fatalf("direct launch must start with real/effective reserves in parity")
	}
}

func TestOnCurveProducesUninitializedPoolAndActiveCurve(t *testing.T) {
	args := types.LaunchOnCurveArgs{
		Caller:       solana.NewWallet().PublicKey(),
		Mint:         solana.NewWallet().PublicKey(),
		TotalSupply:  config.DefaultCurveTargetTokens * 2,
		TargetBase:   config.DefaultCurveTargetBase,
		TargetTokens: config.DefaultCurveTargetTokens,
	}
	p, curve, err := OnCurve(args, config.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("OnCurve: %v", err)
	}
	if p.Status != types.PoolUninitialized {
		t.Fatalf("expected an Uninitialized pool, got %s", p.Status)
	}
	if curve.Status != types.BondingCurveActive {
		t.Fatalf("expected an Active curve, got %s", curve.Status)
	}
}

func TestGraduateSeedsLivePoolFromCurve(t *testing.T) {
	args := types.LaunchOnCurveArgs{
		Caller:       solana.NewWallet().PublicKey(),
		Mint:         solana.NewWallet().PublicKey(),
		TotalSupply:  config.DefaultCurveTargetTokens * 2,
		TargetBase:   config.DefaultCurveTargetBase,
		TargetTokens: config.DefaultCurveTargetTokens,
	}
	p, curve, err := OnCurve(args, config.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("OnCurve: %v", err)
	}

	// Fill the curve completely.
	if _, err := bondingcurve.Buy(curve, config.DefaultCurveTargetBase*2); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if curve.Status != types.BondingCurveGraduated {
		t.Fatalf("curve should have graduated")
	}

	if err := Graduate(p, curve, 5_000); err != nil {
		t.Fatalf("Graduate: %v", err)
	}
	if p.Status != types.PoolLive {
		t.Fatalf("expected the pool to become Live")
	}
	if p.SolReserve != curve.BaseRaised {
		t.Fatalf("sol_reserve should equal base_raised, got %d want %d", p.SolReserve, curve.BaseRaised)
	}
	wantLPTokens := curve.TargetTokens / 2
	if p.EffectiveTokenReserve != wantLPTokens {
		t.Fatalf("effective_token_reserve should equal target_tokens/2, got %d want %d", p.EffectiveTokenReserve, wantLPTokens)
	}
	if p.TokenReserve < p.EffectiveTokenReserve {
		t.Fatalf("real token_reserve must be at least the LP seed")
	}
	if p.LastUpdatedTimestamp != 5_000 {
		t.Fatalf("expected last_updated_timestamp to be set to the graduation time")
	}
}
