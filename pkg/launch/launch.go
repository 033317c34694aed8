// Package launch implements spec §4.E: the two pool-creation entry points
// (direct launch, curve launch) and the internal graduation transition
// that promotes a fully-sold bonding curve into a live pool. Grounded on
// the teacher's account-derivation helpers (solana.FindProgramAddress via
// pkg/types) for vault addressing, since pump-go-sdk itself never creates
// pools — it only ever reads ones created on-chain.
package launch

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/ammcore/pkg/bondingcurve"
	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/fixedpoint"
	"github.com/ninja0404/ammcore/pkg/store"
	"github.com/ninja0404/ammcore/pkg/types"
)

func resolveOverrides(cfg config.EngineConfig, fundingC, liqThreshold *uint64) (uint64, uint64) {
	c := cfg.FundingConstantC
	if fundingC != nil {
		c = *fundingC
	}
	t := cfg.LiquidationDivergenceThresholdPct
	if liqThreshold != nil {
		t = *liqThreshold
	}
	return c, t
}

// Direct creates an immediately-Live pool seeded with caller-supplied
// BASE and a fixed token supply minted straight to the pool's reserves
// (spec §4.E path 1).
func Direct(args types.LaunchDirectArgs, cfg config.EngineConfig) (*store.Pool, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{"caller": args.Caller, "mint": args.Mint}); err != nil {
		return nil, err
	}
	if args.InitialBase == 0 {
		return nil, types.ErrZeroAmount
	}
	if args.TotalSupply == 0 {
		return nil, types.ErrZeroAmount
	}

	tokenVault, _, err := types.DeriveTokenVaultAddress(args.Mint)
	if err != nil {
		return nil, err
	}
	fundingC, liqThreshold := resolveOverrides(cfg, args.FundingC, args.LiqThreshold)

	return &store.Pool{
		Authority:              args.Caller,
		TokenMint:              args.Mint,
		TokenVault:             tokenVault,
		SolReserve:             args.InitialBase,
		TokenReserve:           args.TotalSupply,
		EffectiveSolReserve:    args.InitialBase,
		EffectiveTokenReserve:  args.TotalSupply,
		FundingConstantC:       fundingC,
		LiqDivergenceThreshPct: liqThreshold,
		Status:                 types.PoolLive,
		Meta: store.Metadata{
			Name:        args.Name,
			Ticker:      args.Ticker,
			MetadataURI: args.MetadataURI,
		},
	}, nil
}

// OnCurve creates an Uninitialized pool and an Active bonding curve over
// it (spec §4.E path 2). The pool's token_reserve is seeded with the full
// supply up front — it models the vault holding every minted token until
// graduation carves out the LP seed and any unsold remainder.
func OnCurve(args types.LaunchOnCurveArgs, cfg config.EngineConfig) (*store.Pool, *store.BondingCurve, error) {
	if err := types.ValidatePublicKeys(map[string]solana.PublicKey{"caller": args.Caller, "mint": args.Mint}); err != nil {
		return nil, nil, err
	}

	meta := store.Metadata{Name: args.Name, Ticker: args.Ticker, MetadataURI: args.MetadataURI}
	curve, err := bondingcurve.NewCurve(args.Mint, args.TotalSupply, args.TargetBase, args.TargetTokens, meta)
	if err != nil {
		return nil, nil, err
	}

	tokenVault, _, err := types.DeriveTokenVaultAddress(args.Mint)
	if err != nil {
		return nil, nil, err
	}
	fundingC, liqThreshold := resolveOverrides(cfg, args.FundingC, args.LiqThreshold)

	pool := &store.Pool{
		Authority:              args.Caller,
		TokenMint:              args.Mint,
		TokenVault:             tokenVault,
		TokenReserve:           args.TotalSupply,
		FundingConstantC:       fundingC,
		LiqDivergenceThreshPct: liqThreshold,
		Status:                 types.PoolUninitialized,
		Meta:                   meta,
	}
	return pool, curve, nil
}

// Graduate promotes a fully-sold bonding curve into a Live pool (spec
// §4.E "Graduation"). It does not delete the curve record — the caller
// (pkg/engine) owns the store and is responsible for
// store.DeleteBondingCurve once this returns successfully, mirroring
// "close the BondingCurve account".
func Graduate(p *store.Pool, curve *store.BondingCurve, now int64) error {
	curve.Status = types.BondingCurveGraduated

	lpTokens, err := fixedpoint.CheckedDiv(curve.TargetTokens, 2)
	if err != nil {
		return err
	}
	remainingUnsold, err := fixedpoint.CheckedSub(p.TokenReserve, curve.TokensSold)
	if err != nil {
		return err
	}
	tokenReserve, err := fixedpoint.CheckedAdd(lpTokens, remainingUnsold)
	if err != nil {
		return err
	}

	p.SolReserve = curve.BaseRaised
	p.EffectiveSolReserve = curve.BaseRaised
	p.TokenReserve = tokenReserve
	p.EffectiveTokenReserve = lpTokens
	p.Status = types.PoolLive
	p.LastUpdatedTimestamp = now
	p.CumulativeFundingAcc = 0
	p.EmaInitialized = false
	return nil
}
