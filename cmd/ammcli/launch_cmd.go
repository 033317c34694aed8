package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/types"
)

func newLaunchCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a new pool, direct or via a bonding curve",
	}
	cmd.AddCommand(newLaunchDirectCmd(opts), newLaunchOnCurveCmd(opts))
	return cmd
}

func newLaunchDirectCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr, name, ticker, metadataURI string
		initialBase, totalSupply                      uint64
		now                                            int64
	)
	cmd := &cobra.Command{
		Use:   "direct",
		Short: "Launch a pool directly into the live constant-product AMM (no bonding curve)",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			caller, err := parsePubkey("caller", callerStr)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}

			p, err := deps.engine.LaunchDirect(types.LaunchDirectArgs{
				Caller: caller, Mint: mint, InitialBase: initialBase, TotalSupply: totalSupply,
				Name: name, Ticker: ticker, MetadataURI: metadataURI,
			}, nowOrFlag(now))
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pool launched live: mint=%s sol_reserve=%d token_reserve=%d\n", mint, p.SolReserve, p.TokenReserve)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "launching authority pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&initialBase, "initial-base", 0, "initial BASE reserve (raw units)")
	cmd.Flags().Uint64Var(&totalSupply, "total-supply", 0, "initial token reserve (raw units)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&ticker, "ticker", "", "display ticker")
	cmd.Flags().StringVar(&metadataURI, "metadata-uri", "", "off-chain metadata URI")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("initial-base")
	_ = cmd.MarkFlagRequired("total-supply")
	return cmd
}

func newLaunchOnCurveCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr, name, ticker, metadataURI string
		totalSupply, targetBase, targetTokens         uint64
		now                                            int64
	)
	cmd := &cobra.Command{
		Use:   "on-curve",
		Short: "Launch a bonding curve that graduates into a live pool once filled",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			caller, err := parsePubkey("caller", callerStr)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}

			_, curve, err := deps.engine.LaunchOnCurve(types.LaunchOnCurveArgs{
				Caller: caller, Mint: mint, TotalSupply: totalSupply,
				TargetBase: targetBase, TargetTokens: targetTokens,
				Name: name, Ticker: ticker, MetadataURI: metadataURI,
			}, nowOrFlag(now))
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bonding curve launched: mint=%s slope_m=%d target_base=%d target_tokens=%d\n",
				mint, curve.SlopeM, curve.TargetBase, curve.TargetTokens)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "launching authority pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&totalSupply, "total-supply", 0, "total token supply minted for the curve + post-graduation LP")
	cmd.Flags().Uint64Var(&targetBase, "target-base", config.DefaultCurveTargetBase, "BASE raised at graduation")
	cmd.Flags().Uint64Var(&targetTokens, "target-tokens", config.DefaultCurveTargetTokens, "tokens sold at graduation")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&ticker, "ticker", "", "display ticker")
	cmd.Flags().StringVar(&metadataURI, "metadata-uri", "", "off-chain metadata URI")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("total-supply")
	return cmd
}
