package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/quote"
	"github.com/ninja0404/ammcore/pkg/types"
)

// newQuoteCmd groups the read-only preview subcommands backed by
// pkg/quote, the CLI analogue of the teacher's --preview flag: instead of
// printing the accounts a transaction would touch, these print the
// numbers a command would settle without ever calling into the engine.
func newQuoteCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Preview a swap, curve buy, or leveraged open without committing it",
	}
	cmd.AddCommand(newQuoteSwapCmd(opts), newQuoteCurveCmd(opts), newQuoteOpenCmd(opts))
	return cmd
}

func newQuoteSwapCmd(opts *globalOpts) *cobra.Command {
	var (
		mintStr     string
		amountIn    uint64
		slippageBps uint64
		sellTokens  bool
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Preview a live-pool spot swap",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}
			p := deps.store.GetPool(mint)
			if p == nil {
				return types.ErrPoolNotFound
			}
			q, err := quote.Swap(p, amountIn, !sellTokens, slippageBps)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "expected_out=%d min_out=%d\n", q.ExpectedOut, q.MinOut)
			fmt.Fprintf(out, "spot_price=%s execution_price=%s price_impact=%s\n",
				quote.FormatPriceQ(q.SpotPrice), quote.FormatPriceQ(q.ExecutionPrice), quote.FormatBps(q.PriceImpactBps))
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&amountIn, "amount-in", 0, "amount in (raw units)")
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 100, "slippage tolerance in basis points")
	cmd.Flags().BoolVar(&sellTokens, "sell-tokens", false, "quote selling tokens for BASE instead of buying")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount-in")
	return cmd
}

func newQuoteCurveCmd(opts *globalOpts) *cobra.Command {
	var (
		mintStr string
		baseIn  uint64
	)
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Preview a bonding-curve buy",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}
			c := deps.store.GetBondingCurve(mint)
			if c == nil {
				return types.ErrBondingCurveNotFound
			}
			q, err := quote.Curve(c, baseIn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tokens_out=%d will_graduate=%v remaining_room=%d\n", q.TokensOut, q.WillGraduate, q.RemainingRoom)
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&baseIn, "base-in", 0, "BASE amount in (raw units)")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("base-in")
	return cmd
}

func newQuoteOpenCmd(opts *globalOpts) *cobra.Command {
	var (
		mintStr        string
		collateral     uint64
		leverageTenths uint64
		isShort        bool
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Preview a leveraged position's entry notional and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}
			p := deps.store.GetPool(mint)
			if p == nil {
				return types.ErrPoolNotFound
			}
			q, err := quote.Open(p, collateral, leverageTenths, !isShort)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "notional=%d size=%d\n", q.Notional, q.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&collateral, "collateral", 0, "collateral to post (raw BASE units)")
	cmd.Flags().Uint64Var(&leverageTenths, "leverage-tenths", 10, "leverage in tenths (50 = 5.0x)")
	cmd.Flags().BoolVar(&isShort, "short", false, "preview a short instead of a long")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("collateral")
	return cmd
}
