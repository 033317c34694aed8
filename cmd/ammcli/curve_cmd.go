package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/types"
)

func newCurveCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Trade against an active bonding curve",
	}
	cmd.AddCommand(newCurveBuyCmd(opts), newCurveSellCmd(opts))
	return cmd
}

func newCurveBuyCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr string
		amountIn           uint64
		now                int64
	)
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Spend BASE to buy tokens off the curve (may trigger graduation)",
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

			res, err := deps.engine.SwapOnCurve(types.SwapOnCurveArgs{
				Caller: caller, Mint: mint, AmountIn: amountIn, InputIsBase: true,
			}, nowOrFlag(now))
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bought %d tokens (refund=%d) graduated=%v\n", res.AmountOut, res.Refund, res.Graduated)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "buyer pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&amountIn, "amount-in", 0, "BASE amount in (raw units)")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount-in")
	return cmd
}

func newCurveSellCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr string
		amountIn           uint64
		now                int64
	)
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell tokens back to the curve for BASE",
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

			res, err := deps.engine.SwapOnCurve(types.SwapOnCurveArgs{
				Caller: caller, Mint: mint, AmountIn: amountIn, InputIsBase: false,
			}, nowOrFlag(now))
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sold for %d BASE\n", res.AmountOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "seller pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&amountIn, "amount-in", 0, "token amount in (raw units)")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount-in")
	return cmd
}
