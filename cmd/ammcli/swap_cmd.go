package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/types"
)

func newSwapCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr string
		amountIn           uint64
		minAmountOut       uint64
		sellTokens         bool
		now                int64
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Spot-swap against a live pool's constant-product reserves",
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

			out, err := deps.engine.Swap(types.SwapArgs{
				Caller: caller, Mint: mint, AmountIn: amountIn, MinAmountOut: minAmountOut,
				InputIsBase: !sellTokens, Now: nowOrFlag(now),
			})
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "swapped for %d\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "trader pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&amountIn, "amount-in", 0, "amount in (raw units)")
	cmd.Flags().Uint64Var(&minAmountOut, "min-amount-out", 1, "minimum acceptable amount out")
	cmd.Flags().BoolVar(&sellTokens, "sell-tokens", false, "sell tokens for BASE instead of buying tokens with BASE")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount-in")
	return cmd
}
