package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/pool"
	"github.com/ninja0404/ammcore/pkg/quote"
	"github.com/ninja0404/ammcore/pkg/types"
)

func newInspectCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dump pool, bonding curve, or position state from the snapshot file",
	}
	cmd.AddCommand(newInspectPoolCmd(opts), newInspectCurveCmd(opts), newInspectPositionCmd(opts))
	return cmd
}

func newInspectPoolCmd(opts *globalOpts) *cobra.Command {
	var mintStr string
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Show a live pool's reserves, funding state, and EMA",
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
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status=%s\n", p.Status)
			fmt.Fprintf(out, "sol_reserve=%s token_reserve=%s\n",
				quote.FormatAmount(p.SolReserve, 9), quote.FormatAmount(p.TokenReserve, 6))
			fmt.Fprintf(out, "effective_sol_reserve=%s effective_token_reserve=%s\n",
				quote.FormatAmount(p.EffectiveSolReserve, 9), quote.FormatAmount(p.EffectiveTokenReserve, 6))
			if p.Status == types.PoolLive {
				spot, err := pool.SpotPrice(p)
				if err == nil {
					fmt.Fprintf(out, "spot_price=%s\n", quote.FormatPriceQ(spot))
				}
			}
			fmt.Fprintf(out, "total_delta_k_longs=%s total_delta_k_shorts=%s cumulative_funding_acc=%s\n",
				p.TotalDeltaKLongs.String(), p.TotalDeltaKShorts.String(), quote.FormatPriceQ(p.CumulativeFundingAcc))
			fmt.Fprintf(out, "ema_price=%s ema_initialized=%v last_updated=%d\n",
				quote.FormatPriceQ(p.EmaPrice), p.EmaInitialized, p.LastUpdatedTimestamp)
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	_ = cmd.MarkFlagRequired("mint")
	return cmd
}

func newInspectCurveCmd(opts *globalOpts) *cobra.Command {
	var mintStr string
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Show a bonding curve's fill progress",
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
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status=%s slope_m=%d\n", c.Status, c.SlopeM)
			fmt.Fprintf(out, "tokens_sold=%s / target_tokens=%s\n",
				quote.FormatAmount(c.TokensSold, 6), quote.FormatAmount(c.TargetTokens, 6))
			fmt.Fprintf(out, "base_raised=%s / target_base=%s\n",
				quote.FormatAmount(c.BaseRaised, 9), quote.FormatAmount(c.TargetBase, 9))
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	_ = cmd.MarkFlagRequired("mint")
	return cmd
}

func newInspectPositionCmd(opts *globalOpts) *cobra.Command {
	var mintStr, ownerStr string
	var nonce uint64
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show an open leveraged position",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newBuilder(cmd, opts)
			if err != nil {
				return err
			}
			mint, err := parsePubkey("mint", mintStr)
			if err != nil {
				return err
			}
			owner, err := parsePubkey("owner", ownerStr)
			if err != nil {
				return err
			}
			pos := deps.store.GetPosition(types.PositionKey{Pool: mint, Owner: owner, Nonce: nonce})
			if pos == nil {
				return types.ErrPositionNotFound
			}
			p := deps.store.GetPool(mint)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "is_long=%v collateral=%s size=%s delta_k=%s\n",
				pos.IsLong, quote.FormatAmount(pos.Collateral, 9), quote.FormatAmount(pos.Size, 6), pos.DeltaK.String())
			fmt.Fprintf(out, "entry_funding_accumulator=%s\n", quote.FormatPriceQ(pos.EntryFundingAccumulator))
			if p != nil {
				remaining := pool.RemainingFactor(p.CumulativeFundingAcc, pos.EntryFundingAccumulator)
				fmt.Fprintf(out, "remaining_factor=%s\n", quote.FormatPriceQ(remaining))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "position owner pubkey")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "position nonce")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
