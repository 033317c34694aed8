package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/types"
)

func newOpenCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr string
		collateral         uint64
		leverageTenths     uint64
		isShort            bool
		minSizeOut         uint64
		nonce              uint64
		now                int64
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a leveraged long or short position (leverage_swap)",
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

			pos, err := deps.engine.LeverageSwap(types.LeverageSwapArgs{
				Caller: caller, Mint: mint, Collateral: collateral, IsLong: !isShort,
				LeverageTenths: leverageTenths, MinSizeOut: minSizeOut, Nonce: nonce, Now: nowOrFlag(now),
			})
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "position opened: nonce=%d is_long=%v size=%d delta_k=%s\n", pos.Nonce, pos.IsLong, pos.Size, pos.DeltaK.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "opening trader pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().Uint64Var(&collateral, "collateral", 0, "collateral posted (raw BASE units)")
	cmd.Flags().Uint64Var(&leverageTenths, "leverage-tenths", 10, "leverage in tenths (50 = 5.0x)")
	cmd.Flags().BoolVar(&isShort, "short", false, "open a short instead of a long")
	cmd.Flags().Uint64Var(&minSizeOut, "min-size-out", 1, "minimum acceptable position size")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "caller-chosen position nonce")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("collateral")
	return cmd
}

func newCloseCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr, ownerStr string
		nonce                        uint64
		now                          int64
	)
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a leveraged position and settle its payout",
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
			owner := caller
			if ownerStr != "" {
				owner, err = parsePubkey("owner", ownerStr)
				if err != nil {
					return err
				}
			}

			payout, err := deps.engine.ClosePosition(types.ClosePositionArgs{
				Caller: caller, Mint: mint, Owner: owner, Nonce: nonce, Now: nowOrFlag(now),
			})
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "position closed: payout=%d\n", payout)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "caller pubkey (must be the position authority)")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "position owner pubkey (defaults to --caller)")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "position nonce")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	return cmd
}

func newLiquidateCmd(opts *globalOpts) *cobra.Command {
	var (
		callerStr, mintStr, ownerStr string
		nonce                        uint64
		now                          int64
	)
	cmd := &cobra.Command{
		Use:   "liquidate",
		Short: "Liquidate a position within 5% of wipeout and claim the keeper reward",
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
			owner, err := parsePubkey("owner", ownerStr)
			if err != nil {
				return err
			}

			reward, err := deps.engine.Liquidate(types.LiquidateArgs{
				Caller: caller, Mint: mint, Owner: owner, Nonce: nonce, Now: nowOrFlag(now),
			})
			if err != nil {
				return err
			}
			if err := deps.save(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "position liquidated: keeper_reward=%d\n", reward)
			return nil
		},
	}
	cmd.Flags().StringVar(&callerStr, "caller", "", "liquidator (keeper) pubkey")
	cmd.Flags().StringVar(&mintStr, "mint", "", "token mint pubkey")
	cmd.Flags().StringVar(&ownerStr, "owner", "", "position owner pubkey")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "position nonce")
	cmd.Flags().Int64Var(&now, "now", 0, "unix timestamp override (defaults to wall clock)")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
