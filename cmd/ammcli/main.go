// Command ammcli drives pkg/engine end-to-end for manual testing and
// scripting, the way the teacher's cmd/cli drives pump-go-sdk's RPC
// builder: a cobra root command, a globalOpts struct bound to persistent
// flags, and one newXCmd(opts) per subcommand.
//
// The engine itself is an in-memory façade with no chain underneath it,
// so unlike the teacher's CLI (which reads current state from RPC on
// every invocation) ammcli persists its store to a JSON snapshot file
// between runs (see pkg/store.SaveFile/LoadFile) so "launch then buy then
// inspect" works as a sequence of separate process invocations.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/ammcore/pkg/config"
	"github.com/ninja0404/ammcore/pkg/engine"
	"github.com/ninja0404/ammcore/pkg/events"
	"github.com/ninja0404/ammcore/pkg/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOpts mirrors the teacher's globalOpts: one struct of persistent
// flags, threaded into every subcommand instead of a package-level
// global.
type globalOpts struct {
	logLevel       string
	stateFile      string
	rateLimitCPS   float64
	rateLimitBurst int
	fundingC       uint64
	liqThreshold   uint64
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "ammcli",
		Short: "Leveraged AMM engine CLI (launch, trade, inspect)",
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&opts.stateFile, "state-file", "ammcore-state.json", "path to the JSON state snapshot shared across invocations")
	root.PersistentFlags().Float64Var(&opts.rateLimitCPS, "rate-limit-cps", 50, "per-pool commands-per-second limit")
	root.PersistentFlags().IntVar(&opts.rateLimitBurst, "rate-limit-burst", 100, "per-pool rate limiter burst")
	root.PersistentFlags().Uint64Var(&opts.fundingC, "funding-c", 0, "override funding_constant_c (Q-format, 0 keeps the default)")
	root.PersistentFlags().Uint64Var(&opts.liqThreshold, "liq-threshold-pct", 0, "override liquidation divergence threshold percent (0 keeps the default)")

	root.AddCommand(
		newConfigCmd(),
		newLaunchCmd(opts),
		newCurveCmd(opts),
		newSwapCmd(opts),
		newOpenCmd(opts),
		newCloseCmd(opts),
		newLiquidateCmd(opts),
		newInspectCmd(opts),
		newQuoteCmd(opts),
		newServeMetricsCmd(opts),
	)

	return root
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show default engine config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultEngineConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "funding_constant_c=%d\nliquidation_divergence_threshold_pct=%d\ntoken_decimals=%d\nbase_decimals=%d\nrate_limit_cps=%.2f\nrate_limit_burst=%d\n",
				cfg.FundingConstantC, cfg.LiquidationDivergenceThresholdPct, cfg.TokenDecimals, cfg.BaseDecimals,
				cfg.RateLimit.CommandsPerSecond, cfg.RateLimit.Burst)
			return nil
		},
	}
}

// appDeps bundles the constructed engine and its backing store, the
// ammcli analogue of the teacher's runtimeDeps{builder, signer, rpc}.
type appDeps struct {
	engine *engine.Engine
	store  *store.Store
	log    zerolog.Logger
}

// newBuilder loads the state file (if any), builds an Engine over it, and
// returns deps the command can act against. Commands that mutate state
// call deps.save() before returning success.
func newBuilder(cmd *cobra.Command, opts *globalOpts) (*appDeps, error) {
	log := zerolog.New(cmd.ErrOrStderr()).Level(parseLogLevel(opts.logLevel)).With().Timestamp().Logger()

	st := store.New()
	if err := st.LoadFile(opts.stateFile); err != nil {
		return nil, fmt.Errorf("load state file %s: %w", opts.stateFile, err)
	}

	cfg := config.DefaultEngineConfig()
	cfg.Logger = log
	if opts.rateLimitCPS > 0 {
		cfg.RateLimit.CommandsPerSecond = opts.rateLimitCPS
	}
	if opts.rateLimitBurst > 0 {
		cfg.RateLimit.Burst = opts.rateLimitBurst
	}
	if opts.fundingC > 0 {
		cfg.FundingConstantC = opts.fundingC
	}
	if opts.liqThreshold > 0 {
		cfg.LiquidationDivergenceThresholdPct = opts.liqThreshold
	}

	eng, err := engine.New(st, cfg, events.NewLoggingSink(log))
	if err != nil {
		return nil, err
	}

	return &appDeps{engine: eng, store: st, log: log}, nil
}

// save persists the current store back to the state file, the CLI's
// stand-in for the commit a real validator would perform automatically.
func (d *appDeps) save(opts *globalOpts) error {
	if err := d.store.SaveFile(opts.stateFile); err != nil {
		return fmt.Errorf("save state file %s: %w", opts.stateFile, err)
	}
	return nil
}

func parseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
