package config

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/ninja0404/ammcore/pkg/fixedpoint"
)

// DefaultCurveTargetBase and DefaultCurveTargetTokens are the default
// bonding-curve targets (spec §6): 200 BASE units / 280M tokens, token
// decimals = 6.
const (
	DefaultCurveTargetBase   uint64 = 200_000_000_000     // 200 * 1e9
	DefaultCurveTargetTokens uint64 = 280_000_000_000_000 // 280,000,000 * 1e6
)

// EMAHalfLife is the EMA's half-life, in seconds (spec §4.C).
const EMAHalfLife int64 = 300

// RateLimitConfig throttles the number of commands accepted per pool per
// second, standing in for "single-threaded, transactional execution"
// (spec §5) in a process that may receive concurrent calls for the same
// pool.
type RateLimitConfig struct {
	CommandsPerSecond float64
	Burst             int
}

// EngineConfig aggregates the runtime-tunable parameters of a pool at
// launch time (spec §6 "Configuration") plus the ambient logging and
// rate-limit settings every command path depends on.
type EngineConfig struct {
	// FundingConstantC is the default funding coefficient (Q-format,
	// spec §3/§6), applied unless a launch call overrides it.
	FundingConstantC uint64

	// LiquidationDivergenceThresholdPct is the default EMA/spot
	// divergence gate, expressed in percent (spec §3/§6 uses "percent,
	// default 10").
	LiquidationDivergenceThresholdPct uint64

	// TokenDecimals / BaseDecimals document the smallest-unit scale used
	// throughout spec §8's worked scenarios (token: 1e6, BASE: 1e9).
	TokenDecimals uint8
	BaseDecimals  uint8

	RateLimit RateLimitConfig
	Logger    zerolog.Logger
}

// DefaultEngineConfig yields the defaults named in spec §6:
// funding_constant_c = PRECISION / 10_000 (1e-4 per second at full
// leverage), liquidation_divergence_threshold = 10 percent.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FundingConstantC:                   fixedpoint.Precision / 10_000,
		LiquidationDivergenceThresholdPct:  10,
		TokenDecimals:                      6,
		BaseDecimals:                       9,
		RateLimit: RateLimitConfig{
			CommandsPerSecond: 50,
			Burst:             100,
		},
		Logger: zerolog.New(io.Discard),
	}
}
