package events

import "github.com/rs/zerolog"

// Sink receives events emitted by committed commands.
type Sink interface {
	Emit(Event)
}

// NopSink discards every event. It is the default when no sink is wired,
// matching how the teacher SDK defaults loggers to zerolog.Nop().
type NopSink struct{}

func (NopSink) Emit(Event) {}

// loggingSink renders events as structured zerolog entries, one field
// per exported struct field, reusing the %+v-free, explicit-field style
// the teacher's rpc.Client uses for its retry logs.
type loggingSink struct {
	log zerolog.Logger
}

// NewLoggingSink builds a Sink that writes each event as a structured
// log line under the "event" field.
func NewLoggingSink(log zerolog.Logger) Sink {
	return loggingSink{log: log}
}

func (s loggingSink) Emit(e Event) {
	switch ev := e.(type) {
	case BondingCurveLaunched:
		s.log.Info().Str("event", ev.Kind()).Str("mint", ev.Mint.String()).
			Uint64("target_base", ev.TargetBase).Uint64("target_tokens", ev.TargetTokens).
			Uint64("slope_m", ev.SlopeM).Msg("bonding curve launched")
	case BondingCurveSwapped:
		s.log.Info().Str("event", ev.Kind()).Str("mint", ev.Mint.String()).
			Bool("is_buy", ev.IsBuy).Uint64("in", ev.In).Uint64("out", ev.Out).
			Uint64("tokens_sold_after", ev.TokensSoldAfter).Uint64("base_raised_after", ev.BaseRaisedAfter).
			Msg("bonding curve swapped")
	case BondingCurveGraduated:
		s.log.Info().Str("event", ev.Kind()).Str("mint", ev.Mint.String()).
			Uint64("base_raised_final", ev.BaseRaisedFinal).Uint64("lp_tokens", ev.LPTokens).
			Msg("bonding curve graduated")
	case PoolLaunched:
		s.log.Info().Str("event", ev.Kind()).Str("mint", ev.Mint.String()).
			Uint64("initial_base", ev.InitialBase).Msg("pool launched")
	case Swapped:
		s.log.Info().Str("event", ev.Kind()).Str("mint", ev.Mint.String()).
			Uint64("in", ev.In).Uint64("out", ev.Out).Bool("input_is_base", ev.InputIsBase).
			Msg("swapped")
	case PositionOpened:
		s.log.Info().Str("event", ev.Kind()).Str("position", ev.PositionID.String()).
			Bool("is_long", ev.IsLong).Uint64("collateral", ev.Collateral).
			Uint64("size", ev.Size).Str("delta_k", ev.DeltaK.String()).Msg("position opened")
	case PositionClosed:
		s.log.Info().Str("event", ev.Kind()).Str("position", ev.PositionID.String()).
			Uint64("payout", ev.Payout).Msg("position closed")
	case PositionLiquidated:
		s.log.Info().Str("event", ev.Kind()).Str("position", ev.PositionID.String()).
			Str("liquidator", ev.Liquidator.String()).Uint64("reward", ev.Reward).
			Msg("position liquidated")
	default:
		s.log.Warn().Str("event", e.Kind()).Msg("unrecognized event")
	}
}

// RecordingSink accumulates events in-process, for tests.
type RecordingSink struct {
	Events []Event
}

// NewRecordingSink builds an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Emit(e Event) {
	s.Events = append(s.Events, e)
}
