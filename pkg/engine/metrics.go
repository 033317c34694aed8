package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ninja0404/ammcore/pkg/store"
)

// Metrics mirror the chidi150c-coinbase bot's global CounterVec/GaugeVec
// style: package-level collectors registered once in init() and served by
// cmd/ammcli's serve-metrics subcommand via promhttp.Handler().
var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ammcore_commands_total",
			Help: "Commands processed, by command name and outcome.",
		},
		[]string{"command", "outcome"},
	)

	fundingAccumulator = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ammcore_cumulative_funding_accumulator",
			Help: "Current cumulative_funding_accumulator per pool, Q-format.",
		},
		[]string{"mint"},
	)

	openInterestDeltaK = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ammcore_total_delta_k",
			Help: "Total delta_k debt outstanding per pool and side.",
		},
		[]string{"mint", "side"},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(fundingAccumulator, openInterestDeltaK)
}

func observeCommand(name string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	commandsTotal.WithLabelValues(name, outcome).Inc()
}

func observePoolGauges(mint string, p *store.Pool) {
	fundingAccumulator.WithLabelValues(mint).Set(float64(p.CumulativeFundingAcc))
	openInterestDeltaK.WithLabelValues(mint, "long").Set(p.TotalDeltaKLongs.Float64())
	openInterestDeltaK.WithLabelValues(mint, "short").Set(p.TotalDeltaKShorts.Float64())
}
