// Package metrics exposes the engine's Prometheus collectors. The
// monitor command serves them when a listen address is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_entries_total",
			Help: "Positions opened, by strategy.",
		},
		[]string{"strategy"},
	)

	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_exits_total",
			Help: "Positions closed, by strategy and exit reason.",
		},
		[]string{"strategy", "reason"},
	)

	EntriesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_entries_rejected_total",
			Help: "Entry candidates denied by portfolio limits, by rejection code.",
		},
		[]string{"strategy", "code"},
	)

	BreakerAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_breaker_alerts_total",
			Help: "Circuit breaker alert-band notifications sent.",
		},
		[]string{"strategy"},
	)

	BreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingtrader_breaker_trips_total",
			Help: "Forced circuit breaker exits.",
		},
		[]string{"strategy"},
	)

	OpenPositions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swingtrader_positions_open",
			Help: "Open positions per strategy.",
		},
		[]string{"strategy"},
	)

	AvailableCash = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swingtrader_available_cash",
			Help: "Deployable capital per strategy.",
		},
		[]string{"strategy"},
	)

	DeployedCapital = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swingtrader_deployed_capital",
			Help: "Capital locked in open positions per strategy.",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(
		EntriesTotal, ExitsTotal, EntriesRejected,
		BreakerAlerts, BreakerTrips,
		OpenPositions, AvailableCash, DeployedCapital,
	)
}
