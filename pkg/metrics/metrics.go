package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardDecisions counts route-guard outcomes per guard variant.
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flow_console",
		Subsystem: "scope",
		Name:      "guard_decisions_total",
		Help:      "Route guard decisions by guard variant and outcome.",
	}, []string{"guard", "decision"})

	// LoaderRetries counts timer-driven company list reload attempts.
	LoaderRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flow_console",
		Subsystem: "scope",
		Name:      "loader_retries_total",
		Help:      "Company list loader retry attempts.",
	})

	// LoaderDegraded is 1 while consumers see the fallback company list.
	LoaderDegraded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flow_console",
		Subsystem: "scope",
		Name:      "loader_degraded",
		Help:      "Whether the company list loader is serving fallback data.",
	})
)
