package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every platform metric.
const namespace = "resourcekit"

// Metrics contains all platform-level metrics (not service-specific).
type Metrics struct {
	// Dispatch metrics
	DispatchRequests *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	SessionRetries   prometheus.Counter

	// Discovery metrics
	DiscoveryLookups *prometheus.CounterVec

	// Communicator pool metrics
	Communications      prometheus.Counter
	CommunicatorDropped prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DispatchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "requests_total",
				Help:      "Total inter-resource requests by transport, action and outcome status",
			},
			[]string{"transport", "action", "status"},
		),

		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "request_duration_seconds",
				Help:      "Inter-resource request duration by transport and action",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport", "action"},
		),

		SessionRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatch",
				Name:      "session_retries_total",
				Help:      "Total automatic session reacquisition retries",
			},
		),

		DiscoveryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "discovery",
				Name:      "lookups_total",
				Help:      "Total discovery resolutions by result kind",
			},
			[]string{"kind"},
		),

		Communications: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "communicator",
				Name:      "communications_total",
				Help:      "Total payloads fanned out through the communicator pool",
			},
		),

		CommunicatorDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "communicator",
				Name:      "dropped_total",
				Help:      "Total payloads dropped because a slow communicator queue was full",
			},
		),
	}
}

// collectors returns every core metric for bulk registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DispatchRequests,
		m.DispatchDuration,
		m.SessionRetries,
		m.DiscoveryLookups,
		m.Communications,
		m.CommunicatorDropped,
	}
}
