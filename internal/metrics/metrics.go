// Package metrics collects the relay's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the relay.
type Metrics struct {
	// Connection / presence metrics
	Connections     prometheus.Gauge
	RegisteredNames prometheus.Gauge
	ActiveCalls     prometheus.Gauge

	// Recognition session metrics
	SessionsStarted prometheus.Counter
	SessionsRenewed prometheus.Counter
	SessionsFailed  prometheus.Counter
	SessionsActive  prometheus.Gauge

	// Caption / translation metrics
	CaptionsEmitted     prometheus.Counter
	TranslationCalls    prometheus.Counter
	TranslationFailures prometheus.Counter
}

var (
	once   sync.Once
	shared *Metrics
)

// New returns the process-wide metrics set. Collectors register against the
// default registry exactly once, so repeated calls are safe.
func New() *Metrics {
	once.Do(func() {
		shared = &Metrics{
			Connections: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "parley_connections",
				Help: "Current number of live client connections",
			}),
			RegisteredNames: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "parley_registered_names",
				Help: "Current number of registered display names",
			}),
			ActiveCalls: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "parley_active_calls",
				Help: "Current number of paired calls",
			}),
			SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_stt_sessions_started_total",
				Help: "Total number of recognition sessions opened",
			}),
			SessionsRenewed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_stt_sessions_renewed_total",
				Help: "Total number of sessions rotated at the renewal deadline",
			}),
			SessionsFailed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_stt_sessions_failed_total",
				Help: "Total number of sessions torn down by a provider error",
			}),
			SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "parley_stt_sessions_active",
				Help: "Current number of live recognition sessions",
			}),
			CaptionsEmitted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_captions_emitted_total",
				Help: "Total number of caption events routed",
			}),
			TranslationCalls: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_translation_calls_total",
				Help: "Total number of translation provider calls",
			}),
			TranslationFailures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "parley_translation_failures_total",
				Help: "Total number of failed translation calls",
			}),
		}
	})
	return shared
}
