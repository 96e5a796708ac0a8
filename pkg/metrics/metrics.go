// Package metrics exposes browserd's Prometheus metrics.
//
// Tracked:
//   - tool invocations by tool and outcome, with latency
//   - failures by fault kind
//   - browser launches by kind and the number of live sessions
//
// All recording methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "browserd"

// Metrics holds browserd's collectors.
type Metrics struct {
	// ToolCalls counts tool invocations.
	// Labels: tool, outcome (success|failure)
	ToolCalls *prometheus.CounterVec

	// ToolDuration measures tool latency in seconds, element waits included.
	// Labels: tool
	ToolDuration *prometheus.HistogramVec

	// Faults counts failed operations.
	// Labels: kind
	Faults *prometheus.CounterVec

	// Launches counts browser launch attempts.
	// Labels: kind, outcome (success|failure)
	Launches *prometheus.CounterVec

	// ActiveSessions is the number of open browser sessions
	ActiveSessions prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),

		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Duration of tool calls in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"tool"},
		),

		Faults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "faults_total",
				Help:      "Total number of failed operations by fault kind",
			},
			[]string{"kind"},
		),

		Launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_launches_total",
				Help:      "Total number of browser launches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Current number of open browser sessions",
			},
		),

		gatherer: reg,
	}
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool string, failed bool, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome(failed)).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(durationSeconds)
}

// RecordFault counts a failure of the given kind.
func (m *Metrics) RecordFault(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.Faults.WithLabelValues(kind).Inc()
}

// RecordLaunch counts a browser launch attempt.
func (m *Metrics) RecordLaunch(kind string, failed bool) {
	if m == nil {
		return
	}
	m.Launches.WithLabelValues(kind, outcome(failed)).Inc()
}

// SetActiveSessions updates the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(failed bool) string {
	if failed {
		return "failure"
	}
	return "success"
}
