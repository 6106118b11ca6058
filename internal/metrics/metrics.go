// Package metrics exposes Prometheus instrumentation for the arena.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects arena counters on its own registry. A nil *Metrics is
// valid and records nothing, so callers never branch on whether metrics
// are enabled.
type Metrics struct {
	registry *prometheus.Registry

	roundsTotal    prometheus.Counter
	noWinnerRounds prometheus.Counter
	roundDuration  prometheus.Histogram

	signalsTotal     *prometheus.CounterVec
	winsTotal        *prometheus.CounterVec
	outcomesTotal    *prometheus.CounterVec
	cumulativePnL    *prometheus.GaugeVec
	explainFallbacks prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		roundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "rounds_total",
			Help:      "Battle rounds completed",
		}),
		noWinnerRounds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "no_winner_rounds_total",
			Help:      "Rounds that produced no actionable signal",
		}),
		roundDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arena",
			Name:      "round_duration_seconds",
			Help:      "Round evaluation and selection latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
		signalsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "signals_total",
			Help:      "Signals emitted per agent and action",
		}, []string{"agent", "action"}),
		winsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "wins_total",
			Help:      "Round wins per agent",
		}, []string{"agent"}),
		outcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "outcomes_total",
			Help:      "Trade outcomes recorded per agent",
		}, []string{"agent"}),
		cumulativePnL: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "arena",
			Name:      "cumulative_pnl",
			Help:      "Cumulative realized pnl per agent",
		}, []string{"agent"}),
		explainFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "explain_fallbacks_total",
			Help:      "Explanations served by the deterministic fallback",
		}),
	}
}

// Serve exposes /metrics on addr in a background goroutine.
func (m *Metrics) Serve(addr string) {
	if m == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}

func (m *Metrics) RoundCompleted(hasWinner bool, seconds float64) {
	if m == nil {
		return
	}
	m.roundsTotal.Inc()
	if !hasWinner {
		m.noWinnerRounds.Inc()
	}
	m.roundDuration.Observe(seconds)
}

func (m *Metrics) SignalEmitted(agent, action string) {
	if m == nil {
		return
	}
	m.signalsTotal.WithLabelValues(agent, action).Inc()
}

func (m *Metrics) WinRecorded(agent string) {
	if m == nil {
		return
	}
	m.winsTotal.WithLabelValues(agent).Inc()
}

func (m *Metrics) OutcomeRecorded(agent string, cumulativePnL float64) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(agent).Inc()
	m.cumulativePnL.WithLabelValues(agent).Set(cumulativePnL)
}

func (m *Metrics) ExplainFallback() {
	if m == nil {
		return
	}
	m.explainFallbacks.Inc()
}
