package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_assistant_turns_total",
		Help: "Completed turns by outcome (answered, fallback, cancelled)",
	}, []string{"outcome"})

	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_assistant_turn_duration_seconds",
		Help:    "End to end turn latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})

	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_assistant_decisions_total",
		Help: "Decider outcomes (answer, invoke, malformed, error)",
	}, []string{"outcome"})

	decisionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stock_assistant_decision_latency_seconds",
		Help:    "Oracle decision latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_assistant_tool_invocations_total",
		Help: "Tool invocations by tool name and status",
	}, []string{"tool", "status"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_assistant_tool_latency_seconds",
		Help:    "Single tool attempt latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	}, []string{"tool"})

	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_assistant_retry_attempts_total",
		Help: "Retry attempts beyond the first, per tool",
	}, []string{"tool"})

	memoryPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_assistant_memory_persist_failures_total",
		Help: "Transcript persistence failures (non fatal to the turn)",
	})
)

func RecordTurn(outcome string, duration time.Duration) {
	turnsTotal.WithLabelValues(outcome).Inc()
	turnDuration.Observe(duration.Seconds())
}

func RecordDecision(outcome string, duration time.Duration) {
	decisionsTotal.WithLabelValues(outcome).Inc()
	decisionLatency.Observe(duration.Seconds())
}

func RecordToolAttempt(tool, status string, duration time.Duration) {
	toolInvocations.WithLabelValues(tool, status).Inc()
	toolLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordRetry(tool string) {
	retryAttempts.WithLabelValues(tool).Inc()
}

func RecordMemoryPersistFailure() {
	memoryPersistFailures.Inc()
}
