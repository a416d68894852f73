package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	tokensCredited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airdrop",
			Subsystem: "ledger",
			Name:      "tokens_credited_total",
			Help:      "Tokens credited to accounts, by reward category.",
		},
		[]string{"category"},
	)

	rewardEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airdrop",
			Subsystem: "ledger",
			Name:      "reward_events_total",
			Help:      "Reward events committed, by category.",
		},
		[]string{"category"},
	)

	ledgerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airdrop",
			Subsystem: "ledger",
			Name:      "failures_total",
			Help:      "Rejected ledger operations, by operation and failure kind.",
		},
		[]string{"operation", "kind"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airdrop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "airdrop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airdrop",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Telegram updates processed, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		tokensCredited,
		rewardEvents,
		ledgerFailures,
		httpRequests,
		httpDuration,
		botUpdates,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordCredit(category string, amount int64) {
	rewardEvents.WithLabelValues(category).Inc()
	tokensCredited.WithLabelValues(category).Add(float64(amount))
}

func RecordFailure(operation, kind string) {
	ledgerFailures.WithLabelValues(operation, kind).Inc()
}

func RecordHTTPRequest(method, route string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordBotUpdate(kind, outcome string) {
	botUpdates.WithLabelValues(kind, outcome).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
