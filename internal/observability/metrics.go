package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	connects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetlink",
			Subsystem: "client",
			Name:      "connects_total",
			Help:      "Connection attempts by outcome.",
		},
		[]string{"outcome"},
	)
	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetlink",
			Subsystem: "client",
			Name:      "exchanges_total",
			Help:      "Protocol exchanges by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "assetlink",
			Subsystem: "client",
			Name:      "exchange_duration_seconds",
			Help:      "Round-trip duration of one protocol exchange.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assetlink",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(connects, exchanges, exchangeDuration, httpRequests)
	})
}

func RecordConnect(outcome string) {
	RegisterMetrics()
	connects.WithLabelValues(outcome).Inc()
}

func RecordExchange(operation, outcome string, duration time.Duration) {
	RegisterMetrics()
	exchanges.WithLabelValues(operation, outcome).Inc()
	exchangeDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int) {
	RegisterMetrics()
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
