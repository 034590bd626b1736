package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainbank_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainbank_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChainTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainbank_chain_transactions_total",
			Help: "Total number of transactions submitted to the chain",
		},
		[]string{"operation", "status"},
	)

	ChainReceiptWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainbank_chain_receipt_wait_seconds",
			Help:    "Time spent waiting for transaction receipts",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 180, 300},
		},
		[]string{"operation"},
	)

	UsersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chainbank_users_registered_total",
		Help: "Total number of successful user registrations",
	})

	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainbank_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
		[]string{"reason"},
	)
)
