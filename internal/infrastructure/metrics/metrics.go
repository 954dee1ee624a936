package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "transferledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransfersTotal       *prometheus.CounterVec
	TransferDuration     *prometheus.HistogramVec
	TransferAmount       prometheus.Histogram
	BalanceQueries       *prometheus.CounterVec
	BalanceQueryDuration prometheus.Histogram

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	HTTPInFlight     prometheus.Gauge
	RateLimitHits    prometheus.Counter
	IdempotentReplay prometheus.Counter
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer attempts by outcome",
			},
			[]string{"outcome"},
		),
		TransferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Duration of transfer operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_amount",
			Help:      "Amounts of successful transfers",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		BalanceQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_queries_total",
				Help:      "Total number of balance queries by outcome",
			},
			[]string{"outcome"},
		),
		BalanceQueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_query_duration_seconds",
			Help:      "Duration of balance queries",
			Buckets:   prometheus.DefBuckets,
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		IdempotentReplay: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency store",
		}),
	}
}

// RecordTransfer implements usecase.MetricsRecorder.
func (m *Metrics) RecordTransfer(outcome string, amount decimal.Decimal, elapsed time.Duration) {
	m.TransfersTotal.WithLabelValues(outcome).Inc()
	m.TransferDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if outcome == "success" {
		m.TransferAmount.Observe(amount.InexactFloat64())
	}
}

// RecordBalanceQuery implements usecase.MetricsRecorder.
func (m *Metrics) RecordBalanceQuery(outcome string, elapsed time.Duration) {
	m.BalanceQueries.WithLabelValues(outcome).Inc()
	m.BalanceQueryDuration.Observe(elapsed.Seconds())
}
