package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerDuration   *prometheus.HistogramVec
	CreditedAmount   *prometheus.HistogramVec

	// Account and rate metrics
	AccountsOpened *prometheus.CounterVec
	RateUpdates    *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailed    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Storage metrics
	StorageRetries *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_ledger_operations_total",
				Help: "Ledger operations by type and outcome",
			},
			[]string{"operation", "outcome"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxledger_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CreditedAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxledger_credited_amount",
				Help:    "Amounts credited by ledger operations, in the destination currency",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation", "currency"},
		),

		AccountsOpened: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_accounts_opened_total",
				Help: "Total number of accounts opened",
			},
			[]string{"currency"},
		),
		RateUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_rate_updates_total",
				Help: "Total number of exchange rate updates",
			},
			[]string{"currency"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxledger_outbox_failed_total",
			Help: "Total outbox events that failed to publish",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		StorageRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_storage_retries_total",
				Help: "Storage operations retried after a transient failure",
			},
			[]string{"operation"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}

// ObserveCredited records a credited amount in the CreditedAmount histogram.
// Prometheus samples are float64, so the value is approximate. It feeds
// dashboards only and is never read back into ledger arithmetic.
func (m *Metrics) ObserveCredited(operation, currency string, amount decimal.Decimal) {
	m.CreditedAmount.WithLabelValues(operation, currency).Observe(amount.InexactFloat64())
}
