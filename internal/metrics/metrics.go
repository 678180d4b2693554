package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for transaction processing.
type Metrics struct {
	// Transactions by instruction type and outcome
	Transactions *prometheus.CounterVec

	// Processing latency by instruction type
	ProcessLatency *prometheus.HistogramVec

	// Accounts created by kind
	AccountsCreated *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg.
// Each app gets its own registry so tests can build many apps.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_transactions_total",
			Help: "Total transactions processed by instruction and result",
		}, []string{"instruction", "result"}), // result: "ok" or an error code

		ProcessLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_transaction_duration_seconds",
			Help:    "Duration of transaction processing including the unit of work",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"instruction"}),

		AccountsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_accounts_created_total",
			Help: "Total registry accounts created by kind",
		}, []string{"kind"}), // kind: "studio", "player", "custody", "mint", "token_account"
	}
}

// IncrementTransaction records a processed transaction.
func (m *Metrics) IncrementTransaction(instruction, result string) {
	if m != nil {
		m.Transactions.WithLabelValues(instruction, result).Inc()
	}
}

// ObserveLatency records the processing duration of one transaction.
func (m *Metrics) ObserveLatency(instruction string, d time.Duration) {
	if m != nil {
		m.ProcessLatency.WithLabelValues(instruction).Observe(d.Seconds())
	}
}

// IncrementAccountsCreated records a newly created account.
func (m *Metrics) IncrementAccountsCreated(kind string) {
	if m != nil {
		m.AccountsCreated.WithLabelValues(kind).Inc()
	}
}
