// Package metrics exports ledger and minting counters to Prometheus.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Klingon-tech/klingnet-nft/internal/nft"
	"github.com/Klingon-tech/klingnet-nft/internal/runtime"
)

// Transaction outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Metrics records runtime transactions and minting results. The zero value
// records nothing until Register is called.
type Metrics struct {
	transactions *prometheus.CounterVec
	txDuration   prometheus.Histogram
	fees         prometheus.Counter
	mints        *prometheus.CounterVec
	mintDuration *prometheus.HistogramVec
	registerOnce sync.Once
}

// New returns metrics registered with registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{}
	m.Register(registry)
	return m
}

// Register creates the collectors in registry. Calls after the first are
// no-ops, as is a nil registry.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.transactions = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftmint_transactions_total",
			Help: "Transactions submitted to the ledger by outcome",
		}, []string{"outcome"})

		m.txDuration = factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nftmint_transaction_duration_seconds",
			Help:    "Time to verify, execute and commit a transaction",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		})

		m.fees = factory.NewCounter(prometheus.CounterOpts{
			Name: "nftmint_fees_lamports_total",
			Help: "Transaction fees charged in lamports",
		})

		m.mints = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nftmint_mints_total",
			Help: "Mint requests by pipeline and result (ok or failure category)",
		}, []string{"pipeline", "result"})

		m.mintDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nftmint_mint_duration_seconds",
			Help:    "End-to-end time of a mint request",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"})
	})
}

// TransactionProcessed implements runtime.Hooks.
func (m *Metrics) TransactionProcessed(receipt *runtime.Receipt, err error, elapsed time.Duration) {
	if m.transactions == nil {
		return
	}
	outcome := OutcomeCommitted
	switch {
	case receipt == nil:
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeFailed
	}
	m.transactions.WithLabelValues(outcome).Inc()
	m.txDuration.Observe(elapsed.Seconds())
	if receipt != nil {
		m.fees.Add(float64(receipt.Fee))
	}
}

// MintCompleted records the result of a mint request on pipeline.
func (m *Metrics) MintCompleted(pipeline string, err error, elapsed time.Duration) {
	if m.mints == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = nft.Classify(err).String()
	}
	m.mints.WithLabelValues(pipeline, result).Inc()
	m.mintDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
}
