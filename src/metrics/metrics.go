package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "claimfolio_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

var (
	registerOnce sync.Once

	importRows         *prometheus.CounterVec
	importDuration     prometheus.Histogram
	ledgerTransactions *prometheus.CounterVec
	claimRecords       prometheus.Counter
	dispatches         *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Observe calls made
// before Init are dropped.
func Init() {
	registerOnce.Do(func() {
		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_rows_total",
				Help: "Imported rows by result",
			},
			[]string{"result"},
		)
		importDuration = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_duration_seconds",
				Help:    "Import job duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		ledgerTransactions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_transactions_total",
				Help: "Transactions applied to the lot ledger by kind and result",
			},
			[]string{"kind", "result"},
		)
		claimRecords = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_records_total",
				Help: "Claim records persisted",
			},
		)
		dispatches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dispatch_total",
				Help: "Claim package dispatches by method and result",
			},
			[]string{"method", "result"},
		)

		prometheus.MustRegister(importRows, importDuration, ledgerTransactions, claimRecords, dispatches)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func AddImportRows(result string, n int) {
	if importRows != nil && n > 0 {
		importRows.WithLabelValues(result).Add(float64(n))
	}
}

func ObserveImport(duration time.Duration) {
	if importDuration != nil {
		importDuration.Observe(duration.Seconds())
	}
}

func IncLedgerTransaction(kind, result string) {
	if ledgerTransactions != nil {
		ledgerTransactions.WithLabelValues(kind, result).Inc()
	}
}

func AddClaimRecords(n int) {
	if claimRecords != nil && n > 0 {
		claimRecords.Add(float64(n))
	}
}

func IncDispatch(method, result string) {
	if method == "" {
		method = "unknown"
	}
	if dispatches != nil {
		dispatches.WithLabelValues(method, result).Inc()
	}
}
