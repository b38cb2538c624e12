// Package metrics registers the service's Prometheus instruments. All
// instruments are package-level and registered once via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "einvoice_invoices_created_total",
		Help: "Total number of invoices accepted for processing",
	})

	submissionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "einvoice_submissions_completed_total",
		Help: "Total number of submission completions by terminal outcome",
	}, []string{"outcome"})

	documentsEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "einvoice_xrechnung_documents_total",
		Help: "Total number of XRechnung documents generated",
	})

	totalsMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "einvoice_totals_mismatches_total",
		Help: "Total number of invoices whose stored aggregates disagreed with recomputed totals",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "einvoice_http_request_duration_seconds",
		Help:    "Latency of handled HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// RecordInvoiceCreated counts a newly accepted invoice.
func RecordInvoiceCreated() {
	invoicesCreated.Inc()
}

// RecordSubmission counts a submission completion. outcome is the terminal
// status the invoice reached ("sent" or "failed").
func RecordSubmission(outcome string) {
	submissionsCompleted.WithLabelValues(outcome).Inc()
}

// RecordDocumentEncoded counts a generated XRechnung document.
func RecordDocumentEncoded() {
	documentsEncoded.Inc()
}

// RecordTotalsMismatch counts an advisory totals inconsistency.
func RecordTotalsMismatch() {
	totalsMismatches.Inc()
}

// ObserveHTTPRequest records the duration of a handled request.
func ObserveHTTPRequest(method, status string, duration time.Duration) {
	httpDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}
