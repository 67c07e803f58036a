// Package metrics exposes Prometheus collectors for ledger activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fintrack"

var (
	documentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_writes_total",
		Help:      "Persisted document writes by document and result.",
	}, []string{"document", "result"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Uploaded CSV rows by result.",
	}, []string{"result"})

	debtClearings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debt_clearings_total",
		Help:      "Debt clearing attempts by outcome.",
	}, []string{"outcome"})

	exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Exports by target.",
	}, []string{"target"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Ledger events handed to the broker by type and result.",
	}, []string{"type", "result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})
)

// Debt clearing outcomes
const (
	OutcomeCleared      = "cleared"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient_balance"
	OutcomeFailed       = "failed"
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func DocumentWrite(document string, err error) {
	documentWrites.WithLabelValues(document, result(err)).Inc()
}

func ImportRow(err error) {
	importRows.WithLabelValues(result(err)).Inc()
}

func DebtClearing(outcome string) {
	debtClearings.WithLabelValues(outcome).Inc()
}

func Export(target string) {
	exports.WithLabelValues(target).Inc()
}

func EventPublished(eventType string, err error) {
	eventsPublished.WithLabelValues(eventType, result(err)).Inc()
}

func ObserveHTTP(method string, status int, elapsed time.Duration) {
	httpDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
