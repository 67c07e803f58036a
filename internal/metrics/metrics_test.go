package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestHandlerExposesLedgerCollectors(t *testing.T) {
	DocumentWrite("debts", errors.New("disk full"))
	DocumentWrite("debts", nil)
	DebtClearing(OutcomeInsufficient)
	ImportRow(nil)
	Export("csv")
	EventPublished("transaction.created", nil)
	ObserveHTTP("GET", 200, 15*time.Millisecond)

	body := scrape(t)
	for _, want := range []string{
		`fintrack_document_writes_total{document="debts",result="error"}`,
		`fintrack_document_writes_total{document="debts",result="ok"}`,
		`fintrack_debt_clearings_total{outcome="insufficient_balance"}`,
		`fintrack_import_rows_total{result="ok"}`,
		`fintrack_exports_total{target="csv"}`,
		`fintrack_events_published_total{result="ok",type="transaction.created"}`,
		`fintrack_http_request_duration_seconds_count{code="200",method="GET"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
