package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type spendCall struct {
	username   string
	categories []string
	amount     decimal.Decimal
}

type fakeBudgets struct {
	calls    []spendCall
	exceeded []core.Budget
	err      error
}

func (f *fakeBudgets) ApplySpend(_ context.Context, username string, categories []string, amount decimal.Decimal) ([]core.Budget, error) {
	f.calls = append(f.calls, spendCall{username, categories, amount})
	return f.exceeded, f.err
}

type fakeSheet struct {
	users []string
	err   error
}

func (f *fakeSheet) ExportTransactionsToSheet(_ context.Context, username string) error {
	f.users = append(f.users, username)
	return f.err
}

func TestHandleLedgerEvent(t *testing.T) {
	debit := core.LedgerEvent{
		Type: core.EventTransactionCreated, Username: "alice", TransactionID: "t1",
		Kind: core.KindDebit, Amount: decimal.RequireFromString("12.5"), Tags: []string{"Food"},
	}
	credit := debit
	credit.Kind = core.KindCredit
	untagged := debit
	untagged.Tags = nil
	cleared := core.LedgerEvent{Type: core.EventDebtCleared, Username: "alice", Title: "Bob"}
	unknown := core.LedgerEvent{Type: "user.deleted", Username: "alice"}

	tests := []struct {
		name       string
		event      core.LedgerEvent
		wantSpends int
		wantSheets int
	}{
		{"debit applies spend", debit, 1, 1},
		{"credit is ignored", credit, 0, 1},
		{"untagged debit is ignored", untagged, 0, 1},
		{"debt cleared refreshes sheet", cleared, 0, 1},
		{"unknown type is dropped", unknown, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budgets := &fakeBudgets{exceeded: []core.Budget{{Category: "Food"}}}
			sheet := &fakeSheet{}
			w := NewBudgetWorker(budgets, sheet, log.Discard())
			if err := w.HandleLedgerEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("HandleLedgerEvent: %v", err)
			}
			if len(budgets.calls) != tt.wantSpends {
				t.Errorf("spend calls = %d, want %d", len(budgets.calls), tt.wantSpends)
			}
			if len(sheet.users) != tt.wantSheets {
				t.Errorf("sheet refreshes = %d, want %d", len(sheet.users), tt.wantSheets)
			}
		})
	}
}

func TestHandleLedgerEventSpendFailureRequeues(t *testing.T) {
	budgets := &fakeBudgets{err: errors.New("disk full")}
	sheet := &fakeSheet{}
	w := NewBudgetWorker(budgets, sheet, log.Discard())
	event := core.LedgerEvent{Type: core.EventTransactionCreated, Username: "alice", Kind: core.KindDebit, Tags: []string{"Food"}}
	if err := w.HandleLedgerEvent(context.Background(), event); err == nil {
		t.Fatal("expected error so the event is redelivered")
	}
	if len(sheet.users) != 0 {
		t.Fatal("sheet must not refresh when spend failed")
	}
}

func TestHandleLedgerEventSheetFailureIsLogged(t *testing.T) {
	w := NewBudgetWorker(&fakeBudgets{}, &fakeSheet{err: errors.New("quota")}, log.Discard())
	event := core.LedgerEvent{Type: core.EventDebtCleared, Username: "alice"}
	if err := w.HandleLedgerEvent(context.Background(), event); err != nil {
		t.Fatalf("sheet failure must not fail the event: %v", err)
	}
}

func TestNilSheetExporter(t *testing.T) {
	budgets := &fakeBudgets{}
	w := NewBudgetWorker(budgets, nil, log.Discard())
	event := core.LedgerEvent{Type: core.EventTransactionCreated, Username: "alice", Kind: "debit", Tags: []string{"Food"}}
	if err := w.HandleLedgerEvent(context.Background(), event); err != nil {
		t.Fatal(err)
	}
	if len(budgets.calls) != 1 || budgets.calls[0].categories[0] != "Food" {
		t.Fatalf("calls = %+v", budgets.calls)
	}
}
