package worker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type BudgetSpender interface {
	ApplySpend(ctx context.Context, username string, categories []string, amount decimal.Decimal) ([]core.Budget, error)
}

// SheetExporter mirrors a user's transactions into a spreadsheet.
type SheetExporter interface {
	ExportTransactionsToSheet(ctx context.Context, username string) error
}

// BudgetWorker applies committed ledger events to budgets and, when a sheet
// exporter is set, keeps the user's sheet in step with the ledger.
type BudgetWorker struct {
	budgets BudgetSpender
	sheet   SheetExporter
	logger  *log.Logger
}

func NewBudgetWorker(budgets BudgetSpender, sheet SheetExporter, logger *log.Logger) *BudgetWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &BudgetWorker{budgets: budgets, sheet: sheet, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleLedgerEvent adds the amount of every Debit transaction to the
// budgets named by its tags. A returned error means the event should be
// redelivered; sheet refresh failures are only logged.
func (w *BudgetWorker) HandleLedgerEvent(ctx context.Context, event core.LedgerEvent) error {
	fields := log.NewFields().WithOperation(log.OpConsume).WithUser(event.Username).
		With(log.FieldEventType, event.Type)

	switch event.Type {
	case core.EventTransactionCreated:
		if err := w.applySpend(ctx, event); err != nil {
			return err
		}
	case core.EventDebtCleared:
		w.logger.InfoContext(ctx, "Debt cleared", fields.With(log.FieldCreditor, event.Title).ToSlice()...)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", fields.ToSlice()...)
		return nil
	}

	w.refreshSheet(ctx, event.Username)
	return nil
}

func (w *BudgetWorker) applySpend(ctx context.Context, event core.LedgerEvent) error {
	if !event.Kind.Is(core.KindDebit) || len(event.Tags) == 0 {
		return nil
	}
	exceeded, err := w.budgets.ApplySpend(ctx, event.Username, event.Tags, event.Amount)
	if err != nil {
		return fmt.Errorf("apply spend for %s: %w", event.TransactionID, err)
	}
	for _, b := range exceeded {
		w.logger.WarnContext(ctx, "Budget limit exceeded",
			log.NewFields().WithUser(event.Username).With(log.FieldCategory, b.Category).
				With("limit", b.Limit.String()).With("spent", b.Spent.String()).ToSlice()...)
	}
	return nil
}

func (w *BudgetWorker) refreshSheet(ctx context.Context, username string) {
	if w.sheet == nil {
		return
	}
	if err := w.sheet.ExportTransactionsToSheet(ctx, username); err != nil {
		w.logger.ErrorContext(ctx, "Failed to refresh sheet",
			log.NewFields().WithOperation(log.OpExport).WithUser(username).WithError(err).ToSlice()...)
	}
}
