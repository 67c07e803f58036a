package interchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
)

var (
	transactionHeader = []string{"Title", "Amount", "Date", "Type", "Tags", "Notes"}
	debtHeader        = []string{"AmountOwed", "DueDate", "Creditor", "Status"}
)

// Debt status column values
const (
	StatusCleared     = "Cleared"
	StatusOutstanding = "Outstanding"
)

// ErrSheetExportDisabled is returned when no spreadsheet is configured.
var ErrSheetExportDisabled = errors.New("sheet export is not configured")

type TransactionReader interface {
	GetTransactions(ctx context.Context, username string) []core.Transaction
}

type DebtReader interface {
	GetDebts(ctx context.Context, username string) []core.Debt
}

type Exporter struct {
	transactions TransactionReader
	debts        DebtReader
	sheet        sheets.RowWriter
	logger       *log.Logger
}

// NewExporter builds an exporter; sheet may be nil to disable sheet export.
func NewExporter(transactions TransactionReader, debts DebtReader, sheet sheets.RowWriter, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Exporter{
		transactions: transactions,
		debts:        debts,
		sheet:        sheet,
		logger:       logger.WithComponent(log.ComponentInterchange),
	}
}

// TransactionRows renders the header and one row per transaction.
func TransactionRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs)+1)
	rows = append(rows, transactionHeader)
	for _, t := range txs {
		date := ""
		if t.Date != nil {
			date = t.Date.Format(core.DateLayout)
		}
		rows = append(rows, []string{
			t.Title,
			core.FormatAmount(t.Amount),
			date,
			string(t.Kind),
			strings.Join(t.Tags, ";"),
			t.Notes,
		})
	}
	return rows
}

func DebtRows(debts []core.Debt) [][]string {
	rows := make([][]string, 0, len(debts)+1)
	rows = append(rows, debtHeader)
	for _, d := range debts {
		status := StatusOutstanding
		if d.IsCleared {
			status = StatusCleared
		}
		rows = append(rows, []string{
			core.FormatAmount(d.AmountOwed),
			d.DueDate.Format(core.DateLayout),
			d.Creditor,
			status,
		})
	}
	return rows
}

func encodeCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("encode csv: %w", err)
	}
	return buf.String(), nil
}

// ExportTransactionsCSV fails with core.ErrNothingToExport when the user has
// no transactions.
func (e *Exporter) ExportTransactionsCSV(ctx context.Context, username string) (string, error) {
	txs := e.transactions.GetTransactions(ctx, username)
	if len(txs) == 0 {
		return "", fmt.Errorf("transactions of %s: %w", username, core.ErrNothingToExport)
	}
	out, err := encodeCSV(TransactionRows(txs))
	if err != nil {
		return "", err
	}
	e.exported(ctx, username, "transactions_csv", len(txs))
	return out, nil
}

func (e *Exporter) ExportDebtsCSV(ctx context.Context, username string) (string, error) {
	debts := e.debts.GetDebts(ctx, username)
	if len(debts) == 0 {
		return "", fmt.Errorf("debts of %s: %w", username, core.ErrNothingToExport)
	}
	out, err := encodeCSV(DebtRows(debts))
	if err != nil {
		return "", err
	}
	e.exported(ctx, username, "debts_csv", len(debts))
	return out, nil
}

// ExportTransactionsToSheet writes the transaction rows to the tab named
// after the user.
func (e *Exporter) ExportTransactionsToSheet(ctx context.Context, username string) error {
	if e.sheet == nil {
		return ErrSheetExportDisabled
	}
	txs := e.transactions.GetTransactions(ctx, username)
	if len(txs) == 0 {
		return fmt.Errorf("transactions of %s: %w", username, core.ErrNothingToExport)
	}
	if err := e.sheet.ReplaceRows(ctx, username, TransactionRows(txs)); err != nil {
		return fmt.Errorf("export to sheet: %w", err)
	}
	e.exported(ctx, username, "sheet", len(txs))
	return nil
}

func (e *Exporter) exported(ctx context.Context, username, target string, n int) {
	metrics.Export(target)
	e.logger.InfoContext(ctx, "Export finished",
		log.NewFields().WithOperation(log.OpExport).WithUser(username).
			With("target", target).With(log.FieldCount, n).ToSlice()...)
}
