// Package interchange moves transactions and debts in and out of the ledger
// as CSV, and optionally mirrors transactions into a spreadsheet.
package interchange

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// Transaction columns, in file order. Notes may be omitted.
const (
	colTitle = iota
	colAmount
	colDate
	colKind
	colTags
	colNotes

	minColumns = colKind + 1
	maxColumns = colNotes + 1
)

// TagSeparators split the tags column. Commas only work inside a quoted field.
const TagSeparators = ";,"

type TransactionAdder interface {
	AddTransaction(ctx context.Context, username string, t core.Transaction) (core.Transaction, error)
}

type Importer struct {
	transactions TransactionAdder
	logger       *log.Logger
}

func NewImporter(transactions TransactionAdder, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{transactions: transactions, logger: logger.WithComponent(log.ComponentInterchange)}
}

// ImportResult lists the stored transactions and the rows that were skipped.
type ImportResult struct {
	Imported []core.Transaction `json:"imported"`
	Skipped  []*core.RowError   `json:"-"`
}

// Upload parses a CSV upload and stores every well-formed row for username.
// Files without a .csv extension fail with core.ErrUnsupportedFormat before
// anything is read. Malformed rows are logged and skipped. A storage failure
// stops the import and is returned with the rows stored so far.
func (im *Importer) Upload(ctx context.Context, filename string, r io.Reader, username string) (*ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, fmt.Errorf("%s: %w", filename, core.ErrUnsupportedFormat)
	}

	parsed, skipped := ParseTransactions(r)
	result := &ImportResult{Imported: []core.Transaction{}, Skipped: skipped}
	for _, rowErr := range skipped {
		metrics.ImportRow(rowErr)
		im.logger.WarnContext(ctx, "Skipping malformed row",
			log.NewFields().WithOperation(log.OpImport).WithUser(username).
				With(log.FieldLine, rowErr.Line).WithError(rowErr.Err).ToSlice()...)
	}

	for _, t := range parsed {
		stored, err := im.transactions.AddTransaction(ctx, username, t)
		metrics.ImportRow(err)
		if err != nil {
			return result, fmt.Errorf("store %q: %w", t.Title, err)
		}
		result.Imported = append(result.Imported, stored)
	}

	im.logger.InfoContext(ctx, "Import finished",
		log.NewFields().WithOperation(log.OpImport).WithUser(username).
			With(log.FieldCount, len(result.Imported)).With("skipped", len(skipped)).ToSlice()...)
	return result, nil
}

// maxLineBytes bounds a single CSV row.
const maxLineBytes = 1 << 20

// ParseTransactions reads title,amount,date,type,tags[,notes] rows after a
// header line. The header content is not checked. Each physical line is one
// row, so a broken quote only costs the row it appears in.
func ParseTransactions(r io.Reader) ([]core.Transaction, []*core.RowError) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		out     []core.Transaction
		skipped []*core.RowError
		line    int
	)
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		record, err := readRecord(text)
		if err == nil {
			var t core.Transaction
			if t, err = parseRecord(record); err == nil {
				out = append(out, t)
				continue
			}
		}
		skipped = append(skipped, &core.RowError{Line: line, Err: err})
	}
	if err := sc.Err(); err != nil {
		// read failure, nothing more can be parsed
		skipped = append(skipped, &core.RowError{Line: line + 1, Err: err})
	}
	return out, skipped
}

func readRecord(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("expected %d to %d columns, got 0", minColumns, maxColumns)
	}
	return record, err
}

func parseRecord(record []string) (core.Transaction, error) {
	if len(record) < minColumns || len(record) > maxColumns {
		return core.Transaction{}, fmt.Errorf("expected %d to %d columns, got %d", minColumns, maxColumns, len(record))
	}

	title := strings.TrimSpace(record[colTitle])
	if title == "" {
		return core.Transaction{}, core.ErrEmptyTitle
	}
	amount, err := core.ParseAmount(record[colAmount])
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(record[colDate])
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(record[colKind])
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		Title:  title,
		Amount: amount,
		Date:   date,
		Kind:   kind,
		Tags:   []string{},
	}
	if len(record) > colTags {
		t.Tags = splitTags(record[colTags])
	}
	if len(record) > colNotes {
		t.Notes = strings.TrimSpace(record[colNotes])
	}
	return t, nil
}

func splitTags(field string) []string {
	tags := []string{}
	for _, tag := range strings.FieldsFunc(field, func(r rune) bool { return strings.ContainsRune(TagSeparators, r) }) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
