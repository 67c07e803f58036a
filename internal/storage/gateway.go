// Package storage persists whole documents (users, transactions, debts,
// budgets) as indented JSON behind a small Gateway interface.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// Document names
const (
	DocUsers        = "users"
	DocTransactions = "transactions"
	DocDebts        = "debts"
	DocBudgets      = "budgets"
)

// Gateway reads and writes named documents. Read returns nil, nil when the
// document does not exist yet.
type Gateway interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, body []byte) error
	Ping(ctx context.Context) error
}

// Read decodes the named document into T, reporting read and decode
// faults. A missing document yields the zero T.
func Read[T any](ctx context.Context, g Gateway, name string) (T, error) {
	var v T
	body, err := g.Read(ctx, name)
	if err != nil {
		return v, err
	}
	if len(body) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

// Load is the total form of Read: faults are logged and yield the zero T.
func Load[T any](ctx context.Context, g Gateway, logger *log.Logger, name string) T {
	v, err := Read[T](ctx, g, name)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load document",
			log.NewFields().WithOperation(log.OpLoad).WithDocument(name).WithError(err).ToSlice()...)
	}
	return v
}

// Save replaces the named document with the indented JSON encoding of v.
// Failures are logged and returned.
func Save(ctx context.Context, g Gateway, logger *log.Logger, name string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		err = fmt.Errorf("encode %s: %w", name, err)
	} else {
		err = g.Write(ctx, name, body)
	}
	metrics.DocumentWrite(name, err)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to save document",
			log.NewFields().WithOperation(log.OpSave).WithDocument(name).WithError(err).ToSlice()...)
		return err
	}
	return nil
}
