package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTransactionCreated = "transaction.created"
	EventDebtCleared        = "debt.cleared"
)

// LedgerEvent describes a committed ledger write for downstream consumers.
type LedgerEvent struct {
	Type          string          `json:"type"`
	Username      string          `json:"username"`
	TransactionID string          `json:"transactionId,omitempty"`
	DebtID        string          `json:"debtId,omitempty"`
	Title         string          `json:"title,omitempty"`
	Kind          Kind            `json:"kind,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Tags          []string        `json:"tags,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func TransactionCreatedEvent(t Transaction, at time.Time) LedgerEvent {
	return LedgerEvent{
		Type:          EventTransactionCreated,
		Username:      t.RefUsername,
		TransactionID: t.ID,
		Title:         t.Title,
		Kind:          t.Kind,
		Amount:        t.Amount,
		Tags:          append([]string(nil), t.Tags...),
		OccurredAt:    at,
	}
}

func DebtClearedEvent(d Debt, at time.Time) LedgerEvent {
	return LedgerEvent{
		Type:          EventDebtCleared,
		Username:      d.RefUsername,
		TransactionID: d.ClearingTransactionID,
		DebtID:        d.ID,
		Title:         d.Creditor,
		Amount:        d.AmountOwed,
		OccurredAt:    at,
	}
}
