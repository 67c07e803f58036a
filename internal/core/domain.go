package core

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindCredit Kind = "Credit"
	KindDebit  Kind = "Debit"
)

type (
	// Kind classifies a transaction. Comparisons are case-insensitive.
	Kind string

	Transaction struct {
		ID          string          `json:"id,omitempty"`
		Title       string          `json:"title"`
		Amount      decimal.Decimal `json:"amount"`
		Date        *time.Time      `json:"date,omitempty"`
		Kind        Kind            `json:"type"`
		Tags        []string        `json:"tags"`
		Notes       string          `json:"notes"`
		RefUsername string          `json:"refUsername"`
	}

	Debt struct {
		ID                    string          `json:"id,omitempty"`
		Creditor              string          `json:"creditor"`
		AmountOwed            decimal.Decimal `json:"amountOwed"`
		DueDate               time.Time       `json:"dueDate"`
		IsCleared             bool            `json:"isCleared"`
		RefUsername           string          `json:"refUsername"`
		ClearingTransactionID string          `json:"clearingTransactionId,omitempty"`
	}

	Budget struct {
		Category string          `json:"category"`
		Limit    decimal.Decimal `json:"limit"`
		Spent    decimal.Decimal `json:"spent"`
	}

	User struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Currency string `json:"currency"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidKind         = errors.New("invalid transaction type")
	ErrEmptyTitle          = errors.New("empty title")
	ErrEmptyCreditor       = errors.New("empty creditor")
	ErrEmptyCategory       = errors.New("empty budget category")
	ErrEmptyUsername       = errors.New("empty username")
	ErrNegativeAmount      = errors.New("amount owed cannot be negative")
	ErrInsufficientBalance = errors.New("insufficient balance to clear this debt")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrNothingToExport     = errors.New("nothing to export")
	ErrUnsupportedFormat   = errors.New("unsupported file format, please upload a CSV file")
)

// ParseKind resolves s to its canonical Kind.
func ParseKind(s string) (Kind, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(KindCredit)):
		return KindCredit, nil
	case strings.EqualFold(strings.TrimSpace(s), string(KindDebit)):
		return KindDebit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Is reports whether k names the same kind as other, ignoring case.
func (k Kind) Is(other Kind) bool {
	return strings.EqualFold(string(k), string(other))
}

func (t Transaction) IsCredit() bool { return t.Kind.Is(KindCredit) }
func (t Transaction) IsDebit() bool  { return t.Kind.Is(KindDebit) }

// Signed returns the amount as it contributes to the balance.
func (t Transaction) Signed() decimal.Decimal {
	switch {
	case t.IsCredit():
		return t.Amount
	case t.IsDebit():
		return t.Amount.Neg()
	}
	return decimal.Zero
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return err
	}
	return nil
}

// HasTag reports whether any of the transaction tags is in tags, ignoring case.
func (t Transaction) HasTag(tags ...string) bool {
	for _, have := range t.Tags {
		for _, want := range tags {
			if strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want)) {
				return true
			}
		}
	}
	return false
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Creditor) == "" {
		return ErrEmptyCreditor
	}
	if d.AmountOwed.IsNegative() {
		return ErrNegativeAmount
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidDate)
	}
	return nil
}

// IsOverdue reports whether an uncleared debt is past due at now.
func (d Debt) IsOverdue(now time.Time) bool {
	return !d.IsCleared && d.DueDate.Before(now)
}

// Clear marks the debt as paid by the given transaction.
func (d *Debt) Clear(transactionID string) {
	d.IsCleared = true
	d.ClearingTransactionID = transactionID
}

func NewBudget(category string, limit decimal.Decimal) Budget {
	return Budget{Category: category, Limit: limit, Spent: decimal.Zero}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// UpdateSpent adds amount to the running spent total.
func (b *Budget) UpdateSpent(amount decimal.Decimal) {
	b.Spent = b.Spent.Add(amount)
}

// IsLimitExceeded is a query, it never blocks writes.
func (b Budget) IsLimitExceeded() bool {
	return b.Spent.GreaterThan(b.Limit)
}

func (u User) ValidatePassword(input string) bool {
	if input == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(input)) == 1
}

func (u User) String() string {
	return fmt.Sprintf("Username: %s, Currency: %s", u.Username, u.Currency)
}
