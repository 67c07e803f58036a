package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"credit": KindCredit, " DEBIT ": KindDebit, "Credit": KindCredit} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("Debt"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionSignedAndValidate(t *testing.T) {
	amt := decimal.RequireFromString("12.30")
	credit := Transaction{Title: "Salary", Amount: amt, Kind: "credit"}
	debit := Transaction{Title: "Rent", Amount: amt, Kind: "DEBIT"}

	if !credit.Signed().Equal(amt) || !debit.Signed().Equal(amt.Neg()) {
		t.Fatalf("unexpected signed amounts: %s %s", credit.Signed(), debit.Signed())
	}
	if err := credit.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Title: " ", Amount: amt, Kind: KindCredit},
		{Title: "x", Amount: amt, Kind: "Transfer"},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionHasTag(t *testing.T) {
	tx := Transaction{Tags: []string{"Food", "Party"}}
	if !tx.HasTag("food") || !tx.HasTag("x", "PARTY") || tx.HasTag("Rent") {
		t.Fatal("unexpected tag membership")
	}
}

func TestDebt(t *testing.T) {
	now := NewDate(2024, 6, 1)
	d := Debt{Creditor: "Bob", AmountOwed: decimal.NewFromInt(100), DueDate: now.Add(-time.Hour)}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !d.IsOverdue(now) {
		t.Fatal("expected overdue")
	}
	d.Clear("tx-1")
	if !d.IsCleared || d.ClearingTransactionID != "tx-1" || d.IsOverdue(now) {
		t.Fatalf("unexpected cleared debt: %+v", d)
	}

	if err := (Debt{Creditor: "x", AmountOwed: decimal.NewFromInt(-1), DueDate: now}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := (Debt{AmountOwed: decimal.NewFromInt(1), DueDate: now}).Validate(); !errors.Is(err, ErrEmptyCreditor) {
		t.Fatalf("expected ErrEmptyCreditor, got %v", err)
	}
}

func TestBudgetLimit(t *testing.T) {
	b := NewBudget("Food", decimal.NewFromInt(100))
	b.UpdateSpent(decimal.NewFromInt(100))
	if b.IsLimitExceeded() {
		t.Fatal("spent == limit is not exceeded")
	}
	b.UpdateSpent(decimal.RequireFromString("0.01"))
	if !b.IsLimitExceeded() {
		t.Fatal("expected limit exceeded")
	}
}

func TestUserValidatePassword(t *testing.T) {
	u := User{Username: "alice", Password: "secret", Currency: "EUR"}
	if !u.ValidatePassword("secret") || u.ValidatePassword("Secret") || u.ValidatePassword("") {
		t.Fatal("unexpected password validation")
	}
}
