package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtSummary is computed on demand from a user's debts. Earliest and latest
// due dates are nil when the user has no active debt.
type DebtSummary struct {
	TotalDebts      int             `json:"totalDebts"`
	ActiveDebts     int             `json:"activeDebts"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ActiveAmount    decimal.Decimal `json:"activeAmount"`
	OverdueDebts    int             `json:"overdueDebts"`
	OverdueAmount   decimal.Decimal `json:"overdueAmount"`
	EarliestDueDate *time.Time      `json:"earliestDueDate,omitempty"`
	LatestDueDate   *time.Time      `json:"latestDueDate,omitempty"`
}

// Totals counts transactions in a window; Net is credits minus debits.
type Totals struct {
	Count int             `json:"count"`
	Net   decimal.Decimal `json:"net"`
}

type TransactionSummary struct {
	TotalInflows  decimal.Decimal `json:"totalInflows"`
	TotalOutflows decimal.Decimal `json:"totalOutflows"`
	TotalDebt     decimal.Decimal `json:"totalDebt"`
	ClearedDebt   decimal.Decimal `json:"clearedDebt"`
	RemainingDebt decimal.Decimal `json:"remainingDebt"`
	Balance       decimal.Decimal `json:"balance"`
}

// Extrema holds single highest/lowest records; a nil entry means none matched.
type Extrema struct {
	HighestInflow  *Transaction `json:"highestInflow,omitempty"`
	LowestInflow   *Transaction `json:"lowestInflow,omitempty"`
	HighestOutflow *Transaction `json:"highestOutflow,omitempty"`
	LowestOutflow  *Transaction `json:"lowestOutflow,omitempty"`
	HighestDebt    *Debt        `json:"highestDebt,omitempty"`
	LowestDebt     *Debt        `json:"lowestDebt,omitempty"`
}

type TopN struct {
	LargestInflows   []Transaction `json:"largestInflows"`
	SmallestInflows  []Transaction `json:"smallestInflows"`
	LargestOutflows  []Transaction `json:"largestOutflows"`
	SmallestOutflows []Transaction `json:"smallestOutflows"`
	LargestDebts     []Debt        `json:"largestDebts"`
	SmallestDebts    []Debt        `json:"smallestDebts"`
}

// DailyAmount is one point of the transaction time series.
type DailyAmount struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}
