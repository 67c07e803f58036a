package ledger

import (
	"context"
	"slices"
	"strings"

	"fintrack/internal/core"
)

type SortField string

const (
	SortByDate   SortField = "date"
	SortByTitle  SortField = "title"
	SortByAmount SortField = "amount"
)

// ParseSortField maps unknown or empty input to SortByDate.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case SortByTitle:
		return SortByTitle
	case SortByAmount:
		return SortByAmount
	default:
		return SortByDate
	}
}

// Query selects and orders a user's transactions. Empty fields do not filter.
type Query struct {
	Text      string
	Kind      core.Kind
	Tags      []string
	Window    core.Window
	SortBy    SortField
	Ascending bool
}

func (q Query) matches(t core.Transaction) bool {
	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(t.Title), needle) && !strings.Contains(strings.ToLower(t.Notes), needle) {
			return false
		}
	}
	if q.Kind != "" && !t.Kind.Is(q.Kind) {
		return false
	}
	if len(q.Tags) > 0 && !t.HasTag(q.Tags...) {
		return false
	}
	return q.Window.ContainsDate(t.Date)
}

func (q Query) compare(a, b core.Transaction) int {
	var c int
	switch q.SortBy {
	case SortByTitle:
		c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByAmount:
		c = a.Amount.Cmp(b.Amount)
	default:
		c = compareDates(a, b)
	}
	if !q.Ascending {
		c = -c
	}
	return c
}

// compareDates orders undated transactions before every dated one.
func compareDates(a, b core.Transaction) int {
	switch {
	case a.Date == nil && b.Date == nil:
		return 0
	case a.Date == nil:
		return -1
	case b.Date == nil:
		return 1
	}
	return a.Date.Compare(*b.Date)
}

// SearchFilterAndSort returns a filtered, stably sorted copy of the user's
// transactions.
func (s *TransactionStore) SearchFilterAndSort(ctx context.Context, username string, q Query) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range s.GetTransactions(ctx, username) {
		if q.matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, q.compare)
	return out
}
