package ledger

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func seedSearch(t *testing.T) *Ledger {
	t.Helper()
	l, _, _ := newTestLedger(t)
	for _, tx := range []core.Transaction{
		{Title: "Coffee", Amount: dec("4.50"), Kind: core.KindDebit, Date: day(2024, 2, 1), Tags: []string{"Food"}, Notes: "Morning"},
		{Title: "Salary", Amount: dec("1000"), Kind: core.KindCredit, Date: day(2024, 1, 31)},
		{Title: "beer", Amount: dec("7"), Kind: core.KindDebit, Date: day(2024, 2, 1), Tags: []string{"drinks", "Party"}},
		{Title: "Cash gift", Amount: dec("50"), Kind: core.KindCredit, Notes: "from grandma coffee fund"},
	} {
		mustAdd(t, l, "alice", tx)
	}
	return l
}

func titles(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Title
	}
	return out
}

func TestSearchFilterAndSort(t *testing.T) {
	l := seedSearch(t)
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"text matches title or notes", Query{Text: "COFFEE", SortBy: SortByTitle, Ascending: true}, []string{"Cash gift", "Coffee"}},
		{"kind is case-insensitive", Query{Kind: "credit", SortBy: SortByAmount, Ascending: true}, []string{"Cash gift", "Salary"}},
		{"tags any-of", Query{Tags: []string{"DRINKS", "food"}, SortBy: SortByTitle, Ascending: true}, []string{"beer", "Coffee"}},
		{"window excludes undated", Query{Window: core.NewWindow(core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31)), SortBy: SortByAmount, Ascending: false}, []string{"Salary", "beer", "Coffee"}},
		{"same-day window", Query{Window: core.NewWindow(core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 1)), Ascending: true}, []string{"Coffee", "beer"}},
		{"date ascending puts undated first", Query{Ascending: true}, []string{"Cash gift", "Salary", "Coffee", "beer"}},
		{"date descending is stable for ties", Query{}, []string{"Coffee", "beer", "Salary", "Cash gift"}},
		{"half-open window does not filter", Query{Window: core.Window{Start: core.NewDate(2030, 1, 1)}, SortBy: SortByTitle, Ascending: true}, []string{"beer", "Cash gift", "Coffee", "Salary"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(l.Transactions.SearchFilterAndSort(context.Background(), "alice", tt.query))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSearchDoesNotMutateStore(t *testing.T) {
	l := seedSearch(t)
	ctx := context.Background()
	l.Transactions.SearchFilterAndSort(ctx, "alice", Query{SortBy: SortByAmount, Ascending: true})
	got := titles(l.Transactions.GetTransactions(ctx, "alice"))
	if got[0] != "Coffee" || got[3] != "Cash gift" {
		t.Fatalf("insertion order changed: %v", got)
	}
}

func TestParseSortField(t *testing.T) {
	cases := map[string]SortField{"Title": SortByTitle, "amount": SortByAmount, "date": SortByDate, "": SortByDate, "bogus": SortByDate}
	for in, want := range cases {
		if got := ParseSortField(in); got != want {
			t.Errorf("ParseSortField(%q) = %q, want %q", in, got, want)
		}
	}
}
