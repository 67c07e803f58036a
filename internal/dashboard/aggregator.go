// Package dashboard computes read-only reports over a user's transactions
// and debts. Every report takes a core.Window; the zero window spans all time.
package dashboard

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultTopN is the size of the dashboard's top lists.
const DefaultTopN = 5

type TransactionReader interface {
	GetTransactions(ctx context.Context, username string) []core.Transaction
}

type DebtReader interface {
	GetDebts(ctx context.Context, username string) []core.Debt
}

type Aggregator struct {
	transactions TransactionReader
	debts        DebtReader
	logger       *log.Logger
}

func NewAggregator(transactions TransactionReader, debts DebtReader, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{
		transactions: transactions,
		debts:        debts,
		logger:       logger.WithComponent(log.ComponentDashboard),
	}
}

// snapshot holds the window-filtered records a report is computed from.
type snapshot struct {
	transactions []core.Transaction
	debts        []core.Debt
}

func (a *Aggregator) load(ctx context.Context, username string, w core.Window, withDebts bool) snapshot {
	var txs []core.Transaction
	var debts []core.Debt

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs = a.transactions.GetTransactions(gctx, username)
		return nil
	})
	if withDebts {
		g.Go(func() error {
			debts = a.debts.GetDebts(gctx, username)
			return nil
		})
	}
	_ = g.Wait()

	var snap snapshot
	for _, t := range txs {
		if w.ContainsDate(t.Date) {
			snap.transactions = append(snap.transactions, t)
		}
	}
	for _, d := range debts {
		if w.Contains(d.DueDate) {
			snap.debts = append(snap.debts, d)
		}
	}
	return snap
}

func (a *Aggregator) GetTotalTransactions(ctx context.Context, username string, w core.Window) core.Totals {
	return a.load(ctx, username, w, false).totals()
}

func (s snapshot) totals() core.Totals {
	net := decimal.Zero
	for _, t := range s.transactions {
		net = net.Add(t.Signed())
	}
	return core.Totals{Count: len(s.transactions), Net: net}
}

// GetTransactionSummary partitions debts by their due date in the window.
func (a *Aggregator) GetTransactionSummary(ctx context.Context, username string, w core.Window) core.TransactionSummary {
	return a.load(ctx, username, w, true).summary()
}

func (s snapshot) summary() core.TransactionSummary {
	sum := core.TransactionSummary{
		TotalInflows:  decimal.Zero,
		TotalOutflows: decimal.Zero,
		TotalDebt:     decimal.Zero,
		ClearedDebt:   decimal.Zero,
		RemainingDebt: decimal.Zero,
	}
	for _, t := range s.transactions {
		switch {
		case t.IsCredit():
			sum.TotalInflows = sum.TotalInflows.Add(t.Amount)
		case t.IsDebit():
			sum.TotalOutflows = sum.TotalOutflows.Add(t.Amount)
		}
	}
	for _, d := range s.debts {
		sum.TotalDebt = sum.TotalDebt.Add(d.AmountOwed)
		if d.IsCleared {
			sum.ClearedDebt = sum.ClearedDebt.Add(d.AmountOwed)
		} else {
			sum.RemainingDebt = sum.RemainingDebt.Add(d.AmountOwed)
		}
	}
	sum.Balance = sum.TotalInflows.Sub(sum.TotalOutflows)
	return sum
}

func (s snapshot) ofKind(kind core.Kind) []core.Transaction {
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.Kind.Is(kind) {
			out = append(out, t)
		}
	}
	return out
}

func byAmountDesc(a, b core.Transaction) int { return b.Amount.Cmp(a.Amount) }
func byAmountAsc(a, b core.Transaction) int  { return a.Amount.Cmp(b.Amount) }
func byOwedDesc(a, b core.Debt) int          { return b.AmountOwed.Cmp(a.AmountOwed) }
func byOwedAsc(a, b core.Debt) int           { return a.AmountOwed.Cmp(b.AmountOwed) }

// firstN stably sorts a copy of items and keeps at most n.
func firstN[T any](items []T, n int, cmp func(a, b T) int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, cmp)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []T{}
	}
	return sorted
}

func first[T any](items []T, cmp func(a, b T) int) *T {
	top := firstN(items, 1, cmp)
	if len(top) == 0 {
		return nil
	}
	return &top[0]
}

// GetHighestAndLowest picks single extremes; ties keep the record stored first.
func (a *Aggregator) GetHighestAndLowest(ctx context.Context, username string, w core.Window) core.Extrema {
	return a.load(ctx, username, w, true).extrema()
}

func (s snapshot) extrema() core.Extrema {
	credits, debits := s.ofKind(core.KindCredit), s.ofKind(core.KindDebit)
	return core.Extrema{
		HighestInflow:  first(credits, byAmountDesc),
		LowestInflow:   first(credits, byAmountAsc),
		HighestOutflow: first(debits, byAmountDesc),
		LowestOutflow:  first(debits, byAmountAsc),
		HighestDebt:    first(s.debts, byOwedDesc),
		LowestDebt:     first(s.debts, byOwedAsc),
	}
}

func (a *Aggregator) GetTopN(ctx context.Context, username string, w core.Window, n int) core.TopN {
	return a.load(ctx, username, w, true).topN(n)
}

func (a *Aggregator) GetTop5(ctx context.Context, username string, w core.Window) core.TopN {
	return a.GetTopN(ctx, username, w, DefaultTopN)
}

func (s snapshot) topN(n int) core.TopN {
	if n < 0 {
		n = 0
	}
	credits, debits := s.ofKind(core.KindCredit), s.ofKind(core.KindDebit)
	return core.TopN{
		LargestInflows:   firstN(credits, n, byAmountDesc),
		SmallestInflows:  firstN(credits, n, byAmountAsc),
		LargestOutflows:  firstN(debits, n, byAmountDesc),
		SmallestOutflows: firstN(debits, n, byAmountAsc),
		LargestDebts:     firstN(s.debts, n, byOwedDesc),
		SmallestDebts:    firstN(s.debts, n, byOwedAsc),
	}
}

// GetPendingDebts returns uncleared debts due in the window, earliest first.
func (a *Aggregator) GetPendingDebts(ctx context.Context, username string, w core.Window) []core.Debt {
	return a.load(ctx, username, w, true).pending()
}

func (s snapshot) pending() []core.Debt {
	out := []core.Debt{}
	for _, d := range s.debts {
		if !d.IsCleared {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Debt) int { return a.DueDate.Compare(b.DueDate) })
	return out
}

// GetCategoryWiseSummary sums amounts per kind. Both kinds are always present.
func (a *Aggregator) GetCategoryWiseSummary(ctx context.Context, username string, w core.Window) map[core.Kind]decimal.Decimal {
	return a.load(ctx, username, w, false).categories()
}

func (s snapshot) categories() map[core.Kind]decimal.Decimal {
	out := map[core.Kind]decimal.Decimal{
		core.KindCredit: decimal.Zero,
		core.KindDebit:  decimal.Zero,
	}
	for _, t := range s.transactions {
		switch {
		case t.IsCredit():
			out[core.KindCredit] = out[core.KindCredit].Add(t.Amount)
		case t.IsDebit():
			out[core.KindDebit] = out[core.KindDebit].Add(t.Amount)
		}
	}
	return out
}

// GetTransactionsForLineChart buckets transaction amounts by calendar day in
// chronological order. Undated transactions never appear.
func (a *Aggregator) GetTransactionsForLineChart(ctx context.Context, username string, w core.Window) []core.DailyAmount {
	return a.load(ctx, username, w, false).series()
}

func (s snapshot) series() []core.DailyAmount {
	buckets := make(map[time.Time]decimal.Decimal)
	var days []time.Time
	for _, t := range s.transactions {
		if t.Date == nil {
			continue
		}
		day := core.DateOf(*t.Date)
		if _, ok := buckets[day]; !ok {
			days = append(days, day)
		}
		buckets[day] = buckets[day].Add(t.Amount)
	}
	slices.SortFunc(days, time.Time.Compare)

	out := make([]core.DailyAmount, 0, len(days))
	for _, day := range days {
		out = append(out, core.DailyAmount{Date: day, Amount: buckets[day]})
	}
	return out
}

// Dashboard is every report for one user and window, computed from a single load.
type Dashboard struct {
	Window       string                        `json:"window"`
	Totals       core.Totals                   `json:"totals"`
	Summary      core.TransactionSummary       `json:"summary"`
	Extrema      core.Extrema                  `json:"extrema"`
	Top          core.TopN                     `json:"top"`
	PendingDebts []core.Debt                   `json:"pendingDebts"`
	Categories   map[core.Kind]decimal.Decimal `json:"categories"`
	Series       []core.DailyAmount            `json:"series"`
}

func (a *Aggregator) Dashboard(ctx context.Context, username string, w core.Window) Dashboard {
	s := a.load(ctx, username, w, true)
	a.logger.DebugContext(ctx, "Dashboard computed",
		log.NewFields().WithUser(username).With(log.FieldWindow, w.String()).
			With(log.FieldCount, len(s.transactions)).ToSlice()...)
	return Dashboard{
		Window:       w.String(),
		Totals:       s.totals(),
		Summary:      s.summary(),
		Extrema:      s.extrema(),
		Top:          s.topN(DefaultTopN),
		PendingDebts: s.pending(),
		Categories:   s.categories(),
		Series:       s.series(),
	}
}
