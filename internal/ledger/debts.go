package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/storage"
)

type debtsDocument map[string][]core.Debt

type DebtStore struct {
	*base
	transactions *TransactionStore
}

func sameCreditor(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// sameDebt matches by ID, or by creditor for uncleared legacy records without one.
func sameDebt(stored, want core.Debt) bool {
	if want.ID != "" {
		return stored.ID == want.ID
	}
	return stored.ID == "" && !stored.IsCleared && sameCreditor(stored.Creditor, want.Creditor)
}

func (s *DebtStore) GetDebts(ctx context.Context, username string) []core.Debt {
	list := storage.Load[debtsDocument](ctx, s.gateway, s.logger, storage.DocDebts)[username]
	if list == nil {
		return []core.Debt{}
	}
	return list
}

func (s *DebtStore) mutateLocked(ctx context.Context, username string, fn func([]core.Debt) ([]core.Debt, bool)) error {
	unlock := s.lockDocument(storage.DocDebts)
	defer unlock()

	doc, err := storage.Read[debtsDocument](ctx, s.gateway, storage.DocDebts)
	if err != nil {
		return fmt.Errorf("load debts: %w", err)
	}
	if doc == nil {
		doc = make(debtsDocument)
	}

	list, changed := fn(doc[username])
	if !changed {
		return nil
	}
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
		}
	}
	doc[username] = list
	return storage.Save(ctx, s.gateway, s.logger, storage.DocDebts, doc)
}

func (s *DebtStore) SaveDebts(ctx context.Context, username string, debts []core.Debt) error {
	unlock := s.lockUser(username)
	defer unlock()

	replacement := make([]core.Debt, len(debts))
	copy(replacement, debts)
	for i := range replacement {
		replacement[i].RefUsername = username
	}
	return s.mutateLocked(ctx, username, func([]core.Debt) ([]core.Debt, bool) {
		return replacement, true
	})
}

func (s *DebtStore) AddDebt(ctx context.Context, username string, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	d.Creditor = strings.TrimSpace(d.Creditor)
	d.RefUsername = username
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	unlock := s.lockUser(username)
	defer unlock()

	err := s.mutateLocked(ctx, username, func(list []core.Debt) ([]core.Debt, bool) {
		return append(list, d), true
	})
	if err != nil {
		return core.Debt{}, err
	}
	s.logger.InfoContext(ctx, "Debt added",
		log.NewFields().WithOperation(log.OpCreate).WithUser(username).
			With(log.FieldCreditor, d.Creditor).With(log.FieldAmount, d.AmountOwed.String()).ToSlice()...)
	return d, nil
}

// UpdateDebt replaces every field of the first debt owed to creditor
// (case-insensitive) with updated, in place. An empty updated.ID keeps the
// stored ID. A miss is logged and ignored.
func (s *DebtStore) UpdateDebt(ctx context.Context, username, creditor string, updated core.Debt) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	updated.Creditor = strings.TrimSpace(updated.Creditor)
	updated.RefUsername = username

	unlock := s.lockUser(username)
	defer unlock()

	found := false
	err := s.mutateLocked(ctx, username, func(list []core.Debt) ([]core.Debt, bool) {
		for i := range list {
			if sameCreditor(list[i].Creditor, creditor) {
				found = true
				if updated.ID == "" {
					updated.ID = list[i].ID
				}
				list[i] = updated
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		return err
	}
	if !found {
		s.warnMiss(ctx, log.OpUpdate, username, log.FieldCreditor, creditor)
	}
	return nil
}

// DeleteDebt removes the first debt owed to creditor (case-insensitive).
func (s *DebtStore) DeleteDebt(ctx context.Context, username, creditor string) error {
	return s.delete(ctx, username, log.FieldCreditor, creditor, func(d core.Debt) bool {
		return sameCreditor(d.Creditor, creditor)
	})
}

func (s *DebtStore) DeleteDebtByID(ctx context.Context, username, id string) error {
	return s.delete(ctx, username, log.FieldDebt, id, func(d core.Debt) bool {
		return id != "" && d.ID == id
	})
}

func (s *DebtStore) delete(ctx context.Context, username, key, value string, match func(core.Debt) bool) error {
	unlock := s.lockUser(username)
	defer unlock()

	found := false
	err := s.mutateLocked(ctx, username, func(list []core.Debt) ([]core.Debt, bool) {
		for i := range list {
			if match(list[i]) {
				found = true
				return append(list[:i], list[i+1:]...), true
			}
		}
		return list, false
	})
	if err != nil {
		return err
	}
	if !found {
		s.warnMiss(ctx, log.OpDelete, username, key, value)
	}
	return nil
}

// GetTotalDebt sums the amounts owed on uncleared debts.
func (s *DebtStore) GetTotalDebt(ctx context.Context, username string) decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.GetDebts(ctx, username) {
		if !d.IsCleared {
			total = total.Add(d.AmountOwed)
		}
	}
	return total
}

func (s *DebtStore) overdue(ctx context.Context, username string) []core.Debt {
	now := s.now()
	var out []core.Debt
	for _, d := range s.GetDebts(ctx, username) {
		if d.IsOverdue(now) {
			out = append(out, d)
		}
	}
	return out
}

func (s *DebtStore) GetOverdueCount(ctx context.Context, username string) int {
	return len(s.overdue(ctx, username))
}

func (s *DebtStore) GetOverdueAmount(ctx context.Context, username string) decimal.Decimal {
	total := decimal.Zero
	for _, d := range s.overdue(ctx, username) {
		total = total.Add(d.AmountOwed)
	}
	return total
}

// GetDebtsByCreditor returns every debt, cleared or not, owed to creditor.
func (s *DebtStore) GetDebtsByCreditor(ctx context.Context, username, creditor string) []core.Debt {
	out := []core.Debt{}
	for _, d := range s.GetDebts(ctx, username) {
		if sameCreditor(d.Creditor, creditor) {
			out = append(out, d)
		}
	}
	return out
}

// GetUpcomingDebts returns uncleared debts due in (now, now+daysAhead],
// earliest first.
func (s *DebtStore) GetUpcomingDebts(ctx context.Context, username string, daysAhead int) []core.Debt {
	now := s.now()
	until := now.AddDate(0, 0, daysAhead)
	out := []core.Debt{}
	for _, d := range s.GetDebts(ctx, username) {
		if !d.IsCleared && d.DueDate.After(now) && !d.DueDate.After(until) {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Debt) int { return a.DueDate.Compare(b.DueDate) })
	return out
}

func (s *DebtStore) GetDebtSummary(ctx context.Context, username string) core.DebtSummary {
	return summarizeDebts(s.GetDebts(ctx, username), s.now())
}

func summarizeDebts(debts []core.Debt, now time.Time) core.DebtSummary {
	sum := core.DebtSummary{
		TotalDebts:    len(debts),
		TotalAmount:   decimal.Zero,
		ActiveAmount:  decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, d := range debts {
		sum.TotalAmount = sum.TotalAmount.Add(d.AmountOwed)
		if d.IsCleared {
			continue
		}
		sum.ActiveDebts++
		sum.ActiveAmount = sum.ActiveAmount.Add(d.AmountOwed)
		if d.IsOverdue(now) {
			sum.OverdueDebts++
			sum.OverdueAmount = sum.OverdueAmount.Add(d.AmountOwed)
		}
		due := d.DueDate
		if sum.EarliestDueDate == nil || due.Before(*sum.EarliestDueDate) {
			sum.EarliestDueDate = &due
		}
		if sum.LatestDueDate == nil || due.After(*sum.LatestDueDate) {
			sum.LatestDueDate = &due
		}
	}
	return sum
}

// ClearDebt pays off the first uncleared debt owed to creditor: it records a
// Debit transaction for the amount owed and marks the debt cleared with a
// reference to that transaction. The whole sequence holds the user lock. It
// fails with core.ErrInsufficientBalance, leaving both documents untouched,
// when the balance does not cover the debt. A missing debt is a logged no-op.
func (s *DebtStore) ClearDebt(ctx context.Context, username, creditor string) (*core.Debt, error) {
	unlock := s.lockUser(username)
	defer unlock()

	fields := log.NewFields().WithOperation(log.OpClear).WithUser(username).With(log.FieldCreditor, creditor)

	var debt *core.Debt
	for _, d := range s.GetDebts(ctx, username) {
		if !d.IsCleared && sameCreditor(d.Creditor, creditor) {
			debt = &d
			break
		}
	}
	if debt == nil {
		metrics.DebtClearing(metrics.OutcomeNotFound)
		s.warnMiss(ctx, log.OpClear, username, log.FieldCreditor, creditor)
		return nil, nil
	}

	if !balanceOf(s.transactions.GetTransactions(ctx, username)).GreaterThanOrEqual(debt.AmountOwed) {
		metrics.DebtClearing(metrics.OutcomeInsufficient)
		return nil, fmt.Errorf("clear debt with %s: %w", debt.Creditor, core.ErrInsufficientBalance)
	}

	now := s.now()
	tx, err := s.transactions.appendLocked(ctx, username, core.Transaction{
		Title:  "Debt Cleared: " + debt.Creditor,
		Amount: debt.AmountOwed,
		Date:   &now,
		Kind:   core.KindDebit,
		Tags:   []string{core.TagDebt},
		Notes:  "Cleared debt with " + debt.Creditor,
	})
	if err != nil {
		metrics.DebtClearing(metrics.OutcomeFailed)
		return nil, fmt.Errorf("record clearing transaction: %w", err)
	}

	debt.Clear(tx.ID)
	err = s.mutateLocked(ctx, username, func(list []core.Debt) ([]core.Debt, bool) {
		for i := range list {
			if sameDebt(list[i], *debt) {
				list[i].Clear(tx.ID)
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		metrics.DebtClearing(metrics.OutcomeFailed)
		if _, rbErr := s.transactions.removeByIDLocked(ctx, username, tx.ID); rbErr != nil {
			s.logger.ErrorContext(ctx, "Failed to roll back clearing transaction",
				fields.With(log.FieldTransaction, tx.ID).WithError(rbErr).ToSlice()...)
		}
		return nil, fmt.Errorf("mark debt cleared: %w", err)
	}

	metrics.DebtClearing(metrics.OutcomeCleared)
	s.logger.InfoContext(ctx, "Debt cleared",
		fields.With(log.FieldDebt, debt.ID).With(log.FieldTransaction, tx.ID).ToSlice()...)
	s.publish(ctx, core.TransactionCreatedEvent(tx, now))
	s.publish(ctx, core.DebtClearedEvent(*debt, now))
	return debt, nil
}
