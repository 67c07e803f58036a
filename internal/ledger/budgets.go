package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type budgetsDocument map[string][]core.Budget

type BudgetStore struct {
	*base
}

func (s *BudgetStore) GetBudgets(ctx context.Context, username string) []core.Budget {
	list := storage.Load[budgetsDocument](ctx, s.gateway, s.logger, storage.DocBudgets)[username]
	if list == nil {
		return []core.Budget{}
	}
	return list
}

func (s *BudgetStore) mutate(ctx context.Context, username string, fn func([]core.Budget) ([]core.Budget, bool)) error {
	unlockUser := s.lockUser(username)
	defer unlockUser()
	unlock := s.lockDocument(storage.DocBudgets)
	defer unlock()

	doc, err := storage.Read[budgetsDocument](ctx, s.gateway, storage.DocBudgets)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}
	if doc == nil {
		doc = make(budgetsDocument)
	}
	list, changed := fn(doc[username])
	if !changed {
		return nil
	}
	doc[username] = list
	return storage.Save(ctx, s.gateway, s.logger, storage.DocBudgets, doc)
}

func (s *BudgetStore) SaveBudgets(ctx context.Context, username string, budgets []core.Budget) error {
	replacement := append([]core.Budget{}, budgets...)
	return s.mutate(ctx, username, func([]core.Budget) ([]core.Budget, bool) {
		return replacement, true
	})
}

func (s *BudgetStore) AddBudget(ctx context.Context, username string, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.Category = strings.TrimSpace(b.Category)
	return s.mutate(ctx, username, func(list []core.Budget) ([]core.Budget, bool) {
		return append(list, b), true
	})
}

// UpdateBudget sets limit and spent of the budget whose category equals
// updated.Category. A miss is logged and ignored.
func (s *BudgetStore) UpdateBudget(ctx context.Context, username string, updated core.Budget) error {
	found := false
	err := s.mutate(ctx, username, func(list []core.Budget) ([]core.Budget, bool) {
		for i := range list {
			if list[i].Category == updated.Category {
				found = true
				list[i].Limit = updated.Limit
				list[i].Spent = updated.Spent
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		return err
	}
	if !found {
		s.warnMiss(ctx, log.OpUpdate, username, log.FieldCategory, updated.Category)
	}
	return nil
}

func (s *BudgetStore) DeleteBudget(ctx context.Context, username, category string) error {
	found := false
	err := s.mutate(ctx, username, func(list []core.Budget) ([]core.Budget, bool) {
		for i := range list {
			if list[i].Category == category {
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
		s.warnMiss(ctx, log.OpDelete, username, log.FieldCategory, category)
	}
	return nil
}

// UpdateSpent adds delta to the spent total of category.
func (s *BudgetStore) UpdateSpent(ctx context.Context, username, category string, delta decimal.Decimal) error {
	found := false
	err := s.mutate(ctx, username, func(list []core.Budget) ([]core.Budget, bool) {
		for i := range list {
			if list[i].Category == category {
				found = true
				list[i].UpdateSpent(delta)
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		return err
	}
	if !found {
		s.warnMiss(ctx, log.OpUpdate, username, log.FieldCategory, category)
	}
	return nil
}

// ApplySpend adds amount to every budget whose category matches one of
// categories, ignoring case, and returns the budgets that end up over limit.
func (s *BudgetStore) ApplySpend(ctx context.Context, username string, categories []string, amount decimal.Decimal) ([]core.Budget, error) {
	var exceeded []core.Budget
	err := s.mutate(ctx, username, func(list []core.Budget) ([]core.Budget, bool) {
		changed := false
		for i := range list {
			for _, c := range categories {
				if strings.EqualFold(strings.TrimSpace(c), list[i].Category) {
					list[i].UpdateSpent(amount)
					changed = true
					if list[i].IsLimitExceeded() {
						exceeded = append(exceeded, list[i])
					}
					break
				}
			}
		}
		return list, changed
	})
	if err != nil {
		return nil, err
	}
	return exceeded, nil
}
