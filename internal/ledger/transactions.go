package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// transactionsDocument is the persisted container of every user's transactions.
type transactionsDocument struct {
	UserTransactions map[string][]core.Transaction `json:"UserTransactions"`
}

type TransactionStore struct {
	*base
}

func (s *TransactionStore) load(ctx context.Context) transactionsDocument {
	return storage.Load[transactionsDocument](ctx, s.gateway, s.logger, storage.DocTransactions)
}

// GetTransactions returns the user's transactions in insertion order. It
// never fails; storage faults yield an empty slice.
func (s *TransactionStore) GetTransactions(ctx context.Context, username string) []core.Transaction {
	list := s.load(ctx).UserTransactions[username]
	if list == nil {
		return []core.Transaction{}
	}
	return list
}

// mutateLocked applies fn to the user's transactions and persists the result
// when fn reports a change. Callers hold the user lock.
func (s *TransactionStore) mutateLocked(ctx context.Context, username string, fn func([]core.Transaction) ([]core.Transaction, bool)) error {
	unlock := s.lockDocument(storage.DocTransactions)
	defer unlock()

	doc, err := storage.Read[transactionsDocument](ctx, s.gateway, storage.DocTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if doc.UserTransactions == nil {
		doc.UserTransactions = make(map[string][]core.Transaction)
	}

	list, changed := fn(doc.UserTransactions[username])
	if !changed {
		return nil
	}
	for i := range list {
		if list[i].ID == "" {
			list[i].ID = uuid.NewString()
		}
	}
	doc.UserTransactions[username] = list
	return storage.Save(ctx, s.gateway, s.logger, storage.DocTransactions, doc)
}

// SaveTransactions replaces the user's whole sequence.
func (s *TransactionStore) SaveTransactions(ctx context.Context, username string, txs []core.Transaction) error {
	unlock := s.lockUser(username)
	defer unlock()

	replacement := make([]core.Transaction, len(txs))
	copy(replacement, txs)
	for i := range replacement {
		replacement[i].RefUsername = username
	}
	return s.mutateLocked(ctx, username, func([]core.Transaction) ([]core.Transaction, bool) {
		return replacement, true
	})
}

func normalizeTransaction(t core.Transaction, username string) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return t, err
	}
	kind, err := core.ParseKind(string(t.Kind))
	if err != nil {
		return t, err
	}
	t.Kind = kind
	t.Title = strings.TrimSpace(t.Title)
	t.RefUsername = username
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// AddTransaction appends t to the user's transactions and returns the stored
// record with its generated ID. There is no duplicate check.
func (s *TransactionStore) AddTransaction(ctx context.Context, username string, t core.Transaction) (core.Transaction, error) {
	unlock := s.lockUser(username)
	defer unlock()

	stored, err := s.appendLocked(ctx, username, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, core.TransactionCreatedEvent(stored, s.now()))
	return stored, nil
}

func (s *TransactionStore) appendLocked(ctx context.Context, username string, t core.Transaction) (core.Transaction, error) {
	t, err := normalizeTransaction(t, username)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err = s.mutateLocked(ctx, username, func(list []core.Transaction) ([]core.Transaction, bool) {
		return append(list, t), true
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithOperation(log.OpCreate).WithUser(username).
			WithTransaction(t.ID, t.Title, string(t.Kind), t.Amount.String()).ToSlice()...)
	return t, nil
}

// removeByIDLocked drops the transaction with the given ID. Callers hold the user lock.
func (s *TransactionStore) removeByIDLocked(ctx context.Context, username, id string) (bool, error) {
	found := false
	err := s.mutateLocked(ctx, username, func(list []core.Transaction) ([]core.Transaction, bool) {
		for i := range list {
			if list[i].ID == id {
				found = true
				return append(list[:i], list[i+1:]...), true
			}
		}
		return list, false
	})
	return found, err
}

// overwrite copies every field but the title and identity of src onto dst.
func overwrite(dst *core.Transaction, src core.Transaction) {
	dst.Amount = src.Amount
	dst.Date = src.Date
	dst.Kind = src.Kind
	dst.Tags = src.Tags
	dst.Notes = src.Notes
}

// UpdateTransaction overwrites amount, date, kind, tags and notes of the
// first transaction titled updated.Title. A miss is logged and ignored.
func (s *TransactionStore) UpdateTransaction(ctx context.Context, username string, updated core.Transaction) error {
	return s.update(ctx, username, updated, false)
}

// UpdateTransactionByID is UpdateTransaction keyed by ID; the title may change.
func (s *TransactionStore) UpdateTransactionByID(ctx context.Context, username string, updated core.Transaction) error {
	return s.update(ctx, username, updated, true)
}

func (s *TransactionStore) update(ctx context.Context, username string, updated core.Transaction, byID bool) error {
	updated, err := normalizeTransaction(updated, username)
	if err != nil {
		return err
	}

	match := func(t core.Transaction) bool { return t.Title == updated.Title }
	key, value := log.FieldTitle, updated.Title
	if byID {
		match = func(t core.Transaction) bool { return updated.ID != "" && t.ID == updated.ID }
		key, value = log.FieldTransaction, updated.ID
	}

	unlock := s.lockUser(username)
	defer unlock()

	found := false
	err = s.mutateLocked(ctx, username, func(list []core.Transaction) ([]core.Transaction, bool) {
		for i := range list {
			if match(list[i]) {
				found = true
				overwrite(&list[i], updated)
				if byID {
					list[i].Title = updated.Title
				}
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		return err
	}
	if !found {
		s.warnMiss(ctx, log.OpUpdate, username, key, value)
	}
	return nil
}

// DeleteTransaction removes the first transaction with the given title. A
// miss is logged and ignored.
func (s *TransactionStore) DeleteTransaction(ctx context.Context, username, title string) error {
	return s.delete(ctx, username, log.FieldTitle, title, func(t core.Transaction) bool { return t.Title == title })
}

func (s *TransactionStore) DeleteTransactionByID(ctx context.Context, username, id string) error {
	return s.delete(ctx, username, log.FieldTransaction, id, func(t core.Transaction) bool { return id != "" && t.ID == id })
}

func (s *TransactionStore) delete(ctx context.Context, username, key, value string, match func(core.Transaction) bool) error {
	unlock := s.lockUser(username)
	defer unlock()

	found := false
	err := s.mutateLocked(ctx, username, func(list []core.Transaction) ([]core.Transaction, bool) {
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

// Balance is the sum of credits minus the sum of debits over every
// transaction, dated or not.
func (s *TransactionStore) Balance(ctx context.Context, username string) decimal.Decimal {
	return balanceOf(s.GetTransactions(ctx, username))
}

func balanceOf(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}

func (s *TransactionStore) HasSufficientBalance(ctx context.Context, username string, amount decimal.Decimal) bool {
	return s.Balance(ctx, username).GreaterThanOrEqual(amount)
}
