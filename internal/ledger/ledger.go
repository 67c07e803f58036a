// Package ledger owns the per-user transactions, debts, budgets and the user
// directory. Every write is a full read-modify-write of one document, guarded
// by a per-user lock and a per-document lock, always taken in that order.
package ledger

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/storage"
)

// EventPublisher receives committed ledger writes. Implemented by amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event core.LedgerEvent) error
}

type Option func(*base)

func WithLogger(logger *log.Logger) Option {
	return func(b *base) { b.logger = logger.WithComponent(log.ComponentLedger) }
}

// WithPublisher enables ledger events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(b *base) { b.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

type base struct {
	gateway   storage.Gateway
	logger    *log.Logger
	publisher EventPublisher
	now       func() time.Time
	locks     *storage.KeyedMutex
}

func newBase(g storage.Gateway, opts ...Option) *base {
	b := &base{
		gateway: g,
		logger:  log.Default().WithComponent(log.ComponentLedger),
		now:     time.Now,
		locks:   storage.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func userKey(username string) string { return "user:" + username }

func (b *base) lockUser(username string) func() { return b.locks.Lock(userKey(username)) }

func (b *base) lockDocument(name string) func() { return b.locks.Lock("doc:" + name) }

func (b *base) publish(ctx context.Context, event core.LedgerEvent) {
	if b.publisher == nil {
		return
	}
	err := b.publisher.PublishLedgerEvent(ctx, event)
	metrics.EventPublished(event.Type, err)
	if err != nil {
		// The write is already committed
		b.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.NewFields().WithOperation(log.OpPublish).WithUser(event.Username).
				With(log.FieldEventType, event.Type).WithError(err).ToSlice()...)
	}
}

func (b *base) warnMiss(ctx context.Context, op, username, key, value string) {
	b.logger.WarnContext(ctx, "Record not found",
		log.NewFields().WithOperation(op).WithUser(username).With(key, value).ToSlice()...)
}

// Ledger bundles the stores over one gateway with a shared lock map.
type Ledger struct {
	Users        *UserStore
	Transactions *TransactionStore
	Debts        *DebtStore
	Budgets      *BudgetStore
}

func New(g storage.Gateway, opts ...Option) *Ledger {
	b := newBase(g, opts...)
	txs := &TransactionStore{base: b}
	return &Ledger{
		Users:        &UserStore{base: b},
		Transactions: txs,
		Debts:        &DebtStore{base: b, transactions: txs},
		Budgets:      &BudgetStore{base: b},
	}
}
