package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e core.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// flakyGateway fails writes of one document while failing is set.
type flakyGateway struct {
	storage.Gateway
	mu       sync.Mutex
	document string
	failing  bool
}

func (g *flakyGateway) setFailing(doc string, failing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.document, g.failing = doc, failing
}

func (g *flakyGateway) Write(ctx context.Context, name string, body []byte) error {
	g.mu.Lock()
	fail := g.failing && name == g.document
	g.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return g.Gateway.Write(ctx, name, body)
}

func newTestGateway(t *testing.T) *flakyGateway {
	t.Helper()
	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return &flakyGateway{Gateway: fs}
}

func newTestLedger(t *testing.T) (*Ledger, *recordingPublisher, *flakyGateway) {
	t.Helper()
	g := newTestGateway(t)
	pub := &recordingPublisher{}
	l := New(g, WithLogger(log.Discard()), WithPublisher(pub), WithClock(func() time.Time { return testNow }))
	return l, pub, g
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y, m, d int) *time.Time {
	t := core.NewDate(y, m, d)
	return &t
}

func mustAdd(t *testing.T, l *Ledger, username string, tx core.Transaction) core.Transaction {
	t.Helper()
	stored, err := l.Transactions.AddTransaction(context.Background(), username, tx)
	if err != nil {
		t.Fatalf("AddTransaction(%s): %v", tx.Title, err)
	}
	return stored
}

func mustAddDebt(t *testing.T, l *Ledger, username string, d core.Debt) core.Debt {
	t.Helper()
	stored, err := l.Debts.AddDebt(context.Background(), username, d)
	if err != nil {
		t.Fatalf("AddDebt(%s): %v", d.Creditor, err)
	}
	return stored
}
