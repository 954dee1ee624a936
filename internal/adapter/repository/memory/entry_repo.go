package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

// ErrTxRequired is returned when a write is attempted outside a transaction.
var ErrTxRequired = errors.New("memory: append requires a transaction")

// EntryStore is an in-process, append-only ledger implementing
// usecase.EntryRepository.
type EntryStore struct {
	mu        sync.RWMutex
	entries   []*domain.Entry
	byAccount map[string][]*domain.Entry

	locksMu sync.Mutex
	locks   map[string]*accountLock
}

// NewEntryStore creates an empty EntryStore.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		byAccount: make(map[string][]*domain.Entry),
		locks:     make(map[string]*accountLock),
	}
}

// LockAccount blocks until the account lock is free or ctx is done.
func (s *EntryStore) LockAccount(ctx context.Context, tx usecase.Transaction, accountID string) error {
	memTx, err := asTx(s, tx)
	if err != nil {
		return err
	}

	if _, ok := memTx.held[accountID]; ok {
		return nil
	}

	l := s.accountLock(accountID)
	if err := l.lock(ctx); err != nil {
		return err
	}

	memTx.held[accountID] = l

	return nil
}

// ListByAccount returns committed entries of accountID plus those buffered in tx.
func (s *EntryStore) ListByAccount(ctx context.Context, tx usecase.Transaction, accountID string) ([]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	committed := s.byAccount[accountID]
	entries := make([]*domain.Entry, 0, len(committed))
	for _, e := range committed {
		entries = append(entries, cloneEntry(e))
	}
	s.mu.RUnlock()

	if tx != nil {
		memTx, err := asTx(s, tx)
		if err != nil {
			return nil, err
		}

		for _, e := range memTx.pending {
			if e.AccountID == accountID {
				entries = append(entries, cloneEntry(e))
			}
		}
	}

	return entries, nil
}

// AppendPair buffers both legs in tx. They become visible together on Commit.
func (s *EntryStore) AppendPair(ctx context.Context, tx usecase.Transaction, debit, credit *domain.Entry) error {
	if tx == nil {
		return ErrTxRequired
	}

	memTx, err := asTx(s, tx)
	if err != nil {
		return err
	}

	if err := domain.ValidatePair(debit, credit); err != nil {
		return err
	}

	memTx.pending = append(memTx.pending, cloneEntry(debit), cloneEntry(credit))

	return nil
}

// Totals aggregates every committed entry.
func (s *EntryStore) Totals(ctx context.Context) (usecase.LedgerTotals, error) {
	if err := ctx.Err(); err != nil {
		return usecase.LedgerTotals{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		count int64
		sum   decimal.Decimal
	}

	groups := make(map[string]*group)
	totals := usecase.LedgerTotals{TotalAmount: decimal.Zero}

	for _, e := range s.entries {
		totals.TotalAmount = totals.TotalAmount.Add(e.Amount)
		totals.EntryCount++

		g, ok := groups[e.TransferID]
		if !ok {
			g = &group{sum: decimal.Zero}
			groups[e.TransferID] = g
		}
		g.count++
		g.sum = g.sum.Add(e.Amount)
	}

	for _, g := range groups {
		if g.count != 2 || !g.sum.IsZero() {
			totals.UnpairedEntries += g.count
		}
	}

	return totals, nil
}

// Entries returns a snapshot of every committed entry in append order.
func (s *EntryStore) Entries() []*domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cloneEntry(e))
	}

	return out
}

func (s *EntryStore) publish(entries []*domain.Entry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries = append(s.entries, e)
		s.byAccount[e.AccountID] = append(s.byAccount[e.AccountID], e)
	}
}

func (s *EntryStore) accountLock(accountID string) *accountLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[accountID]
	if !ok {
		l = newAccountLock()
		s.locks[accountID] = l
	}

	return l
}

// accountLock is a mutex whose acquisition can be abandoned via context.
type accountLock struct {
	ch chan struct{}
}

func newAccountLock() *accountLock {
	return &accountLock{ch: make(chan struct{}, 1)}
}

func (l *accountLock) lock(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *accountLock) unlock() {
	<-l.ch
}

func cloneEntry(e *domain.Entry) *domain.Entry {
	c := *e
	return &c
}
