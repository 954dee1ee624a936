package memory

import (
	"context"
	"errors"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

var (
	// ErrTxClosed is returned when a committed or rolled back transaction is reused.
	ErrTxClosed = errors.New("memory: transaction already closed")
	// ErrForeignTransaction is returned when a transaction from another store is used.
	ErrForeignTransaction = errors.New("memory: transaction does not belong to this store")
)

// TxManager implements usecase.TransactionManager for an EntryStore.
type TxManager struct {
	store *EntryStore
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *EntryStore) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{store: m.store, held: make(map[string]*accountLock)}, nil
}

// Tx buffers appended entries until Commit and holds account locks until the
// transaction ends. A Tx must not be shared between goroutines.
type Tx struct {
	store   *EntryStore
	pending []*domain.Entry
	held    map[string]*accountLock
	closed  bool
}

// Commit publishes the buffered entries atomically and releases held locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}

	t.store.publish(t.pending)
	t.finish()

	return nil
}

// Rollback discards buffered entries and releases held locks. Rolling back a
// closed transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}

	t.finish()

	return nil
}

func (t *Tx) finish() {
	t.closed = true
	t.pending = nil

	for id, l := range t.held {
		l.unlock()
		delete(t.held, id)
	}
}

func asTx(store *EntryStore, tx usecase.Transaction) (*Tx, error) {
	memTx, ok := tx.(*Tx)
	if !ok || memTx.store != store {
		return nil, ErrForeignTransaction
	}

	if memTx.closed {
		return nil, ErrTxClosed
	}

	return memTx, nil
}
