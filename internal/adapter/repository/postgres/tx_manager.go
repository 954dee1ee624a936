package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/transferledger/internal/usecase"
)

var (
	// ErrTxRequired is returned when a write is attempted outside a transaction.
	ErrTxRequired = errors.New("postgres: operation requires a transaction")
	// ErrForeignTransaction is returned when a transaction was not started by TxManager.
	ErrForeignTransaction = errors.New("postgres: transaction was not started by this manager")
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new read-committed transaction. Transfers rely on the
// per-account advisory lock rather than a stricter isolation level.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a finished transaction
// is not an error.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}

func pgxTxFrom(tx usecase.Transaction) (pgx.Tx, error) {
	if tx == nil {
		return nil, ErrTxRequired
	}

	pgTx, ok := tx.(*Tx)
	if !ok {
		return nil, ErrForeignTransaction
	}

	return pgTx.PgxTx(), nil
}
