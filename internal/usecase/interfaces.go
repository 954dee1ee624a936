package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferledger/internal/domain"
)

// AccountResolver resolves account numbers owned by account management.
type AccountResolver interface {
	// ResolveAccount returns domain.ErrAccountNotFound when no account has number.
	ResolveAccount(ctx context.Context, number string) (*domain.Account, error)
}

// EntryRepository defines data access for the append-only ledger.
type EntryRepository interface {
	// LockAccount takes an exclusive lock on accountID held until tx ends.
	LockAccount(ctx context.Context, tx Transaction, accountID string) error
	// ListByAccount returns every entry of accountID. A nil tx reads committed state.
	ListByAccount(ctx context.Context, tx Transaction, accountID string) ([]*domain.Entry, error)
	// AppendPair appends both legs of a transfer inside tx.
	AppendPair(ctx context.Context, tx Transaction, debit, credit *domain.Entry) error
	// Totals returns ledger-wide aggregates used by consistency checks.
	Totals(ctx context.Context) (LedgerTotals, error)
}

// LedgerTotals aggregates the whole ledger.
type LedgerTotals struct {
	TotalAmount     decimal.Decimal
	EntryCount      int64
	UnpairedEntries int64
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// AccountLocker serializes work on a single account across processes.
type AccountLocker interface {
	WithAccountLock(ctx context.Context, accountID string, fn func(context.Context) error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder receives ledger operation outcomes. Outcome is "success" or
// the failure's domain.ErrorKind.
type MetricsRecorder interface {
	RecordTransfer(outcome string, amount decimal.Decimal, elapsed time.Duration)
	RecordBalanceQuery(outcome string, elapsed time.Duration)
}
