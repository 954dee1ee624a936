package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// NoopLocker runs fn without any extra locking. The storage-level account lock
// taken inside the transfer transaction is enough for a single database.
type NoopLocker struct{}

// WithAccountLock calls fn directly.
func (NoopLocker) WithAccountLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type noopRecorder struct{}

func (noopRecorder) RecordTransfer(string, decimal.Decimal, time.Duration) {}

func (noopRecorder) RecordBalanceQuery(string, time.Duration) {}
