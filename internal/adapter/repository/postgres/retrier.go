package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes a transfer may safely be replayed after.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier. It replays a whole transfer when
// Postgres aborted it for a concurrency reason and passes every other error
// through untouched.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
	logger          zerolog.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps the number of replays after the first attempt.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithMaxElapsed bounds the total time spent retrying.
func WithMaxElapsed(d time.Duration) RetrierOption {
	return func(r *Retrier) {
		if d > 0 {
			r.maxElapsed = d
		}
	}
}

// WithBackoffIntervals sets the first and the largest wait between attempts.
func WithBackoffIntervals(initial, ceiling time.Duration) RetrierOption {
	return func(r *Retrier) {
		if initial > 0 {
			r.initialInterval = initial
		}
		if ceiling >= initial {
			r.maxInterval = ceiling
		}
	}
}

// NewRetrier creates a Retrier with three replays and exponential backoff
// starting at 50ms.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		maxElapsed:      10 * time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs operation until it succeeds, fails with a non-retryable error,
// or the retry budget is spent. The last error is returned as is.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}

		code, retryable := retryableCode(err)
		if !retryable || attempt > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Msg("transfer aborted by database, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

func retryableCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return pgErr.Code, true
	}
	return pgErr.Code, false
}
