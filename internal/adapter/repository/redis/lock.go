package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/transferledger/internal/domain"
)

const accountLockPrefix = "ledger:lock:account:"

// LockOptions tunes redsync mutexes.
type LockOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultLockOptions returns options sized for a single transfer.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// AccountLocker implements usecase.AccountLocker with a Redis distributed lock.
type AccountLocker struct {
	redsync *redsync.Redsync
	opts    LockOptions
	logger  zerolog.Logger
}

// NewAccountLocker creates a new AccountLocker.
func NewAccountLocker(client *redis.Client, opts LockOptions, logger zerolog.Logger) *AccountLocker {
	defaults := DefaultLockOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = defaults.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = defaults.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaults.RetryDelay
	}

	return &AccountLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger,
	}
}

// WithAccountLock runs fn while holding the lock for accountID. Errors from fn
// are returned unchanged; failing to acquire the lock is a storage failure.
func (l *AccountLocker) WithAccountLock(ctx context.Context, accountID string, fn func(context.Context) error) error {
	key := accountLockPrefix + accountID

	mutex := l.redsync.NewMutex(
		key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		l.logger.Warn().Err(err).Str("lock", key).Msg("failed to acquire account lock")
		return domain.NewStorageError("acquire account lock", err)
	}

	defer func() {
		// release with a fresh context so a cancelled request still unlocks
		unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if ok, err := mutex.UnlockContext(unlockCtx); !ok || err != nil {
			if err == nil {
				err = errors.New("lock expired before release")
			}
			l.logger.Error().Err(err).Str("lock", key).Msg("failed to release account lock")
		}
	}()

	return fn(ctx)
}
