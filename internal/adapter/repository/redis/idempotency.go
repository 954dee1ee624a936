package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/transferledger/internal/usecase"
)

const idempotencyPrefix = "ledger:idempotency:"

// claimScript sets KEYS[1] unless it exists and returns the value it found.
// A nil reply means the caller now owns the key.
var claimScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
  return false
end
return redis.call('GET', KEYS[1])
`)

// IdempotencyStore implements usecase.IdempotencyStore. Claims are a single
// script call, so two concurrent transfers with the same key can never both
// proceed.
type IdempotencyStore struct {
	client *redis.Client
	ns     namespace
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ns: idempotencyPrefix}
}

// CheckAndSet claims key with value (usecase.IdempotencyProcessingMarker
// when nil). If key was
// already claimed it reports true and the value stored under it.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, []byte, error) {
	if ttl <= 0 {
		return false, nil, fmt.Errorf("idempotency ttl must be positive, got %s", ttl)
	}
	if value == nil {
		value = []byte(usecase.IdempotencyProcessingMarker)
	}

	existing, err := claimScript.Run(ctx, s.client, []string{s.ns.key(key)}, value, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	}
	return true, []byte(existing), nil
}

// Update replaces the claim on key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.ns.key(key), response, ttl).Err()
}

// Release drops the claim so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.ns.key(key)).Err()
}
