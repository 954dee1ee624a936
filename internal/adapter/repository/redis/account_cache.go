package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/transferledger/internal/domain"
	"github.com/iho/transferledger/internal/usecase"
)

const accountKeyPrefix = "account:number:"

type cachedAccount struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// CachedAccountResolver is a read-through cache in front of an
// usecase.AccountResolver. Only successful lookups are cached, so a newly
// provisioned account becomes visible immediately.
type CachedAccountResolver struct {
	next   usecase.AccountResolver
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedAccountResolver creates a new CachedAccountResolver.
func NewCachedAccountResolver(next usecase.AccountResolver, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedAccountResolver {
	return &CachedAccountResolver{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// ResolveAccount returns the cached account or falls back to the wrapped resolver.
// Cache failures degrade to a direct lookup.
func (r *CachedAccountResolver) ResolveAccount(ctx context.Context, number string) (*domain.Account, error) {
	key := accountKeyPrefix + number

	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached cachedAccount
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil && cached.ID != "" {
			return &domain.Account{ID: cached.ID, Number: cached.Number}, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding malformed cached account")
	case !errors.Is(err, usecase.ErrCacheMiss):
		r.logger.Warn().Err(err).Str("key", key).Msg("account cache unavailable")
	}

	account, err := r.next.ResolveAccount(ctx, number)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedAccount{ID: account.ID, Number: account.Number})
	if err == nil {
		if err := r.cache.Set(ctx, key, string(payload), r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("failed to cache account")
		}
	}

	return account, nil
}
