package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/transferledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	anonymousSubject = "anonymous"
)

// storedResponse is what gets persisted for a completed request.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays the first successful response for a key.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	replays prometheus.Counter
	logger  zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. replays may be nil.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, replays prometheus.Counter, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, replays: replays, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		clientKey := r.Header.Get(IdempotencyKeyHeader)
		if clientKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := storeKey(r, clientKey)

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, []byte(usecase.IdempotencyProcessingMarker), m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "idempotency check failed")
			return
		}

		if exists {
			m.replay(w, key, cached)
			return
		}

		recorder := &responseRecorder{
			statusRecorder: newStatusRecorder(w),
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		// The request context may already be cancelled once the handler returns.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), time.Second)
		defer cancel()

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			if err := m.store.Release(ctx, key); err != nil {
				m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
			return
		}

		payload, _ := json.Marshal(storedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
		if err := m.store.Update(ctx, key, payload, m.ttl); err != nil {
			m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

// storeKey scopes a client key to the token subject, method and route.
func storeKey(r *http.Request, clientKey string) string {
	subject := anonymousSubject
	if claims, ok := ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		subject = claims.Subject
	}

	route := routePattern(r)
	if route == unmatchedRoute {
		route = r.URL.Path
	}

	return strings.Join([]string{subject, r.Method, route, clientKey}, ":")
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key string, cached []byte) {
	if string(cached) == usecase.IdempotencyProcessingMarker {
		writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is still being processed")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil || stored.Status == 0 {
		m.logger.Warn().Str("idempotency_key", key).Msg("unreadable idempotent response")
		writeError(w, http.StatusConflict, "REQUEST_IN_PROGRESS", "a request with this idempotency key is still being processed")
		return
	}

	if m.replays != nil {
		m.replays.Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	w.Write(stored.Body)
}

type responseRecorder struct {
	*statusRecorder

	body *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
