package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single transfer attempt including lock waits.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyProcessingMarker is stored under a claimed key until the
	// first request completes.
	IdempotencyProcessingMarker = "processing"

	// SuccessfulTransferMessage is returned to callers after a committed transfer.
	SuccessfulTransferMessage = "successful transfer"
)
