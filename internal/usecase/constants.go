package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction.
	// Lock waits past this surface as transient storage failures.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultPageSize and MaxPageSize bound list operations.
	DefaultPageSize = 20
	MaxPageSize     = 100

	// reconcilePageSize is the batch size used when walking every account.
	reconcilePageSize = 500
)

// NormalizePage clamps a page request to the supported bounds.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// IdempotencyPending marks a key whose first request is still in flight.
const IdempotencyPending = "processing"
