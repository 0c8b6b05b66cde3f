package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create stores account and assigns its internal ID.
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	// GetByNumbersForUpdate returns the accounts that exist among numbers,
	// locked until tx ends. Locks are taken in ascending internal ID order.
	GetByNumbersForUpdate(ctx context.Context, tx Tx, numbers []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// RateRepository defines data access for exchange rates.
type RateRepository interface {
	Get(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error)
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
	List(ctx context.Context) ([]*domain.ExchangeRate, error)
}

// TransactionRepository is the append-only transaction log.
type TransactionRepository interface {
	// Append stores record and assigns its ID.
	Append(ctx context.Context, tx Tx, record *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	// ListByAccount returns records touching accountID, newest first.
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error)
	SumByAccount(ctx context.Context, accountID int64) (credits, debits decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Tx represents a storage transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the timestamps written to records.
type Clock interface {
	Now() time.Time
}

// RateResolver returns the rate-to-reference of a currency.
type RateResolver interface {
	RateToReference(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
}

// Cache defines caching operations.
type Cache interface {
	// Get returns nil without error on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent stores value only when key is missing and reports whether it did.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request can be replayed.
	Release(ctx context.Context, key string) error
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
