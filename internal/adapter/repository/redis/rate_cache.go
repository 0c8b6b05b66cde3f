package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// CachedRateRepository serves rate reads from a cache in front of the
// authoritative store. Upsert writes the new rate through to the cache, and
// a read that misses only fills an absent key, so a fill carrying a rate read
// before an Upsert never replaces the rate that Upsert cached.
type CachedRateRepository struct {
	next  usecase.RateRepository
	cache usecase.Cache
	ttl   time.Duration
}

type cachedRate struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCachedRateRepository wraps next with cache.
func NewCachedRateRepository(next usecase.RateRepository, cache usecase.Cache, ttl time.Duration) *CachedRateRepository {
	return &CachedRateRepository{next: next, cache: cache, ttl: ttl}
}

func rateKey(currency domain.Currency) string {
	return "rate:" + string(currency)
}

// Get returns the rate of currency, filling the cache on a miss.
// Cache failures fall through to the store.
func (r *CachedRateRepository) Get(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error) {
	logger := zerolog.Ctx(ctx)
	key := rateKey(currency)

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("rate cache read failed")
	}
	if raw != nil {
		var cached cachedRate
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &domain.ExchangeRate{Currency: currency, Rate: cached.Rate, UpdatedAt: cached.UpdatedAt}, nil
		}
		logger.Warn().Str("key", key).Msg("discarding malformed cached rate")
	}

	rate, err := r.next.Get(ctx, currency)
	if err != nil {
		return nil, err
	}

	raw, err = encodeRate(rate)
	if err == nil {
		_, err = r.cache.SetIfAbsent(ctx, key, raw, r.ttl)
	}
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("rate cache write failed")
	}

	return rate, nil
}

func encodeRate(rate *domain.ExchangeRate) ([]byte, error) {
	return json.Marshal(cachedRate{Rate: rate.Rate, UpdatedAt: rate.UpdatedAt})
}

// Upsert writes to the store, then replaces the cached entry with the new
// rate. When the cache write fails the entry is dropped instead.
func (r *CachedRateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	if err := r.next.Upsert(ctx, rate); err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	key := rateKey(rate.Currency)

	raw, err := encodeRate(rate)
	if err == nil {
		err = r.cache.Set(ctx, key, raw, r.ttl)
	}
	if err == nil {
		return nil
	}

	logger.Warn().Err(err).Str("key", key).Msg("rate cache write failed")
	if err := r.cache.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("rate cache invalidation failed")
	}

	return nil
}

// List always reads the store.
func (r *CachedRateRepository) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	return r.next.List(ctx)
}
