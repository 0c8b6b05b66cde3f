package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
)

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	queries *generated.Queries
	retrier *Retrier
}

// NewRateRepository creates a RateRepository. Upserts are retried through
// retrier when it is not nil.
func NewRateRepository(db generated.DBTX, retrier *Retrier) *RateRepository {
	return &RateRepository{queries: generated.New(db), retrier: retrier}
}

// Get returns the stored rate of currency.
func (r *RateRepository) Get(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error) {
	row, err := r.queries.GetExchangeRate(ctx, string(currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateNotFound, currency)
		}

		return nil, mapError(err)
	}

	return rowToRate(row), nil
}

// Upsert inserts or replaces the rate of rate.Currency.
func (r *RateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	params := generated.UpsertExchangeRateParams{
		Currency:  string(rate.Currency),
		Rate:      decimalToNumeric(rate.Rate),
		UpdatedAt: timeToPgTimestamptz(rate.UpdatedAt),
	}

	upsert := func() error {
		return r.queries.UpsertExchangeRate(ctx, params)
	}

	var err error
	if r.retrier != nil {
		err = r.retrier.Retry(ctx, "rate_upsert", upsert)
	} else {
		err = upsert()
	}

	return mapError(err)
}

// List returns all stored rates ordered by currency.
func (r *RateRepository) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	rows, err := r.queries.ListExchangeRates(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	rates := make([]*domain.ExchangeRate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, rowToRate(row))
	}

	return rates, nil
}

func rowToRate(row generated.ExchangeRate) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		Currency:  domain.Currency(row.Currency),
		Rate:      numericToDecimal(row.Rate),
		UpdatedAt: row.UpdatedAt.Time,
	}
}
