package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
)

// RateUseCase manages the rate-to-reference table.
type RateUseCase struct {
	rateRepo RateRepository
	clock    Clock
	metrics  *metrics.Metrics
}

// NewRateUseCase creates a new RateUseCase. metrics may be nil.
func NewRateUseCase(rateRepo RateRepository, clock Clock, metrics *metrics.Metrics) *RateUseCase {
	return &RateUseCase{
		rateRepo: rateRepo,
		clock:    clock,
		metrics:  metrics,
	}
}

// RateToReference returns how many reference units one unit of currency is
// worth. The reference currency is always exactly 1.
func (uc *RateUseCase) RateToReference(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if !currency.IsValid() {
		return decimal.Zero, domain.ErrInvalidCurrency
	}

	if currency.IsReference() {
		return domain.ReferenceRate, nil
	}

	rate, err := uc.rateRepo.Get(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Rate, nil
}

// GetRate returns the stored rate for currency.
func (uc *RateUseCase) GetRate(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error) {
	if !currency.IsValid() {
		return nil, domain.ErrInvalidCurrency
	}

	rate, err := uc.rateRepo.Get(ctx, currency)
	if errors.Is(err, domain.ErrRateNotFound) && currency.IsReference() {
		return &domain.ExchangeRate{Currency: currency, Rate: domain.ReferenceRate}, nil
	}

	return rate, err
}

// SetRateInput represents input for updating a rate.
type SetRateInput struct {
	Currency domain.Currency
	Rate     decimal.Decimal
}

// SetRate stores a new rate-to-reference, rounded to rate precision.
func (uc *RateUseCase) SetRate(ctx context.Context, input SetRateInput) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{
		Currency:  input.Currency,
		Rate:      input.Rate.Round(domain.RateScale),
		UpdatedAt: uc.clock.Now(),
	}

	if err := rate.Validate(); err != nil {
		return nil, err
	}

	if err := uc.rateRepo.Upsert(ctx, rate); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("currency", rate.Currency.String()).
		Str("rate", rate.Rate.StringFixed(domain.RateScale)).
		Msg("exchange rate updated")

	if uc.metrics != nil {
		uc.metrics.RateUpdates.WithLabelValues(rate.Currency.String()).Inc()
	}

	return rate, nil
}

// ListRates returns every stored rate.
func (uc *RateUseCase) ListRates(ctx context.Context) ([]*domain.ExchangeRate, error) {
	return uc.rateRepo.List(ctx)
}
