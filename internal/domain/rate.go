package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceRate is the fixed rate of the reference currency to itself.
var ReferenceRate = decimal.NewFromInt(1)

// ExchangeRate is the price of one unit of Currency in the reference currency.
type ExchangeRate struct {
	Currency  Currency
	Rate      decimal.Decimal
	UpdatedAt time.Time
}

// Validate checks the rate table invariants for a single entry.
func (r *ExchangeRate) Validate() error {
	if !r.Currency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, r.Currency)
	}

	if r.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	if r.Currency.IsReference() && !r.Rate.Equal(ReferenceRate) {
		return fmt.Errorf("%w: %s rate is fixed at 1", ErrInvalidRate, ReferenceCurrency)
	}

	return nil
}
