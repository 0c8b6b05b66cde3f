package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fractional digits kept for balances and amounts.
	AmountScale int32 = 4
	// RateScale is the number of fractional digits kept for exchange rates.
	RateScale int32 = 6
)

// MaxAmount is the largest balance or amount storage can hold: 15 integer
// and AmountScale fractional digits.
var MaxAmount = decimal.RequireFromString("999999999999999.9999")

// ValidateAmount checks that amount is strictly positive, fits the
// account precision and does not exceed MaxAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, MaxAmount)
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d fractional digits allowed", ErrInvalidAmount, AmountScale)
	}

	return nil
}

// CrossRate derives the from->to rate out of two rates quoted against the
// reference currency, rounded half-up to RateScale digits.
func CrossRate(rateFrom, rateTo decimal.Decimal) decimal.Decimal {
	return rateFrom.DivRound(rateTo, RateScale)
}

// Quote is the outcome of pricing a movement between two currencies.
type Quote struct {
	// Rate is absent when both sides share a currency.
	Rate     decimal.NullDecimal
	Credited decimal.Decimal
}

// QuoteMovement prices amount (in from) for an account held in to.
// The cross rate is rounded to RateScale first, then the credited amount is
// rounded to AmountScale. Both steps round half-up.
func QuoteMovement(amount decimal.Decimal, from, to Currency, rateFrom, rateTo decimal.Decimal) Quote {
	if from == to {
		return Quote{Credited: amount}
	}

	rate := CrossRate(rateFrom, rateTo)

	return Quote{
		Rate:     decimal.NewNullDecimal(rate),
		Credited: amount.Mul(rate).Round(AmountScale),
	}
}
