package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TotalBalance is a user's balance across all accounts in the reference currency.
type TotalBalance struct {
	UserID     int64
	Total      decimal.Decimal
	Currency   Currency
	ComputedAt time.Time
}

// ReferenceTotal converts every balance into the reference currency and sums
// them. Rounding to AmountScale happens once, on the final sum.
func ReferenceTotal(accounts []*Account, rates map[Currency]decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, a := range accounts {
		if a.Currency.IsReference() {
			total = total.Add(a.Balance)
			continue
		}

		rate, ok := rates[a.Currency]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrRateNotFound, a.Currency)
		}

		total = total.Add(a.Balance.Mul(rate))
	}

	return total.Round(AmountScale), nil
}
