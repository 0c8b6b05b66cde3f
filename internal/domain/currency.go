package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code supported by the bank.
type Currency string

const (
	CurrencyUAH Currency = "UAH"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ReferenceCurrency is the currency every exchange rate is quoted against.
const ReferenceCurrency = CurrencyUAH

var supportedCurrencies = []Currency{CurrencyUAH, CurrencyUSD, CurrencyEUR}

// SupportedCurrencies returns the fixed set of currencies accounts may hold.
func SupportedCurrencies() []Currency {
	out := make([]Currency, len(supportedCurrencies))
	copy(out, supportedCurrencies)
	return out
}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	for _, s := range supportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// IsReference reports whether c is the reference currency.
func (c Currency) IsReference() bool {
	return c == ReferenceCurrency
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}
