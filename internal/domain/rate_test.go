package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExchangeRate_Validate(t *testing.T) {
	tests := []struct {
		name        string
		rate        ExchangeRate
		expectError error
	}{
		{"valid usd", ExchangeRate{Currency: CurrencyUSD, Rate: decimal.RequireFromString("39.5")}, nil},
		{"reference at one", ExchangeRate{Currency: CurrencyUAH, Rate: decimal.NewFromInt(1)}, nil},
		{"reference not one", ExchangeRate{Currency: CurrencyUAH, Rate: decimal.NewFromInt(2)}, ErrInvalidRate},
		{"zero rate", ExchangeRate{Currency: CurrencyEUR, Rate: decimal.Zero}, ErrInvalidRate},
		{"negative rate", ExchangeRate{Currency: CurrencyEUR, Rate: decimal.NewFromInt(-1)}, ErrInvalidRate},
		{"unknown currency", ExchangeRate{Currency: "GBP", Rate: decimal.NewFromInt(50)}, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rate.Validate()
			if tt.expectError == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}
