package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
)

func TestDefaultFixture(t *testing.T) {
	fixture, err := Default()
	require.NoError(t, err)

	require.Len(t, fixture.Rates, 3)
	assert.Equal(t, domain.CurrencyUSD, fixture.Rates[0].Currency)
	assert.Equal(t, "39.50", fixture.Rates[0].Rate.StringFixed(2))
	assert.Equal(t, "42.10", fixture.Rates[1].Rate.StringFixed(2))

	require.Len(t, fixture.Users, 2)
	assert.Equal(t, "user_one", fixture.Users[0].Username)
	require.Len(t, fixture.Users[0].Accounts, 3)
	assert.True(t, fixture.Users[0].Accounts[0].Balance.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "user_two", fixture.Users[1].Username)
	assert.True(t, fixture.Users[1].Accounts[2].Balance.Equal(decimal.NewFromInt(50)))
}

func TestParseKeepsDecimalPrecision(t *testing.T) {
	fixture, err := Parse(strings.NewReader(`
rates:
  - {currency: USD, rate: "0.123457"}
users:
  - username: precise
    accounts:
      - {currency: USD, balance: "0.0001"}
`))
	require.NoError(t, err)
	assert.Equal(t, "0.123457", fixture.Rates[0].Rate.String())
	assert.Equal(t, "0.0001", fixture.Users[0].Accounts[0].Balance.String())
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown currency", "rates:\n  - {currency: GBP, rate: \"50\"}\n", domain.ErrInvalidCurrency},
		{"bad rate", "rates:\n  - {currency: USD, rate: \"abc\"}\n", domain.ErrInvalidRate},
		{"bad balance", "users:\n  - username: x1x\n    accounts:\n      - {currency: USD, balance: \"1,5\"}\n", domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("currencies: []\n"))
	assert.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	fixture, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fixture.Rates)
	assert.Empty(t, fixture.Users)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - username: solo\n"), 0o600))

	fixture, err := Load(path)
	require.NoError(t, err)
	require.Len(t, fixture.Users, 1)
	assert.Equal(t, "solo", fixture.Users[0].Username)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	fixture, err = Load("")
	require.NoError(t, err)
	assert.Len(t, fixture.Users, 2)
}
