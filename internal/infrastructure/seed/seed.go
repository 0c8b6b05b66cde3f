// Package seed reads the bootstrap fixture loaded into an empty ledger.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

//go:embed default.yaml
var defaultFixture []byte

// Amounts are strings in the file so YAML never routes them through float64.
type fileFixture struct {
	Rates []struct {
		Currency string `yaml:"currency"`
		Rate     string `yaml:"rate"`
	} `yaml:"rates"`
	Users []struct {
		Username string `yaml:"username"`
		Accounts []struct {
			Currency string `yaml:"currency"`
			Balance  string `yaml:"balance"`
		} `yaml:"accounts"`
	} `yaml:"users"`
}

// Default returns the built-in fixture.
func Default() (usecase.SeedFixture, error) {
	return Parse(bytes.NewReader(defaultFixture))
}

// Load reads the fixture at path, or the built-in one when path is empty.
func Load(path string) (usecase.SeedFixture, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return usecase.SeedFixture{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a YAML fixture. Unknown keys are rejected.
func Parse(r io.Reader) (usecase.SeedFixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw fileFixture
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return usecase.SeedFixture{}, fmt.Errorf("decode seed fixture: %w", err)
	}

	var fixture usecase.SeedFixture

	for i, r := range raw.Rates {
		currency, err := parseCurrency(r.Currency)
		if err != nil {
			return usecase.SeedFixture{}, fmt.Errorf("rates[%d]: %w", i, err)
		}
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return usecase.SeedFixture{}, fmt.Errorf("rates[%d]: %w: %q", i, domain.ErrInvalidRate, r.Rate)
		}
		fixture.Rates = append(fixture.Rates, usecase.SeedRate{Currency: currency, Rate: rate})
	}

	for i, u := range raw.Users {
		user := usecase.SeedUser{Username: u.Username}
		for j, a := range u.Accounts {
			currency, err := parseCurrency(a.Currency)
			if err != nil {
				return usecase.SeedFixture{}, fmt.Errorf("users[%d].accounts[%d]: %w", i, j, err)
			}
			balance, err := decimal.NewFromString(a.Balance)
			if err != nil {
				return usecase.SeedFixture{}, fmt.Errorf("users[%d].accounts[%d]: %w: %q", i, j, domain.ErrInvalidAmount, a.Balance)
			}
			user.Accounts = append(user.Accounts, usecase.SeedAccount{Currency: currency, Balance: balance})
		}
		fixture.Users = append(fixture.Users, user)
	}

	return fixture, nil
}

func parseCurrency(s string) (domain.Currency, error) {
	c := domain.Currency(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, s)
	}
	return c, nil
}
