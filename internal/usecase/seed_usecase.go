package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// SeedFixture is the initial data loaded into an empty store.
type SeedFixture struct {
	Rates []SeedRate
	Users []SeedUser
}

// SeedRate is one rate-to-reference entry of a fixture.
type SeedRate struct {
	Currency domain.Currency
	Rate     decimal.Decimal
}

// SeedUser is one user of a fixture together with their accounts.
type SeedUser struct {
	Username string
	Accounts []SeedAccount
}

// SeedAccount is one account of a fixture user.
type SeedAccount struct {
	Currency domain.Currency
	Balance  decimal.Decimal
}

// SeedResult summarizes what a seed run created.
type SeedResult struct {
	RatesCreated int
	Users        []*domain.User
	Accounts     []*domain.Account
}

// SeedUseCase bootstraps rates, users and accounts.
type SeedUseCase struct {
	userRepo UserCounter
	rateRepo RateRepository
	users    *UserUseCase
	accounts *AccountUseCase
	rates    *RateUseCase
}

// UserCounter is the part of UserRepository the seeder needs.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// NewSeedUseCase creates a new SeedUseCase.
func NewSeedUseCase(userRepo UserCounter, rateRepo RateRepository, users *UserUseCase, accounts *AccountUseCase, rates *RateUseCase) *SeedUseCase {
	return &SeedUseCase{
		userRepo: userRepo,
		rateRepo: rateRepo,
		users:    users,
		accounts: accounts,
		rates:    rates,
	}
}

// Seed stores every fixture rate that is missing, then creates the fixture
// users and accounts if the store has no users yet.
func (uc *SeedUseCase) Seed(ctx context.Context, fixture SeedFixture) (*SeedResult, error) {
	result := &SeedResult{}
	logger := zerolog.Ctx(ctx)

	for _, r := range fixture.Rates {
		_, err := uc.rateRepo.Get(ctx, r.Currency)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRateNotFound) {
			return nil, err
		}

		if _, err := uc.rates.SetRate(ctx, SetRateInput{Currency: r.Currency, Rate: r.Rate}); err != nil {
			return nil, fmt.Errorf("seed rate %s: %w", r.Currency, err)
		}
		result.RatesCreated++
	}

	count, err := uc.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	if count > 0 {
		logger.Info().Int64("users", count).Msg("store already populated, skipping user seed")
		return result, nil
	}

	for _, su := range fixture.Users {
		user, err := uc.users.CreateUser(ctx, CreateUserInput{Username: su.Username})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", su.Username, err)
		}
		result.Users = append(result.Users, user)

		for _, sa := range su.Accounts {
			account, err := uc.accounts.OpenAccount(ctx, OpenAccountInput{
				UserID:         user.ID,
				Currency:       sa.Currency,
				OpeningBalance: sa.Balance,
			})
			if err != nil {
				return nil, fmt.Errorf("seed %s account for %s: %w", sa.Currency, su.Username, err)
			}
			result.Accounts = append(result.Accounts, account)
		}
	}

	logger.Info().
		Int("rates", result.RatesCreated).
		Int("users", len(result.Users)).
		Int("accounts", len(result.Accounts)).
		Msg("seed data loaded")

	return result, nil
}
