package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// BalanceUseCase reports a user's total balance in the reference currency.
// Results are recomputed from current balances and rates on every call.
type BalanceUseCase struct {
	userRepo    UserRepository
	accountRepo AccountRepository
	rates       RateResolver
	clock       Clock
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(userRepo UserRepository, accountRepo AccountRepository, rates RateResolver, clock Clock) *BalanceUseCase {
	return &BalanceUseCase{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		rates:       rates,
		clock:       clock,
	}
}

// GetTotalBalance sums every account of userID converted to the reference
// currency. The sum is rounded once, after all accounts are added.
func (uc *BalanceUseCase) GetTotalBalance(ctx context.Context, userID int64) (*domain.TotalBalance, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rates := make(map[domain.Currency]decimal.Decimal)
	for _, a := range accounts {
		if a.Currency.IsReference() {
			continue
		}
		if _, ok := rates[a.Currency]; ok {
			continue
		}

		rate, err := uc.rates.RateToReference(ctx, a.Currency)
		if err != nil {
			return nil, err
		}
		rates[a.Currency] = rate
	}

	total, err := domain.ReferenceTotal(accounts, rates)
	if err != nil {
		return nil, err
	}

	return &domain.TotalBalance{
		UserID:     userID,
		Total:      total,
		Currency:   domain.ReferenceCurrency,
		ComputedAt: uc.clock.Now(),
	}, nil
}
