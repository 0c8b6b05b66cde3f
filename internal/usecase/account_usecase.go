package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	userRepo    UserRepository
	numberGen   IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase. numberGen produces the
// external account numbers.
func NewAccountUseCase(accountRepo AccountRepository, userRepo UserRepository, numberGen IDGenerator, clock Clock, metrics *metrics.Metrics) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		numberGen:   numberGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	UserID         int64
	Currency       domain.Currency
	OpeningBalance decimal.Decimal
}

// OpenAccount opens an account for an existing user. The account number is
// generated here once and never changes.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	if !input.Currency.IsValid() {
		return nil, domain.ErrInvalidCurrency
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if !input.OpeningBalance.IsZero() {
		if err := domain.ValidateAmount(input.OpeningBalance); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now()

	account := &domain.Account{
		Number:         uc.numberGen.Generate(),
		UserID:         input.UserID,
		Currency:       input.Currency,
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.WithLabelValues(account.Currency.String()).Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by its external number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountRepo.GetByNumber(ctx, number)
}

// ListUserAccounts lists every account owned by userID.
func (uc *AccountUseCase) ListUserAccounts(ctx context.Context, userID int64) ([]*domain.Account, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return uc.accountRepo.ListByUser(ctx, userID)
}
