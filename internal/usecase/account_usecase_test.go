package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
	"github.com/iho/fxledger/internal/usecase/mocks"
)

func TestAccountUseCase_OpenAccount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	h := e.newHolder(t, "owner", nil)

	tests := []struct {
		name    string
		input   usecase.OpenAccountInput
		wantErr error
	}{
		{"zero balance", usecase.OpenAccountInput{UserID: h.user.ID, Currency: domain.CurrencyUSD}, nil},
		{"seeded balance", usecase.OpenAccountInput{UserID: h.user.ID, Currency: domain.CurrencyEUR, OpeningBalance: dec("300.00")}, nil},
		{"unknown user", usecase.OpenAccountInput{UserID: 999, Currency: domain.CurrencyUSD}, domain.ErrUserNotFound},
		{"unsupported currency", usecase.OpenAccountInput{UserID: h.user.ID, Currency: "GBP"}, domain.ErrInvalidCurrency},
		{"negative balance", usecase.OpenAccountInput{UserID: h.user.ID, Currency: domain.CurrencyUAH, OpeningBalance: dec("-1")}, domain.ErrInvalidAmount},
		{"too precise balance", usecase.OpenAccountInput{UserID: h.user.ID, Currency: domain.CurrencyUAH, OpeningBalance: dec("1.00001")}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := e.accounts.OpenAccount(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, acc.Number)
			assert.True(t, acc.Balance.Equal(tt.input.OpeningBalance))
			assert.True(t, acc.OpeningBalance.Equal(tt.input.OpeningBalance))

			got, err := e.accounts.GetAccount(ctx, acc.Number)
			require.NoError(t, err)
			assert.Equal(t, acc.ID, got.ID)
		})
	}

	list, err := e.accounts.ListUserAccounts(ctx, h.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = e.accounts.ListUserAccounts(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = e.accounts.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_NumberIsGeneratedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	numbers := mocks.NewMockIDGenerator(ctrl)
	clock := mocks.NewMockClock(ctrl)

	users.EXPECT().GetByID(gomock.Any(), int64(3)).Return(&domain.User{ID: 3}, nil)
	numbers.EXPECT().Generate().Return("8c6f3f1e-4d0a-4d0e-9a57-3a6f6f1c0b11").Times(1)
	clock.EXPECT().Now().Return(testNow)
	accounts.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.Account) error {
		a.ID = 11
		return nil
	})

	uc := usecase.NewAccountUseCase(accounts, users, numbers, clock, nil)

	acc, err := uc.OpenAccount(context.Background(), usecase.OpenAccountInput{UserID: 3, Currency: domain.CurrencyUAH})
	require.NoError(t, err)
	assert.Equal(t, int64(11), acc.ID)
	assert.Equal(t, "8c6f3f1e-4d0a-4d0e-9a57-3a6f6f1c0b11", acc.Number)
	assert.Equal(t, testNow, acc.CreatedAt)
}

func TestAccountUseCase_CreateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	numbers := mocks.NewMockIDGenerator(ctrl)
	clock := mocks.NewMockClock(ctrl)

	boom := errors.New("insert failed")
	users.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(&domain.User{ID: 1}, nil)
	numbers.EXPECT().Generate().Return("n")
	clock.EXPECT().Now().Return(testNow)
	accounts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(boom)

	uc := usecase.NewAccountUseCase(accounts, users, numbers, clock, nil)

	_, err := uc.OpenAccount(context.Background(), usecase.OpenAccountInput{UserID: 1, Currency: domain.CurrencyUSD})
	assert.ErrorIs(t, err, boom)
}
