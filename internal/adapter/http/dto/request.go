package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// Amounts travel as decimal strings. ToUseCaseInput expects a request that
// passed Validate.

// DepositRequest represents a request to deposit into an account.
type DepositRequest struct {
	AccountNumber string `json:"account_number" validate:"required"`
	Amount        string `json:"amount"         validate:"required,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput() usecase.DepositInput {
	return usecase.DepositInput{
		AccountNumber: r.AccountNumber,
		Amount:        decimal.RequireFromString(r.Amount),
	}
}

// TransferRequest represents a request to move funds between two accounts.
type TransferRequest struct {
	FromAccountNumber string `json:"from_account_number" validate:"required"`
	ToAccountNumber   string `json:"to_account_number"   validate:"required"`
	Amount            string `json:"amount"              validate:"required,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            decimal.RequireFromString(r.Amount),
	}
}

// ConvertRequest represents a currency exchange between two accounts of one user.
type ConvertRequest struct {
	FromAccountNumber string `json:"from_account_number" validate:"required"`
	ToAccountNumber   string `json:"to_account_number"   validate:"required"`
	Amount            string `json:"amount"              validate:"required,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *ConvertRequest) ToUseCaseInput(userID int64) usecase.ConvertInput {
	return usecase.ConvertInput{
		UserID:            userID,
		FromAccountNumber: r.FromAccountNumber,
		ToAccountNumber:   r.ToAccountNumber,
		Amount:            decimal.RequireFromString(r.Amount),
	}
}

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{Username: r.Username}
}

// OpenAccountRequest represents a request to open an account for a user.
type OpenAccountRequest struct {
	Currency       string `json:"currency"                  validate:"required,currency_code"`
	OpeningBalance string `json:"opening_balance,omitempty" validate:"omitempty,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(userID int64) usecase.OpenAccountInput {
	balance := decimal.Zero
	if r.OpeningBalance != "" {
		balance = decimal.RequireFromString(r.OpeningBalance)
	}

	return usecase.OpenAccountInput{
		UserID:         userID,
		Currency:       domain.Currency(r.Currency),
		OpeningBalance: balance,
	}
}

// SetRateRequest represents a new rate-to-reference for a currency.
type SetRateRequest struct {
	Rate string `json:"rate" validate:"required,numeric"`
}

// ToUseCaseInput converts to use case input.
func (r *SetRateRequest) ToUseCaseInput(currency domain.Currency) usecase.SetRateInput {
	return usecase.SetRateInput{
		Currency: currency,
		Rate:     decimal.RequireFromString(r.Rate),
	}
}
