package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a non-negative balance in a single currency.
type Account struct {
	ID             int64
	Number         string
	UserID         int64
	Currency       Currency
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return fmt.Errorf("%w on account %s", ErrInsufficientFunds, a.Number)
	}
	return nil
}

// ValidateCredit checks that crediting amount keeps the balance storable.
func (a *Account) ValidateCredit(amount decimal.Decimal) error {
	if a.Balance.Add(amount).GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: balance of account %s would exceed %s", ErrInvalidAmount, a.Number, MaxAmount)
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// OwnedBy reports whether the account belongs to userID.
func (a *Account) OwnedBy(userID int64) bool {
	return a.UserID == userID
}
