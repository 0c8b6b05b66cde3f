package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of ledger operation a Transaction records.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeConversion TransactionType = "CONVERSION"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransfer, TransactionTypeConversion:
		return true
	}
	return false
}

var errMalformedTransaction = errors.New("malformed transaction record")

// Transaction is an immutable record of one completed ledger operation.
// Accounts are referenced by internal ID only.
type Transaction struct {
	ID            int64
	Type          TransactionType
	FromAccountID *int64
	ToAccountID   int64
	// Amount is denominated in the source account's currency, or in the
	// destination currency for deposits.
	Amount          decimal.Decimal
	ConvertedAmount decimal.Decimal
	RateUsed        decimal.NullDecimal
	CreatedAt       time.Time
}

// NewDepositTransaction builds the record for a deposit into account.
func NewDepositTransaction(account *Account, amount decimal.Decimal, at time.Time) *Transaction {
	return &Transaction{
		Type:            TransactionTypeDeposit,
		ToAccountID:     account.ID,
		Amount:          amount,
		ConvertedAmount: amount,
		CreatedAt:       at,
	}
}

// NewMovementTransaction builds the record for a transfer or conversion.
func NewMovementTransaction(typ TransactionType, from, to *Account, amount decimal.Decimal, quote Quote, at time.Time) *Transaction {
	fromID := from.ID

	return &Transaction{
		Type:            typ,
		FromAccountID:   &fromID,
		ToAccountID:     to.ID,
		Amount:          amount,
		ConvertedAmount: quote.Credited,
		RateUsed:        quote.Rate,
		CreatedAt:       at,
	}
}

// Validate checks the structural invariants of a record before it is logged.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return errMalformedTransaction
	}

	if (t.Type == TransactionTypeDeposit) != (t.FromAccountID == nil) {
		return errMalformedTransaction
	}

	// A cross-currency credit may round down to zero; the debit may not.
	if t.Amount.LessThanOrEqual(decimal.Zero) || t.ConvertedAmount.IsNegative() {
		return ErrInvalidAmount
	}

	if t.Type == TransactionTypeDeposit && t.RateUsed.Valid {
		return errMalformedTransaction
	}

	return nil
}

// IsCrossCurrency reports whether a conversion rate was applied.
func (t *Transaction) IsCrossCurrency() bool {
	return t.RateUsed.Valid
}
