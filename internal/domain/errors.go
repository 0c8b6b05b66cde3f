package domain

import "errors"

var (
	// Input and business-rule errors. None of these are retryable.
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrSameAccount              = errors.New("source and destination accounts must differ")
	ErrSameCurrency             = errors.New("cannot convert into the same currency")
	ErrAccountNotFound          = errors.New("account not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrAccountOwnershipMismatch = errors.New("accounts must belong to the acting user")
	ErrInsufficientFunds        = errors.New("insufficient funds")

	// Rate table errors
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrInvalidCurrency = errors.New("unsupported currency")
	ErrInvalidRate     = errors.New("exchange rate must be positive")

	// Directory and log lookups
	ErrInvalidUsername     = errors.New("invalid username")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransientStorage marks lock timeouts, serialization failures and lost
	// connections. The atomic unit was rolled back and the caller may retry.
	ErrTransientStorage = errors.New("transient storage failure")
)

// Stable error codes returned to callers.
const (
	CodeInvalidAmount            = "INVALID_AMOUNT"
	CodeSameAccount              = "SAME_ACCOUNT"
	CodeSameCurrency             = "SAME_CURRENCY"
	CodeAccountNotFound          = "ACCOUNT_NOT_FOUND"
	CodeUserNotFound             = "USER_NOT_FOUND"
	CodeAccountOwnershipMismatch = "ACCOUNT_OWNERSHIP_MISMATCH"
	CodeInsufficientFunds        = "INSUFFICIENT_FUNDS"
	CodeRateNotFound             = "RATE_NOT_FOUND"
	CodeInvalidCurrency          = "INVALID_CURRENCY"
	CodeInvalidRate              = "INVALID_RATE"
	CodeInvalidUsername          = "INVALID_USERNAME"
	CodeDuplicateUser            = "DUPLICATE_USER"
	CodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
	CodeTransientStorageFailure  = "TRANSIENT_STORAGE_FAILURE"
	CodeInternal                 = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrSameAccount, CodeSameAccount},
	{ErrSameCurrency, CodeSameCurrency},
	{ErrAccountNotFound, CodeAccountNotFound},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrAccountOwnershipMismatch, CodeAccountOwnershipMismatch},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrRateNotFound, CodeRateNotFound},
	{ErrInvalidCurrency, CodeInvalidCurrency},
	{ErrInvalidRate, CodeInvalidRate},
	{ErrInvalidUsername, CodeInvalidUsername},
	{ErrDuplicateUser, CodeDuplicateUser},
	{ErrTransactionNotFound, CodeTransactionNotFound},
	{ErrTransientStorage, CodeTransientStorageFailure},
}

// ErrorCode returns the stable identifier for err, or CodeInternal when err
// is not part of the ledger's error taxonomy.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// IsRetryable reports whether repeating the same request may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStorage)
}
