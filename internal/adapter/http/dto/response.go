package dto

import (
	"time"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	Number    string    `json:"account_number"`
	UserID    int64     `json:"user_id"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		Number:    a.Number,
		UserID:    a.UserID,
		Currency:  a.Currency.String(),
		Balance:   a.Balance.StringFixed(domain.AmountScale),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// TransactionResponse represents a transaction log record.
type TransactionResponse struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	FromAccountID   *int64    `json:"from_account_id,omitempty"`
	ToAccountID     int64     `json:"to_account_id"`
	Amount          string    `json:"amount"`
	ConvertedAmount string    `json:"converted_amount"`
	RateUsed        *string   `json:"rate_used,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Amount:          t.Amount.StringFixed(domain.AmountScale),
		ConvertedAmount: t.ConvertedAmount.StringFixed(domain.AmountScale),
		CreatedAt:       t.CreatedAt,
	}
	if t.RateUsed.Valid {
		rate := t.RateUsed.Decimal.StringFixed(domain.RateScale)
		resp.RateUsed = &rate
	}
	return resp
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(records []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(records))
	for i, t := range records {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TotalBalanceResponse is a user's balance across accounts in the reference currency.
type TotalBalanceResponse struct {
	UserID          int64     `json:"user_id"`
	TotalBalanceUAH string    `json:"total_balance_uah"`
	Currency        string    `json:"currency"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// TotalBalanceFromDomain converts the aggregation result to response.
func TotalBalanceFromDomain(b *domain.TotalBalance) *TotalBalanceResponse {
	return &TotalBalanceResponse{
		UserID:          b.UserID,
		TotalBalanceUAH: b.Total.StringFixed(domain.AmountScale),
		Currency:        b.Currency.String(),
		CalculatedAt:    b.ComputedAt,
	}
}

// UserResponse represents a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// RateResponse represents an exchange rate to the reference currency.
type RateResponse struct {
	Currency  string    `json:"currency"`
	Rate      string    `json:"rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateFromDomain converts a domain rate to response.
func RateFromDomain(r *domain.ExchangeRate) *RateResponse {
	return &RateResponse{
		Currency:  r.Currency.String(),
		Rate:      r.Rate.StringFixed(domain.RateScale),
		UpdatedAt: r.UpdatedAt,
	}
}

// ListRatesResponse wraps the rate table.
type ListRatesResponse struct {
	ReferenceCurrency string          `json:"reference_currency"`
	Rates             []*RateResponse `json:"rates"`
}

// RatesFromDomain converts domain rates to a list response.
func RatesFromDomain(rates []*domain.ExchangeRate) *ListRatesResponse {
	resp := &ListRatesResponse{
		ReferenceCurrency: domain.ReferenceCurrency.String(),
		Rates:             make([]*RateResponse, len(rates)),
	}
	for i, r := range rates {
		resp.Rates[i] = RateFromDomain(r)
	}
	return resp
}

// ReconciliationResultResponse is one account's reconciliation.
type ReconciliationResultResponse struct {
	AccountNumber   string `json:"account_number"`
	Currency        string `json:"currency"`
	OpeningBalance  string `json:"opening_balance"`
	Credits         string `json:"credits"`
	Debits          string `json:"debits"`
	RecordedBalance string `json:"recorded_balance"`
	ExpectedBalance string `json:"expected_balance"`
	Difference      string `json:"difference"`
	IsReconciled    bool   `json:"is_reconciled"`
}

// ReconciliationReportResponse summarizes a full reconciliation run.
type ReconciliationReportResponse struct {
	TotalAccounts      int                             `json:"total_accounts"`
	ReconciledAccounts int                             `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt          time.Time                       `json:"checked_at"`
}

func reconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		AccountNumber:   r.AccountNumber,
		Currency:        r.Currency.String(),
		OpeningBalance:  r.OpeningBalance.StringFixed(domain.AmountScale),
		Credits:         r.Credits.StringFixed(domain.AmountScale),
		Debits:          r.Debits.StringFixed(domain.AmountScale),
		RecordedBalance: r.RecordedBalance.StringFixed(domain.AmountScale),
		ExpectedBalance: r.ExpectedBalance.StringFixed(domain.AmountScale),
		Difference:      r.Difference.StringFixed(domain.AmountScale),
		IsReconciled:    r.IsReconciled,
	}
}

// ReconciliationReportFromUseCase converts a report; only discrepancies are listed.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResultResponse, 0, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for _, d := range r.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, reconciliationResultFromUseCase(d))
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
