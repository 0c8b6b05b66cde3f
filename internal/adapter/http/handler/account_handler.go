package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// TransactionService reads the transaction log.
type TransactionService interface {
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	ListAccountTransactions(ctx context.Context, input usecase.ListAccountTransactionsInput) ([]*domain.Transaction, error)
}

// AccountHandler handles account lookups and history.
type AccountHandler struct {
	accounts     AccountService
	transactions TransactionService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, transactions TransactionService) *AccountHandler {
	return &AccountHandler{accounts: accounts, transactions: transactions}
}

// Get retrieves an account by number.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListTransactions pages through an account's records, newest first.
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := usecase.NormalizePage(
		parseIntQuery(r, "limit", usecase.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)
	input := usecase.ListAccountTransactionsInput{
		AccountNumber: chi.URLParam(r, "number"),
		Limit:         limit,
		Offset:        offset,
	}

	records, err := h.transactions.ListAccountTransactions(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(records),
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
}

// TransactionHandler serves single log records.
type TransactionHandler struct {
	transactions TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Get returns one transaction record.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	record, err := h.transactions.GetTransaction(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}
