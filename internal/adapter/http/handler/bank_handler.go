package handler

import (
	"context"
	"net/http"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// LedgerService defines the money-moving operations BankHandler needs.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Account, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	Convert(ctx context.Context, input usecase.ConvertInput) (*domain.Transaction, error)
}

// BalanceService computes a user's total balance.
type BalanceService interface {
	GetTotalBalance(ctx context.Context, userID int64) (*domain.TotalBalance, error)
}

// BankHandler serves deposit, transfer, conversion and total balance.
type BankHandler struct {
	ledger   LedgerService
	balances BalanceService
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(ledger LedgerService, balances BalanceService) *BankHandler {
	return &BankHandler{ledger: ledger, balances: balances}
}

// Deposit credits an account.
func (h *BankHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	account, err := h.ledger.Deposit(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Transfer moves funds between two accounts.
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	record, err := h.ledger.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}

// Convert exchanges currency between two accounts of the path user.
func (h *BankHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req dto.ConvertRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	record, err := h.ledger.Convert(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}

// TotalBalance reports the user's balance in the reference currency.
func (h *BankHandler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	total, err := h.balances.GetTotalBalance(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TotalBalanceFromDomain(total))
}
