package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

type ledgerServiceStub struct {
	depositFn  func(ctx context.Context, input usecase.DepositInput) (*domain.Account, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
	convertFn  func(ctx context.Context, input usecase.ConvertInput) (*domain.Transaction, error)
}

func (s *ledgerServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Account, error) {
	return s.depositFn(ctx, input)
}

func (s *ledgerServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
	return s.transferFn(ctx, input)
}

func (s *ledgerServiceStub) Convert(ctx context.Context, input usecase.ConvertInput) (*domain.Transaction, error) {
	return s.convertFn(ctx, input)
}

type balanceServiceStub struct {
	totalFn func(ctx context.Context, userID int64) (*domain.TotalBalance, error)
}

func (s *balanceServiceStub) GetTotalBalance(ctx context.Context, userID int64) (*domain.TotalBalance, error) {
	return s.totalFn(ctx, userID)
}

func TestBankHandler_Deposit_Success(t *testing.T) {
	var captured usecase.DepositInput
	h := NewBankHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{
				Number:   input.AccountNumber,
				UserID:   1,
				Currency: domain.CurrencyUSD,
				Balance:  decimal.RequireFromString("600.5"),
			}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader(`{"account_number":"acc-1","amount":"100.50"}`))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountNumber != "acc-1" || !captured.Amount.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balance != "600.5000" {
		t.Fatalf("expected balance 600.5000, got %s", resp.Balance)
	}
}

func TestBankHandler_Deposit_InvalidAmount(t *testing.T) {
	h := NewBankHandler(&ledgerServiceStub{
		depositFn: func(ctx context.Context, input usecase.DepositInput) (*domain.Account, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader(`{"account_number":"acc-1","amount":"ten"}`))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != domain.CodeInvalidAmount {
		t.Fatalf("expected INVALID_AMOUNT, got %s", resp.Error)
	}
}

func TestBankHandler_Deposit_MalformedJSON(t *testing.T) {
	h := NewBankHandler(&ledgerServiceStub{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader(`{"account_number":`))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != CodeInvalidRequest {
		t.Fatalf("expected INVALID_REQUEST, got %s", resp.Error)
	}
}

func TestBankHandler_Transfer_InsufficientFunds(t *testing.T) {
	h := NewBankHandler(&ledgerServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	}, nil)

	body := `{"from_account_number":"a","to_account_number":"b","amount":"1000"}`
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Transfer(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != domain.CodeInsufficientFunds || resp.Retryable {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestBankHandler_Convert_Success(t *testing.T) {
	fromID := int64(2)
	var captured usecase.ConvertInput
	h := NewBankHandler(&ledgerServiceStub{
		convertFn: func(ctx context.Context, input usecase.ConvertInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:              9,
				Type:            domain.TransactionTypeConversion,
				FromAccountID:   &fromID,
				ToAccountID:     3,
				Amount:          decimal.NewFromInt(100),
				ConvertedAmount: decimal.RequireFromString("93.8242"),
				RateUsed:        decimal.NewNullDecimal(decimal.RequireFromString("0.938242")),
				CreatedAt:       time.Now(),
			}, nil
		},
	}, nil)

	body := `{"from_account_number":"usd-1","to_account_number":"eur-1","amount":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/users/7/convert", strings.NewReader(body))
	req = withURLParams(req, map[string]string{"userId": "7"})
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != 7 || captured.FromAccountNumber != "usd-1" || captured.ToAccountNumber != "eur-1" {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ConvertedAmount != "93.8242" || resp.RateUsed == nil || *resp.RateUsed != "0.938242" {
		t.Fatalf("unexpected conversion response %+v", resp)
	}
}

func TestBankHandler_Convert_OwnershipMismatch(t *testing.T) {
	h := NewBankHandler(&ledgerServiceStub{
		convertFn: func(ctx context.Context, input usecase.ConvertInput) (*domain.Transaction, error) {
			return nil, domain.ErrAccountOwnershipMismatch
		},
	}, nil)

	body := `{"from_account_number":"a","to_account_number":"b","amount":"1"}`
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), map[string]string{"userId": "1"})
	rec := httptest.NewRecorder()

	h.Convert(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestBankHandler_TotalBalance(t *testing.T) {
	h := NewBankHandler(nil, &balanceServiceStub{
		totalFn: func(ctx context.Context, userID int64) (*domain.TotalBalance, error) {
			if userID != 5 {
				return nil, domain.ErrUserNotFound
			}
			return &domain.TotalBalance{
				UserID:   5,
				Total:    decimal.RequireFromString("42380"),
				Currency: domain.CurrencyUAH,
			}, nil
		},
	})

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"userId": "5"})
	rec := httptest.NewRecorder()
	h.TotalBalance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.TotalBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalBalanceUAH != "42380.0000" || resp.Currency != "UAH" {
		t.Fatalf("unexpected total %+v", resp)
	}

	req = withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"userId": "6"})
	rec = httptest.NewRecorder()
	h.TotalBalance(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
