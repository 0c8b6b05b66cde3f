package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// RateService manages the rate table.
type RateService interface {
	ListRates(ctx context.Context) ([]*domain.ExchangeRate, error)
	GetRate(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error)
	SetRate(ctx context.Context, input usecase.SetRateInput) (*domain.ExchangeRate, error)
}

// RateHandler exposes the rate table.
type RateHandler struct {
	rates RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rates RateService) *RateHandler {
	return &RateHandler{rates: rates}
}

func currencyParam(r *http.Request) (domain.Currency, error) {
	c := domain.Currency(strings.ToUpper(chi.URLParam(r, "currency")))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, chi.URLParam(r, "currency"))
	}
	return c, nil
}

// List returns every stored rate.
func (h *RateHandler) List(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.ListRates(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromDomain(rates))
}

// Get returns one currency's rate.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := currencyParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rate, err := h.rates.GetRate(r.Context(), currency)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
}

// Set replaces one currency's rate.
func (h *RateHandler) Set(w http.ResponseWriter, r *http.Request) {
	currency, err := currencyParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req dto.SetRateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	rate, err := h.rates.SetRate(r.Context(), req.ToUseCaseInput(currency))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
}
