package handler

import (
	"context"
	"net/http"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// UserService defines the user directory operations.
type UserService interface {
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// AccountService defines account lifecycle operations.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	ListUserAccounts(ctx context.Context, userID int64) ([]*domain.Account, error)
}

// UserHandler handles users and the accounts they own.
type UserHandler struct {
	users    UserService
	accounts AccountService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, accounts AccountService) *UserHandler {
	return &UserHandler{users: users, accounts: accounts}
}

// Create registers a user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Get returns a user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// ListAccounts returns every account of a user.
func (h *UserHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	accounts, err := h.accounts.ListUserAccounts(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{Accounts: dto.AccountsFromDomain(accounts)})
}

// OpenAccount opens an account for a user.
func (h *UserHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "userId")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req dto.OpenAccountRequest
	if err := decodeRequest(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}
