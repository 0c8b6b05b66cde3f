package usecase

import (
	"context"
	"strings"

	"github.com/iho/fxledger/internal/domain"
)

// UserUseCase handles user management operations
type UserUseCase struct {
	userRepo UserRepository
	clock    Clock
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo UserRepository, clock Clock) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		clock:    clock,
	}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Username string
}

// CreateUser registers a new user. Usernames are unique.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:  username,
		CreatedAt: uc.clock.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
