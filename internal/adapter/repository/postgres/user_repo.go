package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
)

// UserRepository implements user persistence
type UserRepository struct {
	queries *generated.Queries
}

// NewUserRepository creates a new user repository
func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{queries: generated.New(db)}
}

// Create inserts a new user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	row, err := r.queries.CreateUser(ctx, generated.CreateUserParams{
		Username:  user.Username,
		CreatedAt: timeToPgTimestamptz(user.CreatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	user.ID = row.ID

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
		}

		return nil, mapError(err)
	}

	return &domain.User{
		ID:        row.ID,
		Username:  row.Username,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountUsers(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}
