package memory

import (
	"context"
	"fmt"

	"github.com/iho/fxledger/internal/domain"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[user.Username]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, user.Username)
	}

	s.nextUserID++
	user.ID = s.nextUserID

	stored := *user
	s.users[user.ID] = &stored
	s.usernames[user.Username] = user.ID

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}

	c := *u

	return &c, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.users)), nil
}
