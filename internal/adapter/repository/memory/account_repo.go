package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account and assigns its ID.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[account.UserID]; !ok {
		return domain.ErrUserNotFound
	}

	if _, ok := s.numbers[account.Number]; ok {
		return fmt.Errorf("memory: account number %s already exists", account.Number)
	}

	s.nextAccountID++
	account.ID = s.nextAccountID

	stored := *account
	s.accounts[account.ID] = &stored
	s.numbers[account.Number] = account.ID
	s.locks[account.ID] = make(chan struct{}, 1)

	return nil
}

// GetByNumber retrieves the committed state of an account.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.numbers[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}

	a := *s.accounts[id]

	return &a, nil
}

// GetByNumbersForUpdate locks the existing accounts among numbers and
// returns them as seen by tx.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.Tx, numbers []string) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	s := r.store
	s.mu.Lock()
	ids := make([]int64, 0, len(numbers))
	seen := make(map[int64]bool, len(numbers))
	for _, n := range numbers {
		if id, ok := s.numbers[n]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	if err := t.lock(ctx, ids); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		a := *s.accounts[id]
		if w, ok := t.balances[id]; ok {
			a.Balance = w.balance
			a.UpdatedAt = w.updatedAt
		}
		accounts = append(accounts, &a)
	}

	return accounts, nil
}

// UpdateBalance stages a new balance for an account locked by tx.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !t.holds(id) {
		return errNotLocked
	}

	t.balances[id] = balanceWrite{balance: balance, updatedAt: updatedAt}

	return nil
}

// ListByUser returns every account of userID ordered by ID.
func (r *AccountRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []*domain.Account
	for _, a := range s.sortedAccounts() {
		if a.UserID == userID {
			c := *a
			accounts = append(accounts, &c)
		}
	}

	return accounts, nil
}

// List returns a page of accounts ordered by ID.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sortedAccounts()
	if offset >= len(all) {
		return []*domain.Account{}, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	accounts := make([]*domain.Account, 0, end-offset)
	for _, a := range all[offset:end] {
		c := *a
		accounts = append(accounts, &c)
	}

	return accounts, nil
}

// sortedAccounts must be called with s.mu held.
func (s *Store) sortedAccounts() []*domain.Account {
	all := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
