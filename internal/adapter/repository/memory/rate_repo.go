package memory

import (
	"context"
	"sort"

	"github.com/iho/fxledger/internal/domain"
)

// RateRepository implements usecase.RateRepository.
type RateRepository struct {
	store *Store
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(store *Store) *RateRepository {
	return &RateRepository{store: store}
}

func (r *RateRepository) Get(ctx context.Context, currency domain.Currency) (*domain.ExchangeRate, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rate, ok := s.rates[currency]
	if !ok {
		return nil, domain.ErrRateNotFound
	}

	c := *rate

	return &c, nil
}

func (r *RateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *rate
	s.rates[rate.Currency] = &c

	return nil
}

// List returns every rate ordered by currency code.
func (r *RateRepository) List(ctx context.Context) ([]*domain.ExchangeRate, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rates := make([]*domain.ExchangeRate, 0, len(s.rates))
	for _, rate := range s.rates {
		c := *rate
		rates = append(rates, &c)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Currency < rates[j].Currency })

	return rates, nil
}
