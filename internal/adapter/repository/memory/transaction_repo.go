package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Append assigns record an ID and stages it; it becomes visible on commit.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Tx, record *domain.Transaction) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	s.nextTxID++
	record.ID = s.nextTxID
	s.mu.Unlock()

	c := *record
	t.records = append(t.records, &c)

	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.transactions {
		if rec.ID == id {
			c := *rec
			return &c, nil
		}
	}

	return nil, fmt.Errorf("%w: %d", domain.ErrTransactionNotFound, id)
}

// ListByAccount returns records touching accountID, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Transaction, 0)
	skipped := 0

	for i := len(s.transactions) - 1; i >= 0 && len(result) < limit; i-- {
		rec := s.transactions[i]
		if !touches(rec, accountID) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}

		c := *rec
		result = append(result, &c)
	}

	return result, nil
}

// SumByAccount totals what was credited to and debited from accountID.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	credits, debits := decimal.Zero, decimal.Zero
	for _, rec := range s.transactions {
		if rec.ToAccountID == accountID {
			credits = credits.Add(rec.ConvertedAmount)
		}
		if rec.FromAccountID != nil && *rec.FromAccountID == accountID {
			debits = debits.Add(rec.Amount)
		}
	}

	return credits, debits, nil
}

func touches(rec *domain.Transaction, accountID int64) bool {
	return rec.ToAccountID == accountID || (rec.FromAccountID != nil && *rec.FromAccountID == accountID)
}
