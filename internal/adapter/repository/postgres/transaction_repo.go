package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fxledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository on the
// append-only transactions table.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Append inserts record inside tx and assigns its ID.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Tx, record *domain.Transaction) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	id, err := r.queries.WithTx(pgxTx).CreateTransaction(ctx, generated.CreateTransactionParams{
		Type:            string(record.Type),
		FromAccountID:   int64PtrToPgInt8(record.FromAccountID),
		ToAccountID:     record.ToAccountID,
		Amount:          decimalToNumeric(record.Amount),
		ConvertedAmount: decimalToNumeric(record.ConvertedAmount),
		RateUsed:        nullDecimalToNumeric(record.RateUsed),
		CreatedAt:       timeToPgTimestamptz(record.CreatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	record.ID = id

	return nil
}

// GetByID retrieves a record by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", domain.ErrTransactionNotFound, id)
		}

		return nil, mapError(err)
	}

	return rowToTransaction(row), nil
}

// ListByAccount returns records touching accountID, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: accountID,
		Limit:     clampInt32(limit),
		Offset:    clampInt32(offset),
	})
	if err != nil {
		return nil, mapError(err)
	}

	records := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToTransaction(row))
	}

	return records, nil
}

// SumByAccount returns the credited and debited totals of accountID.
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, decimal.Decimal, error) {
	row, err := r.queries.SumTransactionsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, mapError(err)
	}

	return numericToDecimal(row.Credits), numericToDecimal(row.Debits), nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		Type:            domain.TransactionType(row.Type),
		FromAccountID:   pgInt8ToInt64Ptr(row.FromAccountID),
		ToAccountID:     row.ToAccountID,
		Amount:          numericToDecimal(row.Amount),
		ConvertedAmount: numericToDecimal(row.ConvertedAmount),
		RateUsed:        numericToNullDecimal(row.RateUsed),
		CreatedAt:       row.CreatedAt.Time,
	}
}
