package usecase

import (
	"context"

	"github.com/iho/fxledger/internal/domain"
)

// TransactionUseCase reads the transaction log.
type TransactionUseCase struct {
	txRepo      TransactionRepository
	accountRepo AccountRepository
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(txRepo TransactionRepository, accountRepo AccountRepository) *TransactionUseCase {
	return &TransactionUseCase{
		txRepo:      txRepo,
		accountRepo: accountRepo,
	}
}

// GetTransaction retrieves a logged transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// ListAccountTransactionsInput represents input for listing an account's history.
type ListAccountTransactionsInput struct {
	AccountNumber string
	Limit         int
	Offset        int
}

// ListAccountTransactions pages through the records touching an account, newest first.
func (uc *TransactionUseCase) ListAccountTransactions(ctx context.Context, input ListAccountTransactionsInput) ([]*domain.Transaction, error) {
	account, err := uc.accountRepo.GetByNumber(ctx, input.AccountNumber)
	if err != nil {
		return nil, err
	}

	limit, offset := NormalizePage(input.Limit, input.Offset)

	return uc.txRepo.ListByAccount(ctx, account.ID, limit, offset)
}
