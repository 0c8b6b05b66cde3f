package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
)

// ReconciliationUseCase replays the transaction log against live balances.
// Each account is checked while its lock is held, so the balance and the
// log sums belong to the same committed state.
type ReconciliationUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	clock       Clock
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(txManager TxManager, accountRepo AccountRepository, txRepo TransactionRepository, clock Clock) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		clock:       clock,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountNumber   string
	Currency        domain.Currency
	OpeningBalance  decimal.Decimal
	Credits         decimal.Decimal
	Debits          decimal.Decimal
	RecordedBalance decimal.Decimal
	ExpectedBalance decimal.Decimal
	Difference      decimal.Decimal
	IsReconciled    bool
	CheckedAt       time.Time
}

// ReconcileAccount checks that an account's balance equals its opening
// balance plus logged credits minus logged debits.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, number string) (*ReconciliationResult, error) {
	return uc.reconcile(ctx, number)
}

// reconcile locks the account for the duration of the read. Ledger writes
// to the account wait for the lock, so no transfer can commit between
// reading the balance and summing the log. Nothing is written.
func (uc *ReconciliationUseCase) reconcile(ctx context.Context, number string) (*ReconciliationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	locked, err := uc.accountRepo.GetByNumbersForUpdate(txCtx, tx, []string{number})
	if err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	account := locked[0]

	credits, debits, err := uc.txRepo.SumByAccount(txCtx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile account %s: %w", account.Number, err)
	}

	expected := account.OpeningBalance.Add(credits).Sub(debits)
	diff := account.Balance.Sub(expected)

	return &ReconciliationResult{
		AccountNumber:   account.Number,
		Currency:        account.Currency,
		OpeningBalance:  account.OpeningBalance,
		Credits:         credits,
		Debits:          debits,
		RecordedBalance: account.Balance,
		ExpectedBalance: expected,
		Difference:      diff,
		IsReconciled:    diff.IsZero(),
		CheckedAt:       uc.clock.Now(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Accounts           []*ReconciliationResult
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// Report reconciles every account in the store.
func (uc *ReconciliationUseCase) Report(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Accounts:      make([]*ReconciliationResult, 0),
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := uc.accountRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.reconcile(ctx, account.Number)
			if err != nil {
				return nil, err
			}

			report.Accounts = append(report.Accounts, result)
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < reconcilePageSize {
			break
		}
	}

	report.TotalAccounts = len(report.Accounts)
	report.CheckedAt = uc.clock.Now()

	return report, nil
}
