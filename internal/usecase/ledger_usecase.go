package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
)

const (
	opDeposit  = "deposit"
	opTransfer = "transfer"
	opConvert  = "convert"
)

// LedgerUseCase moves money into and between accounts.
// Every operation mutates balances and appends exactly one transaction
// record inside a single storage transaction.
type LedgerUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	userRepo    UserRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	rates       RateResolver
	idGen       IDGenerator
	clock       Clock
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. metrics may be nil.
func NewLedgerUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	userRepo UserRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	rates RateResolver,
	idGen IDGenerator,
	clock Clock,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		rates:       rates,
		idGen:       idGen,
		clock:       clock,
		metrics:     metrics,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// TransferInput represents input for a transfer between any two accounts.
type TransferInput struct {
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
}

// ConvertInput represents input for a conversion between two accounts of one user.
type ConvertInput struct {
	UserID            int64
	FromAccountNumber string
	ToAccountNumber   string
	Amount            decimal.Decimal
}

// Deposit credits amount to an account. Deposits are not idempotent: every
// call appends a new DEPOSIT record.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Account, error) {
	start := time.Now()

	account, record, err := uc.deposit(ctx, input)
	uc.observe(ctx, opDeposit, start, record, account, err)
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *LedgerUseCase) deposit(ctx context.Context, input DepositInput) (*domain.Account, *domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(txCtx)

	accounts, err := uc.accountRepo.GetByNumbersForUpdate(txCtx, tx, []string{input.AccountNumber})
	if err != nil {
		return nil, nil, err
	}

	if len(accounts) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, input.AccountNumber)
	}

	account := accounts[0]
	if err := account.ValidateCredit(input.Amount); err != nil {
		return nil, nil, err
	}

	now := uc.clock.Now()

	record := domain.NewDepositTransaction(account, input.Amount, now)
	if err := record.Validate(); err != nil {
		return nil, nil, err
	}

	newBalance := account.ApplyCredit(input.Amount)
	if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, now); err != nil {
		return nil, nil, err
	}

	if err := uc.appendRecord(txCtx, tx, record, nil, account); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	account.Balance = newBalance
	account.UpdatedAt = now

	return account, record, nil
}

// Transfer moves amount from one account to another, converting through the
// reference currency when the accounts hold different currencies.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	start := time.Now()

	record, to, err := uc.transfer(ctx, input)
	uc.observe(ctx, opTransfer, start, record, to, err)

	return record, err
}

func (uc *LedgerUseCase) transfer(ctx context.Context, input TransferInput) (*domain.Transaction, *domain.Account, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, nil, err
	}

	if input.FromAccountNumber == input.ToAccountNumber {
		return nil, nil, domain.ErrSameAccount
	}

	return uc.move(ctx, domain.TransactionTypeTransfer, input.FromAccountNumber, input.ToAccountNumber, input.Amount, nil)
}

// Convert exchanges amount between two accounts owned by the acting user.
// Checks run in a fixed order: user, accounts, ownership, currency, amount,
// then funds.
func (uc *LedgerUseCase) Convert(ctx context.Context, input ConvertInput) (*domain.Transaction, error) {
	start := time.Now()

	record, to, err := uc.convert(ctx, input)
	uc.observe(ctx, opConvert, start, record, to, err)

	return record, err
}

func (uc *LedgerUseCase) convert(ctx context.Context, input ConvertInput) (*domain.Transaction, *domain.Account, error) {
	if _, err := uc.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, nil, err
	}

	check := func(from, to *domain.Account) error {
		if !from.OwnedBy(input.UserID) || !to.OwnedBy(input.UserID) {
			return domain.ErrAccountOwnershipMismatch
		}

		if from.Currency == to.Currency {
			return domain.ErrSameCurrency
		}

		return domain.ValidateAmount(input.Amount)
	}

	return uc.move(ctx, domain.TransactionTypeConversion, input.FromAccountNumber, input.ToAccountNumber, input.Amount, check)
}

// move runs the shared debit/credit/append unit for transfers and
// conversions. check, when set, runs against the locked accounts before
// any rate lookup.
func (uc *LedgerUseCase) move(
	ctx context.Context,
	typ domain.TransactionType,
	fromNumber, toNumber string,
	amount decimal.Decimal,
	check func(from, to *domain.Account) error,
) (*domain.Transaction, *domain.Account, error) {
	numbers := []string{fromNumber}
	if toNumber != fromNumber {
		numbers = append(numbers, toNumber)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(txCtx)

	accounts, err := uc.accountRepo.GetByNumbersForUpdate(txCtx, tx, numbers)
	if err != nil {
		return nil, nil, err
	}

	byNumber := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byNumber[a.Number] = a
	}

	from, to := byNumber[fromNumber], byNumber[toNumber]
	if from == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, fromNumber)
	}
	if to == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, toNumber)
	}

	if check != nil {
		if err := check(from, to); err != nil {
			return nil, nil, err
		}
	}

	quote, err := uc.quote(txCtx, amount, from.Currency, to.Currency)
	if err != nil {
		return nil, nil, err
	}

	if err := from.ValidateDebit(amount); err != nil {
		return nil, nil, err
	}

	if err := to.ValidateCredit(quote.Credited); err != nil {
		return nil, nil, err
	}

	now := uc.clock.Now()

	record := domain.NewMovementTransaction(typ, from, to, amount, quote, now)
	if err := record.Validate(); err != nil {
		return nil, nil, err
	}

	fromBalance := from.ApplyDebit(amount)
	toBalance := to.ApplyCredit(quote.Credited)

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, from.ID, fromBalance, now); err != nil {
		return nil, nil, err
	}

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, to.ID, toBalance, now); err != nil {
		return nil, nil, err
	}

	if err := uc.appendRecord(txCtx, tx, record, from, to); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, nil, err
	}

	from.Balance, from.UpdatedAt = fromBalance, now
	to.Balance, to.UpdatedAt = toBalance, now

	return record, to, nil
}

func (uc *LedgerUseCase) quote(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (domain.Quote, error) {
	if from == to {
		return domain.QuoteMovement(amount, from, to, decimal.Zero, decimal.Zero), nil
	}

	rateFrom, err := uc.rates.RateToReference(ctx, from)
	if err != nil {
		return domain.Quote{}, err
	}

	rateTo, err := uc.rates.RateToReference(ctx, to)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.QuoteMovement(amount, from, to, rateFrom, rateTo), nil
}

func (uc *LedgerUseCase) appendRecord(ctx context.Context, tx Tx, record *domain.Transaction, from, to *domain.Account) error {
	if err := uc.txRepo.Append(ctx, tx, record); err != nil {
		return err
	}

	event := domain.NewTransactionCreatedEvent(uc.idGen.Generate(), record, from, to)

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *LedgerUseCase) observe(ctx context.Context, op string, start time.Time, record *domain.Transaction, to *domain.Account, err error) {
	logger := zerolog.Ctx(ctx)

	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(domain.ErrorCode(err))

		event := logger.Warn()
		if domain.ErrorCode(err) == domain.CodeInternal || errors.Is(err, domain.ErrTransientStorage) {
			event = logger.Error()
		}
		event.Err(err).Str("operation", op).Str("code", domain.ErrorCode(err)).Msg("ledger operation rejected")
	} else {
		logger.Info().
			Str("operation", op).
			Int64("transaction_id", record.ID).
			Str("amount", record.Amount.StringFixed(domain.AmountScale)).
			Str("credited", record.ConvertedAmount.StringFixed(domain.AmountScale)).
			Msg("ledger operation committed")
	}

	if uc.metrics == nil {
		return
	}

	uc.metrics.LedgerOperations.WithLabelValues(op, outcome).Inc()
	uc.metrics.LedgerDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err == nil {
		uc.metrics.ObserveCredited(op, to.Currency.String(), record.ConvertedAmount)
	}
}
