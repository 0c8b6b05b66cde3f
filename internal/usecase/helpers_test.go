package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/adapter/repository/memory"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

type seqGen struct {
	prefix string
	n      atomic.Int64
}

func (g *seqGen) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store       *memory.Store
	accountRepo *memory.AccountRepository
	userRepo    *memory.UserRepository
	rateRepo    *memory.RateRepository
	txRepo      *memory.TransactionRepository
	outboxRepo  *memory.OutboxRepository

	ledger   *usecase.LedgerUseCase
	balance  *usecase.BalanceUseCase
	rates    *usecase.RateUseCase
	users    *usecase.UserUseCase
	accounts *usecase.AccountUseCase
	history  *usecase.TransactionUseCase
	recon    *usecase.ReconciliationUseCase
	seed     *usecase.SeedUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clock := fixedClock{at: testNow}

	e := &testEnv{
		store:       store,
		accountRepo: memory.NewAccountRepository(store),
		userRepo:    memory.NewUserRepository(store),
		rateRepo:    memory.NewRateRepository(store),
		txRepo:      memory.NewTransactionRepository(store),
		outboxRepo:  memory.NewOutboxRepository(store),
	}

	e.rates = usecase.NewRateUseCase(e.rateRepo, clock, nil)
	e.users = usecase.NewUserUseCase(e.userRepo, clock)
	e.accounts = usecase.NewAccountUseCase(e.accountRepo, e.userRepo, &seqGen{prefix: "acc"}, clock, nil)
	e.ledger = usecase.NewLedgerUseCase(
		memory.NewTxManager(store),
		e.accountRepo,
		e.userRepo,
		e.txRepo,
		e.outboxRepo,
		e.rates,
		&seqGen{prefix: "evt"},
		clock,
		nil,
	)
	e.balance = usecase.NewBalanceUseCase(e.userRepo, e.accountRepo, e.rates, clock)
	e.history = usecase.NewTransactionUseCase(e.txRepo, e.accountRepo)
	e.recon = usecase.NewReconciliationUseCase(memory.NewTxManager(store), e.accountRepo, e.txRepo, clock)
	e.seed = usecase.NewSeedUseCase(e.userRepo, e.rateRepo, e.users, e.accounts, e.rates)

	return e
}

func (e *testEnv) setRates(t *testing.T, usd, eur string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.rates.SetRate(ctx, usecase.SetRateInput{Currency: domain.CurrencyUAH, Rate: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = e.rates.SetRate(ctx, usecase.SetRateInput{Currency: domain.CurrencyUSD, Rate: decimal.RequireFromString(usd)})
	require.NoError(t, err)
	_, err = e.rates.SetRate(ctx, usecase.SetRateInput{Currency: domain.CurrencyEUR, Rate: decimal.RequireFromString(eur)})
	require.NoError(t, err)
}

// holder is a user together with one account per currency.
type holder struct {
	user     *domain.User
	accounts map[domain.Currency]*domain.Account
}

func (h holder) number(c domain.Currency) string {
	return h.accounts[c].Number
}

func (e *testEnv) newHolder(t *testing.T, username string, balances map[domain.Currency]string) holder {
	t.Helper()
	ctx := context.Background()

	user, err := e.users.CreateUser(ctx, usecase.CreateUserInput{Username: username})
	require.NoError(t, err)

	h := holder{user: user, accounts: make(map[domain.Currency]*domain.Account)}
	for _, c := range domain.SupportedCurrencies() {
		b, ok := balances[c]
		if !ok {
			continue
		}

		acc, err := e.accounts.OpenAccount(ctx, usecase.OpenAccountInput{
			UserID:         user.ID,
			Currency:       c,
			OpeningBalance: decimal.RequireFromString(b),
		})
		require.NoError(t, err)
		h.accounts[c] = acc
	}

	return h
}

func (e *testEnv) balanceOf(t *testing.T, number string) decimal.Decimal {
	t.Helper()

	acc, err := e.accountRepo.GetByNumber(context.Background(), number)
	require.NoError(t, err)

	return acc.Balance
}

func (e *testEnv) historyOf(t *testing.T, number string) []*domain.Transaction {
	t.Helper()

	records, err := e.history.ListAccountTransactions(context.Background(), usecase.ListAccountTransactionsInput{
		AccountNumber: number,
		Limit:         usecase.MaxPageSize,
	})
	require.NoError(t, err)

	return records
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
