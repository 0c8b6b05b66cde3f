package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/adapter/repository/idgen"
	postgresRepo "github.com/iho/fxledger/internal/adapter/repository/postgres"
	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/infrastructure/postgres"
	"github.com/iho/fxledger/internal/infrastructure/postgres/generated"
	"github.com/iho/fxledger/internal/usecase"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped
// when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: dbURL,
		MaxConns:    20,
		MinConns:    2,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)

	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data and resets the rate table to the scenario
// rates: UAH 1, USD 39.50, EUR 42.10.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events, transactions, accounts, users RESTART IDENTITY CASCADE;
		TRUNCATE TABLE exchange_rates;
		INSERT INTO exchange_rates (currency, rate) VALUES ('UAH', 1), ('USD', 39.50), ('EUR', 42.10);
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Stack wires every use case over the test database.
type Stack struct {
	DB             *TestDB
	Accounts       *postgresRepo.AccountRepository
	Transactions   *postgresRepo.TransactionRepository
	Outbox         *postgresRepo.OutboxRepository
	Rates          *postgresRepo.RateRepository
	Users          *postgresRepo.UserRepository
	Ledger         *usecase.LedgerUseCase
	Balance        *usecase.BalanceUseCase
	Rate           *usecase.RateUseCase
	User           *usecase.UserUseCase
	Account        *usecase.AccountUseCase
	Reconciliation *usecase.ReconciliationUseCase
	t              *testing.T
}

// NewStack builds a Stack with the given lock timeout.
func NewStack(db *TestDB, lockTimeout time.Duration) *Stack {
	s := &Stack{
		DB:           db,
		Accounts:     postgresRepo.NewAccountRepository(db.Pool),
		Transactions: postgresRepo.NewTransactionRepository(db.Pool),
		Outbox:       postgresRepo.NewOutboxRepository(db.Pool),
		Rates:        postgresRepo.NewRateRepository(db.Pool, postgresRepo.NewRetrier(nil)),
		Users:        postgresRepo.NewUserRepository(db.Pool),
		t:            db.t,
	}

	clock := usecase.SystemClock{}
	s.Rate = usecase.NewRateUseCase(s.Rates, clock, nil)
	s.User = usecase.NewUserUseCase(s.Users, clock)
	s.Account = usecase.NewAccountUseCase(s.Accounts, s.Users, idgen.NewAccountNumberGenerator(), clock, nil)
	s.Ledger = usecase.NewLedgerUseCase(
		postgresRepo.NewTxManager(db.Pool, lockTimeout),
		s.Accounts, s.Users, s.Transactions, s.Outbox,
		s.Rate, idgen.NewULIDGenerator(), clock, nil,
	)
	s.Balance = usecase.NewBalanceUseCase(s.Users, s.Accounts, s.Rate, clock)
	s.Reconciliation = usecase.NewReconciliationUseCase(
		postgresRepo.NewTxManager(db.Pool, lockTimeout), s.Accounts, s.Transactions, clock,
	)

	return s
}

// CreateUser registers a user.
func (s *Stack) CreateUser(ctx context.Context, username string) *domain.User {
	s.t.Helper()

	user, err := s.User.CreateUser(ctx, usecase.CreateUserInput{Username: username})
	if err != nil {
		s.t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// OpenAccount opens an account with an opening balance.
func (s *Stack) OpenAccount(ctx context.Context, userID int64, currency domain.Currency, opening string) *domain.Account {
	s.t.Helper()

	account, err := s.Account.OpenAccount(ctx, usecase.OpenAccountInput{
		UserID:         userID,
		Currency:       currency,
		OpeningBalance: decimal.RequireFromString(opening),
	})
	if err != nil {
		s.t.Fatalf("failed to open account: %v", err)
	}
	return account
}

// BalanceOf reads an account's stored balance.
func (s *Stack) BalanceOf(ctx context.Context, number string) decimal.Decimal {
	s.t.Helper()

	account, err := s.Accounts.GetByNumber(ctx, number)
	if err != nil {
		s.t.Fatalf("failed to load account %s: %v", number, err)
	}
	return account.Balance
}
