package integration

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
	"github.com/iho/fxledger/tests/testutil"
)

func TestConcurrentTransfers(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := testutil.NewStack(db, 5*time.Second)
	ctx := context.Background()

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		db.TruncateAll(ctx)
		user := s.CreateUser(ctx, "source")
		other := s.CreateUser(ctx, "dest")
		source := s.OpenAccount(ctx, user.ID, domain.CurrencyUSD, "1000")
		dest := s.OpenAccount(ctx, other.ID, domain.CurrencyUSD, "0")

		// 150 transfers of 10 against a balance that covers 100
		const numTransfers = 150
		var (
			wg           sync.WaitGroup
			successCount atomic.Int32
			rejectCount  atomic.Int32
		)

		wg.Add(numTransfers)
		for range numTransfers {
			go func() {
				defer wg.Done()

				_, err := s.Ledger.Transfer(ctx, usecase.TransferInput{
					FromAccountNumber: source.Number,
					ToAccountNumber:   dest.Number,
					Amount:            decimal.NewFromInt(10),
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errorsIs(err, domain.ErrInsufficientFunds):
					rejectCount.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 100, successCount.Load())
		assert.EqualValues(t, 50, rejectCount.Load())
		assert.True(t, s.BalanceOf(ctx, source.Number).IsZero())
		assert.True(t, s.BalanceOf(ctx, dest.Number).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("opposing transfers do not deadlock and reconcile", func(t *testing.T) {
		db.TruncateAll(ctx)
		alice := s.CreateUser(ctx, "alice")
		bob := s.CreateUser(ctx, "bob")

		accounts := []*domain.Account{
			s.OpenAccount(ctx, alice.ID, domain.CurrencyUAH, "5000"),
			s.OpenAccount(ctx, alice.ID, domain.CurrencyUSD, "500"),
			s.OpenAccount(ctx, bob.ID, domain.CurrencyEUR, "300"),
			s.OpenAccount(ctx, bob.ID, domain.CurrencyUAH, "5000"),
		}

		const workers = 8
		const perWorker = 25

		var wg sync.WaitGroup
		wg.Add(workers)
		for w := range workers {
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))

				for range perWorker {
					i, j := rng.Intn(len(accounts)), rng.Intn(len(accounts))
					if i == j {
						continue
					}
					amount := decimal.New(int64(rng.Intn(5000)+1), -2)

					_, err := s.Ledger.Transfer(ctx, usecase.TransferInput{
						FromAccountNumber: accounts[i].Number,
						ToAccountNumber:   accounts[j].Number,
						Amount:            amount,
					})
					if err != nil && !errorsIs(err, domain.ErrInsufficientFunds) {
						t.Errorf("unexpected error: %v", err)
					}
				}
			}(int64(w))
		}
		wg.Wait()

		for _, a := range accounts {
			assert.False(t, s.BalanceOf(ctx, a.Number).IsNegative())
		}

		report, err := s.Reconciliation.Report(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(accounts), report.TotalAccounts)
		assert.Empty(t, report.Discrepancies)
	})
}

func errorsIs(err, target error) bool {
	return errors.Is(err, target)
}
