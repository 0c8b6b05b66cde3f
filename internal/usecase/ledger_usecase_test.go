package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

var (
	usd = domain.CurrencyUSD
	eur = domain.CurrencyEUR
	uah = domain.CurrencyUAH
)

func standardEnv(t *testing.T) (*testEnv, holder, holder) {
	t.Helper()

	e := newTestEnv(t)
	e.setRates(t, "39.50", "42.10")

	one := e.newHolder(t, "user_one", map[domain.Currency]string{uah: "10000.00", usd: "500.00", eur: "300.00"})
	two := e.newHolder(t, "user_two", map[domain.Currency]string{uah: "5000.00", usd: "100.00", eur: "50.00"})

	return e, one, two
}

func TestLedger_Deposit(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()

	acc, err := e.ledger.Deposit(ctx, usecase.DepositInput{AccountNumber: one.number(usd), Amount: dec("500.00")})
	require.NoError(t, err)

	assert.True(t, acc.Balance.Equal(dec("1000.00")), "returned balance %s", acc.Balance)
	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("1000.00")))

	records := e.historyOf(t, one.number(usd))
	require.Len(t, records, 1)
	assert.Equal(t, domain.TransactionTypeDeposit, records[0].Type)
	assert.Nil(t, records[0].FromAccountID)
	assert.Equal(t, one.accounts[usd].ID, records[0].ToAccountID)
	assert.True(t, records[0].Amount.Equal(dec("500")))
	assert.True(t, records[0].ConvertedAmount.Equal(dec("500")))
	assert.False(t, records[0].RateUsed.Valid)
	assert.Equal(t, testNow, records[0].CreatedAt)
}

func TestLedger_DepositIsNotIdempotent(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()
	input := usecase.DepositInput{AccountNumber: one.number(eur), Amount: dec("25.5")}

	_, err := e.ledger.Deposit(ctx, input)
	require.NoError(t, err)
	_, err = e.ledger.Deposit(ctx, input)
	require.NoError(t, err)

	assert.True(t, e.balanceOf(t, one.number(eur)).Equal(dec("351.00")))

	records := e.historyOf(t, one.number(eur))
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestLedger_DepositRejections(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   usecase.DepositInput
		wantErr error
	}{
		{"zero amount", usecase.DepositInput{AccountNumber: one.number(usd), Amount: decimal.Zero}, domain.ErrInvalidAmount},
		{"negative amount", usecase.DepositInput{AccountNumber: one.number(usd), Amount: dec("-1")}, domain.ErrInvalidAmount},
		{"too precise", usecase.DepositInput{AccountNumber: one.number(usd), Amount: dec("0.00001")}, domain.ErrInvalidAmount},
		{"unknown account", usecase.DepositInput{AccountNumber: "nope", Amount: dec("1")}, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.Deposit(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("500")))
	assert.Empty(t, e.historyOf(t, one.number(usd)))
}

func TestLedger_TransferCrossCurrency(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	record, err := e.ledger.Transfer(ctx, usecase.TransferInput{
		FromAccountNumber: one.number(usd),
		ToAccountNumber:   two.number(eur),
		Amount:            dec("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeTransfer, record.Type)
	require.True(t, record.RateUsed.Valid)
	assert.Equal(t, "0.938242", record.RateUsed.Decimal.StringFixed(domain.RateScale))
	assert.Equal(t, "93.8242", record.ConvertedAmount.StringFixed(domain.AmountScale))

	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("400")))
	assert.True(t, e.balanceOf(t, two.number(eur)).Equal(dec("143.8242")))

	// The credited amount follows the two-stage rounding formula exactly.
	rate := dec("39.50").DivRound(dec("42.10"), 6)
	assert.True(t, record.ConvertedAmount.Equal(record.Amount.Mul(rate).Round(4)))
}

func TestLedger_TransferSameCurrency(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	record, err := e.ledger.Transfer(ctx, usecase.TransferInput{
		FromAccountNumber: one.number(uah),
		ToAccountNumber:   two.number(uah),
		Amount:            dec("1234.5678"),
	})
	require.NoError(t, err)

	assert.False(t, record.RateUsed.Valid)
	assert.True(t, record.ConvertedAmount.Equal(dec("1234.5678")))
	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("8765.4322")))
	assert.True(t, e.balanceOf(t, two.number(uah)).Equal(dec("6234.5678")))

	require.NotNil(t, record.FromAccountID)
	assert.Equal(t, one.accounts[uah].ID, *record.FromAccountID)
	assert.Equal(t, two.accounts[uah].ID, record.ToAccountID)
}

func TestLedger_TransferRejections(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   usecase.TransferInput
		wantErr error
	}{
		{
			name:    "same account",
			input:   usecase.TransferInput{FromAccountNumber: one.number(usd), ToAccountNumber: one.number(usd), Amount: dec("1")},
			wantErr: domain.ErrSameAccount,
		},
		{
			name:    "invalid amount is checked before same account",
			input:   usecase.TransferInput{FromAccountNumber: one.number(usd), ToAccountNumber: one.number(usd), Amount: dec("0")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "missing source",
			input:   usecase.TransferInput{FromAccountNumber: "missing", ToAccountNumber: two.number(usd), Amount: dec("1")},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "missing destination",
			input:   usecase.TransferInput{FromAccountNumber: one.number(usd), ToAccountNumber: "missing", Amount: dec("1")},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "insufficient funds",
			input:   usecase.TransferInput{FromAccountNumber: two.number(usd), ToAccountNumber: one.number(eur), Amount: dec("100.0001")},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := e.ledger.Transfer(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, record)
		})
	}

	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("500")))
	assert.True(t, e.balanceOf(t, two.number(usd)).Equal(dec("100")))
	assert.True(t, e.balanceOf(t, one.number(eur)).Equal(dec("300")))
	assert.Empty(t, e.historyOf(t, one.number(usd)))
	assert.Empty(t, e.historyOf(t, two.number(usd)))
}

func TestLedger_TransferExactBalance(t *testing.T) {
	e, one, two := standardEnv(t)

	_, err := e.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountNumber: two.number(eur),
		ToAccountNumber:   one.number(eur),
		Amount:            dec("50.00"),
	})
	require.NoError(t, err)

	assert.True(t, e.balanceOf(t, two.number(eur)).IsZero())
}

func TestLedger_Convert(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()

	record, err := e.ledger.Convert(ctx, usecase.ConvertInput{
		UserID:            one.user.ID,
		FromAccountNumber: one.number(usd),
		ToAccountNumber:   one.number(uah),
		Amount:            dec("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeConversion, record.Type)
	assert.Equal(t, "39.500000", record.RateUsed.Decimal.StringFixed(domain.RateScale))
	assert.True(t, record.ConvertedAmount.Equal(dec("395")))
	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("490")))
	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("10395")))
}

func TestLedger_ConvertCheckOrder(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	secondUAH, err := e.accounts.OpenAccount(ctx, usecase.OpenAccountInput{UserID: one.user.ID, Currency: uah})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   usecase.ConvertInput
		wantErr error
	}{
		{
			name:    "unknown user wins over missing accounts",
			input:   usecase.ConvertInput{UserID: 999, FromAccountNumber: "x", ToAccountNumber: "y", Amount: dec("-1")},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:    "missing account wins over invalid amount",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(usd), ToAccountNumber: "y", Amount: dec("-1")},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name:    "foreign source account",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: two.number(usd), ToAccountNumber: one.number(eur), Amount: dec("1")},
			wantErr: domain.ErrAccountOwnershipMismatch,
		},
		{
			name:    "foreign destination account wins over same currency",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(usd), ToAccountNumber: two.number(usd), Amount: dec("1")},
			wantErr: domain.ErrAccountOwnershipMismatch,
		},
		{
			name:    "same currency pair",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(uah), ToAccountNumber: secondUAH.Number, Amount: dec("1")},
			wantErr: domain.ErrSameCurrency,
		},
		{
			name:    "same account is same currency",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(uah), ToAccountNumber: one.number(uah), Amount: dec("1")},
			wantErr: domain.ErrSameCurrency,
		},
		{
			name:    "same currency wins over invalid amount",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(uah), ToAccountNumber: secondUAH.Number, Amount: dec("0")},
			wantErr: domain.ErrSameCurrency,
		},
		{
			name:    "invalid amount wins over insufficient funds",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(usd), ToAccountNumber: one.number(eur), Amount: dec("0")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "insufficient funds",
			input:   usecase.ConvertInput{UserID: one.user.ID, FromAccountNumber: one.number(usd), ToAccountNumber: one.number(eur), Amount: dec("500.0001")},
			wantErr: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.Convert(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("10000")))
	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("500")))
	assert.Empty(t, e.historyOf(t, one.number(usd)))
	assert.Empty(t, e.historyOf(t, one.number(uah)))
}

func TestLedger_ConvertConservesReferenceTotal(t *testing.T) {
	ctx := context.Background()

	t.Run("exact cross rate", func(t *testing.T) {
		e := newTestEnv(t)
		e.setRates(t, "40", "20")
		h := e.newHolder(t, "saver", map[domain.Currency]string{usd: "100.1234", eur: "0"})

		before, err := e.balance.GetTotalBalance(ctx, h.user.ID)
		require.NoError(t, err)

		_, err = e.ledger.Convert(ctx, usecase.ConvertInput{
			UserID: h.user.ID, FromAccountNumber: h.number(usd), ToAccountNumber: h.number(eur), Amount: dec("33.3333"),
		})
		require.NoError(t, err)

		after, err := e.balance.GetTotalBalance(ctx, h.user.ID)
		require.NoError(t, err)

		assert.True(t, after.Total.Sub(before.Total).Abs().LessThanOrEqual(dec("0.0001")))
	})

	t.Run("drift bounded by rounding steps", func(t *testing.T) {
		e := newTestEnv(t)
		e.setRates(t, "39.50", "42.10")
		h := e.newHolder(t, "saver", map[domain.Currency]string{usd: "10000", eur: "0", uah: "0"})

		amounts := []string{"100", "0.0001", "1234.5678", "3.3333", "999.9999"}
		pairs := [][2]domain.Currency{{usd, eur}, {eur, uah}, {uah, usd}}
		rates := map[domain.Currency]decimal.Decimal{uah: dec("1"), usd: dec("39.50"), eur: dec("42.10")}

		for _, pair := range pairs {
			for _, a := range amounts {
				amount := dec(a)
				from, to := pair[0], pair[1]
				if e.balanceOf(t, h.number(from)).LessThan(amount) {
					continue
				}

				before, err := e.balance.GetTotalBalance(ctx, h.user.ID)
				require.NoError(t, err)

				_, err = e.ledger.Convert(ctx, usecase.ConvertInput{
					UserID: h.user.ID, FromAccountNumber: h.number(from), ToAccountNumber: h.number(to), Amount: amount,
				})
				require.NoError(t, err)

				after, err := e.balance.GetTotalBalance(ctx, h.user.ID)
				require.NoError(t, err)

				// Rate rounding, credit rounding, and the reporter's own final rounding.
				bound := amount.Mul(dec("0.0000005")).Add(dec("0.00005")).Mul(rates[to]).Add(dec("0.0001"))
				drift := after.Total.Sub(before.Total).Abs()
				assert.True(t, drift.LessThanOrEqual(bound), "%s %s->%s drift %s exceeds %s", a, from, to, drift, bound)
			}
		}
	})
}

func TestLedger_MissingRate(t *testing.T) {
	e := newTestEnv(t)
	h := e.newHolder(t, "holder", map[domain.Currency]string{usd: "10", eur: "0"})

	_, err := e.ledger.Transfer(context.Background(), usecase.TransferInput{
		FromAccountNumber: h.number(usd), ToAccountNumber: h.number(eur), Amount: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrRateNotFound)
	assert.True(t, e.balanceOf(t, h.number(usd)).Equal(dec("10")))
}

func TestLedger_WritesOneOutboxEventPerOperation(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	_, err := e.ledger.Deposit(ctx, usecase.DepositInput{AccountNumber: one.number(usd), Amount: dec("1")})
	require.NoError(t, err)
	_, err = e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: one.number(usd), ToAccountNumber: two.number(eur), Amount: dec("1")})
	require.NoError(t, err)
	_, err = e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: one.number(usd), ToAccountNumber: one.number(usd), Amount: dec("1")})
	require.Error(t, err)

	events, err := e.outboxRepo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeTransactionCreated, events[0].EventType)
	assert.Equal(t, "DEPOSIT", events[0].Payload["type"])
	assert.Equal(t, "TRANSFER", events[1].Payload["type"])
}

func TestLedger_ConcurrentOppositeTransfers(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	const rounds = 50

	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: one.number(uah), ToAccountNumber: two.number(uah), Amount: dec("10")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: two.number(uah), ToAccountNumber: one.number(uah), Amount: dec("7")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("9850")))
	assert.True(t, e.balanceOf(t, two.number(uah)).Equal(dec("5150")))

	report, err := e.recon.Report(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}

func TestLedger_ConcurrentOverdraftAttempts(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	// user_two holds 100.00 USD; only ten 10.00 withdrawals can succeed.
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: two.number(usd), ToAccountNumber: one.number(eur), Amount: dec("10")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInsufficientFunds), "unexpected error %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.True(t, e.balanceOf(t, two.number(usd)).IsZero())
	assert.Len(t, e.historyOf(t, two.number(usd)), 10)

	report, err := e.recon.Report(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}

func TestLedger_RandomConcurrentWorkloadReconciles(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	numbers := []string{
		one.number(uah), one.number(usd), one.number(eur),
		two.number(uah), two.number(usd), two.number(eur),
	}
	amounts := []string{"0.0001", "1", "12.3456", "250", "99.99"}

	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := numbers[i%len(numbers)]
			to := numbers[(i*7+1)%len(numbers)]
			amount := dec(amounts[i%len(amounts)])

			switch i % 3 {
			case 0:
				_, _ = e.ledger.Deposit(ctx, usecase.DepositInput{AccountNumber: to, Amount: amount})
			default:
				_, _ = e.ledger.Transfer(ctx, usecase.TransferInput{FromAccountNumber: from, ToAccountNumber: to, Amount: amount})
			}
		}(i)
	}
	wg.Wait()

	for _, n := range numbers {
		assert.False(t, e.balanceOf(t, n).IsNegative(), "account %s went negative", n)
	}

	report, err := e.recon.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, report.TotalAccounts)
	assert.Empty(t, report.Discrepancies)
}

func TestLedger_SubUnitCrossCurrencyTransferCreditsZero(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()

	record, err := e.ledger.Transfer(ctx, usecase.TransferInput{
		FromAccountNumber: one.number(uah),
		ToAccountNumber:   one.number(usd),
		Amount:            dec("0.0001"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionTypeTransfer, record.Type)
	assert.True(t, record.RateUsed.Decimal.Equal(dec("0.025316")), "rate %s", record.RateUsed.Decimal)
	assert.True(t, record.ConvertedAmount.IsZero(), "credited %s", record.ConvertedAmount)

	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("9999.9999")))
	assert.True(t, e.balanceOf(t, one.number(usd)).Equal(dec("500.00")))

	report, err := e.recon.Report(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}

func TestLedger_TransfersWhileAccountsOpen(t *testing.T) {
	e, one, two := standardEnv(t)
	ctx := context.Background()

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)

	errs := make(chan error, 2*rounds)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := e.ledger.Transfer(ctx, usecase.TransferInput{
				FromAccountNumber: one.number(uah),
				ToAccountNumber:   one.number(usd),
				Amount:            dec("1"),
			})
			if err != nil {
				errs <- err
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := e.accounts.OpenAccount(ctx, usecase.OpenAccountInput{
				UserID:   two.user.ID,
				Currency: domain.CurrencyEUR,
			})
			if err != nil {
				errs <- err
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("9800.00")))

	accounts, err := e.accounts.ListUserAccounts(ctx, two.user.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 3+rounds)

	report, err := e.recon.Report(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}

func TestLedger_CreditBeyondStorableBalanceIsRejected(t *testing.T) {
	e, one, _ := standardEnv(t)
	ctx := context.Background()

	_, err := e.ledger.Deposit(ctx, usecase.DepositInput{
		AccountNumber: one.number(uah),
		Amount:        domain.MaxAmount,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, e.balanceOf(t, one.number(uah)).Equal(dec("10000.00")))
	assert.Empty(t, e.historyOf(t, one.number(uah)))
}
