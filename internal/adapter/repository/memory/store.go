// Package memory implements the storage ports in process memory. Every
// account has its own lock; a transaction stages its writes and applies
// them to the store atomically on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fxledger/internal/domain"
	"github.com/iho/fxledger/internal/usecase"
)

var (
	errTxClosed  = errors.New("memory: transaction already closed")
	errForeignTx = errors.New("memory: transaction was not started by this store")
	errNotLocked = errors.New("memory: account is not locked by this transaction")
)

// Store holds all data of the in-memory backend.
type Store struct {
	mu sync.Mutex

	nextUserID    int64
	nextAccountID int64
	nextTxID      int64

	users     map[int64]*domain.User
	usernames map[string]int64

	accounts map[int64]*domain.Account
	numbers  map[string]int64
	locks    map[int64]chan struct{}

	transactions []*domain.Transaction
	rates        map[domain.Currency]*domain.ExchangeRate
	outbox       []*domain.OutboxEvent
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:     make(map[int64]*domain.User),
		usernames: make(map[string]int64),
		accounts:  make(map[int64]*domain.Account),
		numbers:   make(map[string]int64),
		locks:     make(map[int64]chan struct{}),
		rates:     make(map[domain.Currency]*domain.ExchangeRate),
	}
}

// Tx is a unit of work over a Store.
type Tx struct {
	store    *Store
	held     []heldLock
	balances map[int64]balanceWrite
	records  []*domain.Transaction
	events   []*domain.OutboxEvent
	closed   bool
}

// heldLock keeps the channel next to the id so release never reads the
// store's lock map.
type heldLock struct {
	id int64
	ch chan struct{}
}

type balanceWrite struct {
	balance   decimal.Decimal
	updatedAt time.Time
}

// TxManager begins transactions on a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransientStorage, err)
	}

	return &Tx{
		store:    m.store,
		balances: make(map[int64]balanceWrite),
	}, nil
}

// Commit applies the staged writes. A staged negative balance aborts the
// whole transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range t.balances {
		if w.balance.IsNegative() {
			return fmt.Errorf("%w on account %s", domain.ErrInsufficientFunds, s.accounts[id].Number)
		}
	}

	for id, w := range t.balances {
		a := s.accounts[id]
		a.Balance = w.balance
		a.UpdatedAt = w.updatedAt
	}

	s.transactions = append(s.transactions, t.records...)
	s.outbox = append(s.outbox, t.events...)

	return nil
}

// Rollback discards the staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}

	t.release()

	return nil
}

func (t *Tx) release() {
	for _, h := range t.held {
		<-h.ch
	}
	t.held = nil
	t.closed = true
}

func (t *Tx) holds(id int64) bool {
	for _, h := range t.held {
		if h.id == id {
			return true
		}
	}
	return false
}

// lock acquires the account locks for ids in ascending order. A context
// deadline while waiting surfaces as a transient storage failure.
func (t *Tx) lock(ctx context.Context, ids []int64) error {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if t.holds(id) {
			continue
		}

		t.store.mu.Lock()
		ch := t.store.locks[id]
		t.store.mu.Unlock()

		select {
		case ch <- struct{}{}:
			t.held = append(t.held, heldLock{id: id, ch: ch})
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for account lock: %v", domain.ErrTransientStorage, ctx.Err())
		}
	}

	return nil
}

func asTx(tx usecase.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	if t.closed {
		return nil, errTxClosed
	}
	return t, nil
}
