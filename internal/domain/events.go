package domain

import (
	"strconv"
	"time"
)

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionCreatedEvent builds the outbox event announcing tx.
// from is nil for deposits.
func NewTransactionCreatedEvent(id string, tx *Transaction, from, to *Account) *OutboxEvent {
	payload := map[string]any{
		"transaction_id":    tx.ID,
		"type":              string(tx.Type),
		"to_account_number": to.Number,
		"amount":            tx.Amount.StringFixed(AmountScale),
		"converted_amount":  tx.ConvertedAmount.StringFixed(AmountScale),
		"event_at":          tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if from != nil {
		payload["from_account_number"] = from.Number
	}
	if tx.RateUsed.Valid {
		payload["rate_used"] = tx.RateUsed.Decimal.StringFixed(RateScale)
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   strconv.FormatInt(tx.ID, 10),
		AggregateType: AggregateTypeTransaction,
		EventType:     EventTypeTransactionCreated,
		Payload:       payload,
		CreatedAt:     tx.CreatedAt,
	}
}
