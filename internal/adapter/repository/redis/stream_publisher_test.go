package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fxledger/internal/domain"
)

func TestStreamPublisherAppendsEvent(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	pub := NewStreamPublisher(client, "fxledger.events", 1000)
	event := &domain.OutboxEvent{
		ID:            "01HQ",
		AggregateID:   "5",
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeTransactionCreated,
		Payload:       map[string]any{"type": "DEPOSIT", "amount": "500.0000"},
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, pub.Publish(context.Background(), event))

	entries, err := client.XRange(context.Background(), "fxledger.events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, "01HQ", values["event_id"])
	assert.Equal(t, domain.EventTypeTransactionCreated, values["event_type"])
	assert.Equal(t, "5", values["aggregate_id"])
	assert.Equal(t, "2024-03-01T12:00:00Z", values["created_at"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &payload))
	assert.Equal(t, "500.0000", payload["amount"])
}
