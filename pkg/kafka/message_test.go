package kafka_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/pkg/kafka"
)

func TestIncomingMessageEntityEvent(t *testing.T) {
	payload, err := json.Marshal(kafka.EntityEvent{
		EventType:  "entity.created",
		TenantID:   "tenant-1",
		EntityID:   "supplier-1",
		EntityType: "supplier",
		Data:       json.RawMessage(`{"code":"SUP-001"}`),
		Timestamp:  time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	msg := &kafka.IncomingMessage{
		Key:   "supplier-1",
		Value: payload,
		Headers: map[string]string{
			"event_type":  "entity.created",
			"tenant_id":   "tenant-1",
			"entity_type": "supplier",
		},
	}

	assert.True(t, msg.IsEntityEvent())
	assert.False(t, msg.IsRelationshipEvent())
	assert.Equal(t, "tenant-1", msg.GetTenantID())

	event, err := msg.ParseEntityEvent()
	require.NoError(t, err)
	assert.Equal(t, "entity.created", event.EventType)
	assert.Equal(t, "supplier-1", event.EntityID)
	assert.JSONEq(t, `{"code":"SUP-001"}`, string(event.Data))
}

func TestIncomingMessageRelationshipEvent(t *testing.T) {
	payload, err := json.Marshal(kafka.RelationshipEvent{
		EventType:        "relationship.created",
		TenantID:         "tenant-1",
		RelationshipID:   "event-1:supplier-1",
		RelationshipType: "AFFECTS",
		FromEntityID:     "event-1",
		FromEntityType:   "risk_event",
		ToEntityID:       "supplier-1",
		ToEntityType:     "supplier",
	})
	require.NoError(t, err)

	msg := &kafka.IncomingMessage{
		Key:   "event-1:supplier-1",
		Value: payload,
		Headers: map[string]string{
			"event_type":        "relationship.created",
			"tenant_id":         "tenant-1",
			"relationship_type": "AFFECTS",
		},
	}

	assert.True(t, msg.IsRelationshipEvent())
	assert.False(t, msg.IsEntityEvent())

	event, err := msg.ParseRelationshipEvent()
	require.NoError(t, err)
	assert.Equal(t, "AFFECTS", event.RelationshipType)
	assert.Equal(t, "event-1", event.FromEntityID)
	assert.Equal(t, "supplier-1", event.ToEntityID)
}

func TestIncomingMessageFallbacks(t *testing.T) {
	// Event type missing from the payload falls back to the header
	msg := &kafka.IncomingMessage{
		Value:   []byte(`{"entity_id":"loc-1"}`),
		Headers: map[string]string{"event_type": "entity.deleted", "tenant_id": "tenant-9"},
	}

	event, err := msg.ParseEntityEvent()
	require.NoError(t, err)
	assert.Equal(t, "entity.deleted", event.EventType)

	// Tenant missing from the payload falls back to the header too
	assert.Equal(t, "tenant-9", msg.GetTenantID())

	// Garbage is an error, not a panic
	msg = &kafka.IncomingMessage{Value: []byte("not json"), Headers: map[string]string{"event_type": "entity.created"}}
	_, err = msg.ParseEntityEvent()
	assert.Error(t, err)
}
