package kafka

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// newIncomingMessage copies the parts of a fetched message the handlers use
func newIncomingMessage(msg kafka.Message) *IncomingMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &IncomingMessage{
		Key:       string(msg.Key),
		Value:     msg.Value,
		Headers:   headers,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Topic:     msg.Topic,
	}
}

// EventType returns the event type header, or the empty string
func (m *IncomingMessage) EventType() string {
	return m.Headers["event_type"]
}

// IsEntityEvent reports whether the message carries an entity lifecycle event
func (m *IncomingMessage) IsEntityEvent() bool {
	return strings.HasPrefix(m.EventType(), "entity.")
}

// IsRelationshipEvent reports whether the message carries a relationship
// lifecycle event
func (m *IncomingMessage) IsRelationshipEvent() bool {
	return strings.HasPrefix(m.EventType(), "relationship.")
}

// ParseEntityEvent parses the message value as an entity event
func (m *IncomingMessage) ParseEntityEvent() (*EntityEvent, error) {
	var event EntityEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return nil, err
	}
	if event.EventType == "" {
		event.EventType = m.EventType()
	}
	return &event, nil
}

// ParseRelationshipEvent parses the message value as a relationship event
func (m *IncomingMessage) ParseRelationshipEvent() (*RelationshipEvent, error) {
	var event RelationshipEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return nil, err
	}
	if event.EventType == "" {
		event.EventType = m.EventType()
	}
	return &event, nil
}

// GetTenantID returns the tenant the event belongs to, preferring the payload
// over the header
func (m *IncomingMessage) GetTenantID() string {
	if m.IsRelationshipEvent() {
		if event, err := m.ParseRelationshipEvent(); err == nil && event.TenantID != "" {
			return event.TenantID
		}
	} else {
		if event, err := m.ParseEntityEvent(); err == nil && event.TenantID != "" {
			return event.TenantID
		}
	}
	return m.Headers["tenant_id"]
}
