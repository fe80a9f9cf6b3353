// Package events emits lifecycle events for supply chain entities and the
// links between them. Emission is best effort: failures are logged and traced
// but never fail the request that caused them.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Event types carried in the event_type header and payload
const (
	EventTypeEntityCreated = "entity.created"
	EventTypeEntityUpdated = "entity.updated"
	EventTypeEntityDeleted = "entity.deleted"

	EventTypeRelationshipCreated = "relationship.created"
	EventTypeRelationshipDeleted = "relationship.deleted"
)

// Entity types referenced by events and graph nodes
const (
	EntityTypeSupplier      = "supplier"
	EntityTypeProduct       = "product"
	EntityTypeLocation      = "location"
	EntityTypeShipmentRoute = "shipment_route"
	EntityTypeRiskEvent     = "risk_event"
	EntityTypeInventory     = "inventory"
	EntityTypeUser          = "user"
)

// RelationshipAffects links a risk event to an entity it disrupts
const RelationshipAffects = "AFFECTS"

// Emitter publishes lifecycle events for vine entities
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter. A nil producer yields an emitter
// that drops everything, which is how deployments without Kafka run.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) enabled() bool {
	return e != nil && e.producer != nil
}

// EmitEntityCreated emits an entity created event
func (e *Emitter) EmitEntityCreated(ctx context.Context, entityType string, tenantID, entityID uuid.UUID, data any) {
	e.emitEntity(ctx, EventTypeEntityCreated, entityType, tenantID, entityID, data)
}

// EmitEntityUpdated emits an entity updated event
func (e *Emitter) EmitEntityUpdated(ctx context.Context, entityType string, tenantID, entityID uuid.UUID, data any) {
	e.emitEntity(ctx, EventTypeEntityUpdated, entityType, tenantID, entityID, data)
}

// EmitEntityDeleted emits an entity deleted event. Deletes carry no payload.
func (e *Emitter) EmitEntityDeleted(ctx context.Context, entityType string, tenantID, entityID uuid.UUID) {
	e.emitEntity(ctx, EventTypeEntityDeleted, entityType, tenantID, entityID, nil)
}

func (e *Emitter) emitEntity(ctx context.Context, eventType, entityType string, tenantID, entityID uuid.UUID, data any) {
	if !e.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emitEntity")
	defer span.End()

	var payload json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"event_type": eventType,
				"entity_id":  entityID,
			}).Error("Failed to marshal event payload")
			return
		}
		payload = b
	}

	event := &kafka.EntityEvent{
		EventType:  eventType,
		TenantID:   tenantID.String(),
		EntityID:   entityID.String(),
		EntityType: entityType,
		Data:       payload,
	}

	if err := e.producer.PublishEntityEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"entity_id":  entityID,
		}).Error("Failed to emit entity event")
	}
}

// EmitRelationshipCreated emits a relationship created event
func (e *Emitter) EmitRelationshipCreated(ctx context.Context, relType string, tenantID uuid.UUID, fromType string, fromID uuid.UUID, toType string, toID uuid.UUID) {
	e.emitRelationship(ctx, EventTypeRelationshipCreated, relType, tenantID, fromType, fromID, toType, toID)
}

// EmitRelationshipDeleted emits a relationship deleted event
func (e *Emitter) EmitRelationshipDeleted(ctx context.Context, relType string, tenantID uuid.UUID, fromType string, fromID uuid.UUID, toType string, toID uuid.UUID) {
	e.emitRelationship(ctx, EventTypeRelationshipDeleted, relType, tenantID, fromType, fromID, toType, toID)
}

func (e *Emitter) emitRelationship(ctx context.Context, eventType, relType string, tenantID uuid.UUID, fromType string, fromID uuid.UUID, toType string, toID uuid.UUID) {
	if !e.enabled() {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emitRelationship")
	defer span.End()

	event := &kafka.RelationshipEvent{
		EventType:        eventType,
		TenantID:         tenantID.String(),
		RelationshipID:   RelationshipID(fromID, toID),
		RelationshipType: relType,
		FromEntityID:     fromID.String(),
		FromEntityType:   fromType,
		ToEntityID:       toID.String(),
		ToEntityType:     toType,
	}

	if err := e.producer.PublishRelationshipEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type":      eventType,
			"relationship_id": event.RelationshipID,
		}).Error("Failed to emit relationship event")
	}
}

// RelationshipID builds the stable identifier for a link between two entities
func RelationshipID(fromID, toID uuid.UUID) string {
	return fromID.String() + ":" + toID.String()
}
