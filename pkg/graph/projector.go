package graph

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/events"
	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Projector applies supply chain lifecycle events to the graph. It is the
// handler behind the Kafka consumer: returning an error leaves the message
// uncommitted for redelivery, so only graph failures return errors while
// malformed messages are logged and dropped.
type Projector struct {
	network *NetworkService
	logger  ectologger.Logger
}

// NewProjector creates a new projector
func NewProjector(network *NetworkService, logger ectologger.Logger) *Projector {
	return &Projector{
		network: network,
		logger:  logger,
	}
}

// HandleMessage routes an incoming message to the right projection
func (p *Projector) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projector.HandleMessage")
	defer span.End()

	switch {
	case msg.IsEntityEvent():
		return p.projectEntityEvent(ctx, msg)
	case msg.IsRelationshipEvent():
		return p.projectRelationshipEvent(ctx, msg)
	default:
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"event_type": msg.EventType(),
			"offset":     msg.Offset,
		}).Debug("Skipping message with unknown event type")
		return nil
	}
}

func (p *Projector) projectEntityEvent(ctx context.Context, msg *kafka.IncomingMessage) error {
	event, err := msg.ParseEntityEvent()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("offset", msg.Offset).Error("Dropping unparseable entity event")
		return nil
	}

	// Users have no place in the network
	if event.EntityType == events.EntityTypeUser {
		return nil
	}

	// Inventory rows are edges, not nodes
	if event.EntityType == events.EntityTypeInventory {
		return p.projectInventoryEvent(ctx, event)
	}

	label := NodeLabel(event.EntityType)
	if label == "" {
		p.logger.WithContext(ctx).WithField("entity_type", event.EntityType).Debug("Skipping entity type with no graph label")
		return nil
	}

	switch event.EventType {
	case events.EventTypeEntityCreated, events.EventTypeEntityUpdated:
		props := scalarProps(event.Data)
		if err := p.network.UpsertNode(ctx, event.TenantID, label, event.EntityID, props); err != nil {
			return err
		}
		return p.projectDerivedEdges(ctx, event, props)

	case events.EventTypeEntityDeleted:
		return p.network.DeleteNode(ctx, event.TenantID, label, event.EntityID)

	default:
		p.logger.WithContext(ctx).WithField("event_type", event.EventType).Debug("Skipping unknown entity event type")
		return nil
	}
}

// projectDerivedEdges maintains the edges implied by an entity's own fields:
// a product's supplier and a route's endpoints.
func (p *Projector) projectDerivedEdges(ctx context.Context, event *kafka.EntityEvent, props map[string]any) error {
	switch event.EntityType {
	case events.EntityTypeProduct:
		// Supplier assignment can change; rebuild the edge rather than merge
		if err := p.network.DeleteIncomingEdges(ctx, event.TenantID, EdgeSupplies, LabelProduct, event.EntityID); err != nil {
			return err
		}
		supplierID := stringProp(props, "supplier_id")
		if supplierID == "" {
			return nil
		}
		return p.network.UpsertEdge(ctx, &EdgeInput{
			ID:        supplierID + ":" + event.EntityID,
			TenantID:  event.TenantID,
			EdgeType:  EdgeSupplies,
			FromLabel: LabelSupplier,
			FromID:    supplierID,
			ToLabel:   LabelProduct,
			ToID:      event.EntityID,
		})

	case events.EntityTypeShipmentRoute:
		// Route endpoints never change once created
		originID := stringProp(props, "origin_location_id")
		destinationID := stringProp(props, "destination_location_id")
		if originID == "" || destinationID == "" {
			return nil
		}
		if err := p.network.UpsertEdge(ctx, &EdgeInput{
			ID:        event.EntityID + ":origin",
			TenantID:  event.TenantID,
			EdgeType:  EdgeOrigin,
			FromLabel: LabelRoute,
			FromID:    event.EntityID,
			ToLabel:   LabelLocation,
			ToID:      originID,
		}); err != nil {
			return err
		}
		return p.network.UpsertEdge(ctx, &EdgeInput{
			ID:        event.EntityID + ":destination",
			TenantID:  event.TenantID,
			EdgeType:  EdgeDestination,
			FromLabel: LabelRoute,
			FromID:    event.EntityID,
			ToLabel:   LabelLocation,
			ToID:      destinationID,
		})
	}

	return nil
}

func (p *Projector) projectInventoryEvent(ctx context.Context, event *kafka.EntityEvent) error {
	if event.EventType == events.EventTypeEntityDeleted {
		return p.network.DeleteEdgeByID(ctx, event.TenantID, EdgeStockedAt, event.EntityID)
	}

	props := scalarProps(event.Data)
	productID := stringProp(props, "product_id")
	locationID := stringProp(props, "location_id")
	if productID == "" || locationID == "" {
		p.logger.WithContext(ctx).WithField("entity_id", event.EntityID).Error("Dropping inventory event without product or location")
		return nil
	}

	return p.network.UpsertEdge(ctx, &EdgeInput{
		ID:        event.EntityID,
		TenantID:  event.TenantID,
		EdgeType:  EdgeStockedAt,
		FromLabel: LabelProduct,
		FromID:    productID,
		ToLabel:   LabelLocation,
		ToID:      locationID,
		Properties: map[string]any{
			"quantity_on_hand":  props["quantity_on_hand"],
			"quantity_reserved": props["quantity_reserved"],
			"reorder_point":     props["reorder_point"],
		},
	})
}

func (p *Projector) projectRelationshipEvent(ctx context.Context, msg *kafka.IncomingMessage) error {
	event, err := msg.ParseRelationshipEvent()
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("offset", msg.Offset).Error("Dropping unparseable relationship event")
		return nil
	}

	switch event.EventType {
	case events.EventTypeRelationshipCreated:
		fromLabel := NodeLabel(event.FromEntityType)
		toLabel := NodeLabel(event.ToEntityType)
		if fromLabel == "" || toLabel == "" {
			p.logger.WithContext(ctx).WithFields(map[string]any{
				"from_entity_type": event.FromEntityType,
				"to_entity_type":   event.ToEntityType,
			}).Error("Dropping relationship event with unknown entity types")
			return nil
		}
		return p.network.UpsertEdge(ctx, &EdgeInput{
			ID:         event.RelationshipID,
			TenantID:   event.TenantID,
			EdgeType:   event.RelationshipType,
			FromLabel:  fromLabel,
			FromID:     event.FromEntityID,
			ToLabel:    toLabel,
			ToID:       event.ToEntityID,
			Properties: scalarProps(event.Properties),
		})

	case events.EventTypeRelationshipDeleted:
		return p.network.DeleteEdgeByID(ctx, event.TenantID, event.RelationshipType, event.RelationshipID)

	default:
		p.logger.WithContext(ctx).WithField("event_type", event.EventType).Debug("Skipping unknown relationship event type")
		return nil
	}
}

// scalarProps extracts the flat properties of a JSON payload. Nested objects,
// arrays and nulls are dropped; graph properties hold scalars only.
func scalarProps(data json.RawMessage) map[string]any {
	props := make(map[string]any)
	if len(data) == 0 {
		return props
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return props
	}

	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			continue
		case nil:
			continue
		default:
			props[k] = v
		}
	}
	return props
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
