package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/vine/pkg/events"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Node labels in the supply chain network
const (
	LabelSupplier  = "Supplier"
	LabelProduct   = "Product"
	LabelLocation  = "Location"
	LabelRoute     = "Route"
	LabelRiskEvent = "RiskEvent"
)

// Edge types in the supply chain network
const (
	EdgeSupplies    = "SUPPLIES"    // (Supplier)-[:SUPPLIES]->(Product)
	EdgeStockedAt   = "STOCKED_AT"  // (Product)-[:STOCKED_AT]->(Location)
	EdgeOrigin      = "ORIGIN"      // (Route)-[:ORIGIN]->(Location)
	EdgeDestination = "DESTINATION" // (Route)-[:DESTINATION]->(Location)
	EdgeAffects     = "AFFECTS"     // (RiskEvent)-[:AFFECTS]->(any)
)

// NodeLabel maps an event entity type to its graph label. Entity types with
// no place in the network map to the empty string.
func NodeLabel(entityType string) string {
	switch entityType {
	case events.EntityTypeSupplier:
		return LabelSupplier
	case events.EntityTypeProduct:
		return LabelProduct
	case events.EntityTypeLocation:
		return LabelLocation
	case events.EntityTypeShipmentRoute:
		return LabelRoute
	case events.EntityTypeRiskEvent:
		return LabelRiskEvent
	default:
		return ""
	}
}

// NetworkService maintains nodes and edges of the supply chain network
type NetworkService struct {
	client *Client
	logger ectologger.Logger
}

// NewNetworkService creates a new network service
func NewNetworkService(client *Client, logger ectologger.Logger) *NetworkService {
	return &NetworkService{
		client: client,
		logger: logger,
	}
}

// UpsertNode creates or updates a node identified by (tenant_id, id)
func (s *NetworkService) UpsertNode(ctx context.Context, tenantID, label, id string, props map[string]any) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.UpsertNode")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"node_id":   id,
		"label":     label,
		"tenant_id": tenantID,
	})

	merged := make(map[string]any, len(props)+2)
	for k, v := range props {
		merged[k] = v
	}
	// Identity keys win over anything in the payload
	merged["id"] = id
	merged["tenant_id"] = tenantID

	cypher := fmt.Sprintf(`
		MERGE (n:%s {id: $id, tenant_id: $tenant_id})
		SET n = $props
		RETURN n
	`, sanitizeLabel(label))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        id,
			"tenant_id": tenantID,
			"props":     merged,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to upsert node in graph")
		return fmt.Errorf("failed to upsert node in graph: %w", err)
	}

	log.Debug("Upserted node in graph")
	return nil
}

// DeleteNode removes a node and every edge touching it
func (s *NetworkService) DeleteNode(ctx context.Context, tenantID, label, id string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.DeleteNode")
	defer span.End()

	cypher := fmt.Sprintf(`
		MATCH (n:%s {id: $id, tenant_id: $tenant_id})
		DETACH DELETE n
	`, sanitizeLabel(label))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete node in graph")
		return fmt.Errorf("failed to delete node in graph: %w", err)
	}

	return nil
}

// EdgeInput describes an edge between two existing nodes
type EdgeInput struct {
	ID         string
	TenantID   string
	EdgeType   string
	FromLabel  string
	FromID     string
	ToLabel    string
	ToID       string
	Properties map[string]any
}

// UpsertEdge creates or updates an edge identified by (tenant_id, id). Both
// endpoints must already exist in the tenant's partition or nothing happens.
func (s *NetworkService) UpsertEdge(ctx context.Context, edge *EdgeInput) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.UpsertEdge")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"edge_id":   edge.ID,
		"edge_type": edge.EdgeType,
		"from":      edge.FromID,
		"to":        edge.ToID,
		"tenant_id": edge.TenantID,
	})

	props := make(map[string]any, len(edge.Properties)+2)
	for k, v := range edge.Properties {
		props[k] = v
	}
	props["id"] = edge.ID
	props["tenant_id"] = edge.TenantID

	cypher := fmt.Sprintf(`
		MATCH (from:%s {id: $from_id, tenant_id: $tenant_id})
		MATCH (to:%s {id: $to_id, tenant_id: $tenant_id})
		MERGE (from)-[r:%s {id: $edge_id, tenant_id: $tenant_id}]->(to)
		SET r += $props
		RETURN r
	`, sanitizeLabel(edge.FromLabel), sanitizeLabel(edge.ToLabel), sanitizeLabel(edge.EdgeType))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"from_id":   edge.FromID,
			"to_id":     edge.ToID,
			"edge_id":   edge.ID,
			"tenant_id": edge.TenantID,
			"props":     props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to upsert edge in graph")
		return fmt.Errorf("failed to upsert edge in graph: %w", err)
	}

	log.Debug("Upserted edge in graph")
	return nil
}

// DeleteEdgeByID removes an edge by its identifier without knowing its
// endpoints
func (s *NetworkService) DeleteEdgeByID(ctx context.Context, tenantID, edgeType, edgeID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.DeleteEdgeByID")
	defer span.End()

	cypher := fmt.Sprintf(`
		MATCH ()-[r:%s {id: $id, tenant_id: $tenant_id}]->()
		DELETE r
	`, sanitizeLabel(edgeType))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        edgeID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete edge in graph")
		return fmt.Errorf("failed to delete edge in graph: %w", err)
	}

	return nil
}

// DeleteIncomingEdges removes all edges of one type pointing at a node. The
// projector uses this to rebuild derived edges whose source may have changed.
func (s *NetworkService) DeleteIncomingEdges(ctx context.Context, tenantID, edgeType, toLabel, toID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.DeleteIncomingEdges")
	defer span.End()

	cypher := fmt.Sprintf(`
		MATCH ()-[r:%s {tenant_id: $tenant_id}]->(n:%s {id: $id, tenant_id: $tenant_id})
		DELETE r
	`, sanitizeLabel(edgeType), sanitizeLabel(toLabel))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        toID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete incoming edges in graph")
		return fmt.Errorf("failed to delete incoming edges in graph: %w", err)
	}

	return nil
}

// PurgeTenant removes every node and edge belonging to a tenant
func (s *NetworkService) PurgeTenant(ctx context.Context, tenantID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.NetworkService.PurgeTenant")
	defer span.End()

	cypher := `
		MATCH (n {tenant_id: $tenant_id})
		DETACH DELETE n
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to purge tenant from graph")
		return fmt.Errorf("failed to purge tenant from graph: %w", err)
	}

	s.logger.WithContext(ctx).WithField("tenant_id", tenantID).Info("Purged tenant from graph")
	return nil
}

// sanitizeLabel restricts a label to alphanumerics and underscores. Labels
// and relationship types cannot be query parameters in Cypher; they are
// interpolated into the query text.
func sanitizeLabel(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, label)
	if cleaned == "" {
		return "Entity"
	}
	return cleaned
}
