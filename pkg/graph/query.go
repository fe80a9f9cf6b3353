package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/vine/pkg/tracing"
)

// QueryService answers questions about the supply chain network (OpenCypher)
type QueryService struct {
	client *Client
	logger ectologger.Logger
}

// NewQueryService creates a new query service
func NewQueryService(client *Client, logger ectologger.Logger) *QueryService {
	return &QueryService{
		client: client,
		logger: logger,
	}
}

// QueryResult is the JSON shape returned to API clients: every distinct node
// and relationship encountered in the result, plus one row per record.
type QueryResult struct {
	Nodes         []NodeResult `json:"nodes,omitempty"`
	Relationships []RelResult  `json:"relationships,omitempty"`
	Rows          []any        `json:"rows,omitempty"`
}

// NodeResult represents a node from query results
type NodeResult struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// RelResult represents a relationship from query results
type RelResult struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	StartNode  string         `json:"start_node"`
	EndNode    string         `json:"end_node"`
	Properties map[string]any `json:"properties"`
}

// ExecuteQuery runs a read-only Cypher query. The tenant id is bound as the
// $_tenant_id parameter; queries are expected to filter on it.
func (s *QueryService) ExecuteQuery(ctx context.Context, tenantID string, cypher string, params map[string]any) (*QueryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.QueryService.ExecuteQuery")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"query_len": len(cypher),
	})

	if params == nil {
		params = make(map[string]any)
	}
	params["_tenant_id"] = tenantID

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		col := newCollector()
		for records.Next(ctx) {
			record := records.Record()
			row := make(map[string]any, len(record.Keys))
			for _, key := range record.Keys {
				val, _ := record.Get(key)
				row[key] = col.value(val)
			}
			col.qr.Rows = append(col.qr.Rows, row)
		}
		if err := records.Err(); err != nil {
			return nil, err
		}
		return col.qr, nil
	})

	if err != nil {
		log.WithError(err).Error("Failed to execute graph query")
		return nil, fmt.Errorf("failed to execute graph query: %w", err)
	}

	return result.(*QueryResult), nil
}

// ImpactedEntities returns everything a risk event touches: the entities it
// directly affects, products supplied by affected suppliers, and locations
// stocking those products.
func (s *QueryService) ImpactedEntities(ctx context.Context, tenantID string, riskEventID string) (*QueryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.QueryService.ImpactedEntities")
	defer span.End()

	cypher := `
		MATCH (e:RiskEvent {id: $id, tenant_id: $_tenant_id})-[:AFFECTS]->(direct)
		OPTIONAL MATCH (direct)-[:SUPPLIES]->(product:Product)
		OPTIONAL MATCH (direct)-[:STOCKED_AT]->(location:Location)
		RETURN direct, product, location
	`

	return s.ExecuteQuery(ctx, tenantID, cypher, map[string]any{
		"id": riskEventID,
	})
}

// Neighborhood finds all entities connected within N hops of a node
func (s *QueryService) Neighborhood(ctx context.Context, tenantID string, entityID string, hops int) (*QueryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.QueryService.Neighborhood")
	defer span.End()

	if hops <= 0 {
		hops = 1
	}

	cypher := fmt.Sprintf(`
		MATCH (start {id: $id, tenant_id: $_tenant_id})
		MATCH (start)-[r*1..%d]-(neighbor)
		WHERE neighbor.tenant_id = $_tenant_id
		RETURN DISTINCT neighbor
	`, hops)

	return s.ExecuteQuery(ctx, tenantID, cypher, map[string]any{
		"id": entityID,
	})
}

// RouteBetween finds the shortest chain of routes connecting two locations.
// Each leg crosses a Route node, so a journey of N legs is 2N hops.
func (s *QueryService) RouteBetween(ctx context.Context, tenantID string, originLocationID, destinationLocationID string, maxLegs int) (*QueryResult, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.QueryService.RouteBetween")
	defer span.End()

	if maxLegs <= 0 {
		maxLegs = 5
	}

	cypher := fmt.Sprintf(`
		MATCH (from:Location {id: $from_id, tenant_id: $_tenant_id})
		MATCH (to:Location {id: $to_id, tenant_id: $_tenant_id})
		MATCH p = shortestPath((from)-[:ORIGIN|DESTINATION*..%d]-(to))
		RETURN p
	`, maxLegs*2)

	return s.ExecuteQuery(ctx, tenantID, cypher, map[string]any{
		"from_id": originLocationID,
		"to_id":   destinationLocationID,
	})
}

// collector accumulates the distinct nodes and relationships seen while rows
// are converted to plain Go values.
type collector struct {
	qr            *QueryResult
	seenNodes     map[string]bool
	seenRels      map[string]bool
	nodeByElement map[string]string
}

func newCollector() *collector {
	return &collector{
		qr: &QueryResult{
			Nodes:         make([]NodeResult, 0),
			Relationships: make([]RelResult, 0),
			Rows:          make([]any, 0),
		},
		seenNodes:     make(map[string]bool),
		seenRels:      make(map[string]bool),
		nodeByElement: make(map[string]string),
	}
}

// value converts a driver value to a plain Go value, recording any graph
// entities it contains along the way.
func (c *collector) value(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case neo4j.Node:
		return c.node(v)
	case neo4j.Relationship:
		return c.relationship(v)
	case neo4j.Path:
		// Nodes first; relationship endpoints resolve through them
		for _, node := range v.Nodes {
			c.node(node)
		}
		for _, rel := range v.Relationships {
			c.relationship(rel)
		}
		return map[string]any{
			"node_count": len(v.Nodes),
			"rel_count":  len(v.Relationships),
		}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = c.value(item)
		}
		return out
	default:
		return v
	}
}

func (c *collector) node(v neo4j.Node) string {
	id := fmt.Sprintf("%v", v.Props["id"])
	c.nodeByElement[v.ElementId] = id
	if !c.seenNodes[id] {
		c.seenNodes[id] = true
		c.qr.Nodes = append(c.qr.Nodes, NodeResult{
			ID:         id,
			Labels:     v.Labels,
			Properties: v.Props,
		})
	}
	return id
}

func (c *collector) relationship(v neo4j.Relationship) string {
	id := fmt.Sprintf("%v", v.Props["id"])
	if !c.seenRels[id] {
		c.seenRels[id] = true
		c.qr.Relationships = append(c.qr.Relationships, RelResult{
			ID:         id,
			Type:       v.Type,
			StartNode:  c.nodeID(v.StartElementId),
			EndNode:    c.nodeID(v.EndElementId),
			Properties: v.Props,
		})
	}
	return id
}

// nodeID resolves a driver element id to the node's id property when that
// node appeared in the same result, falling back to the element id.
func (c *collector) nodeID(elementID string) string {
	if id, ok := c.nodeByElement[elementID]; ok {
		return id
	}
	return elementID
}
