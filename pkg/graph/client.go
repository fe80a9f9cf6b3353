// Package graph maintains the supply chain network in a Memgraph/Neo4j
// database over the Bolt protocol. Nodes and edges mirror the relational
// entities and are kept current by the event projector.
package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Client is a thin wrapper around the Bolt driver. Memgraph speaks the
// Neo4j wire protocol, so the same client serves either backend.
type Client struct {
	driver neo4j.DriverWithContext
	logger ectologger.Logger
}

// Config holds the Bolt connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewClient opens a driver against the configured Bolt endpoint. The driver
// connects lazily; call VerifyConnectivity to probe the backend.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	target := fmt.Sprintf("bolt://%s:%d", cfg.Host, cfg.Port)

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(target, auth)
	if err != nil {
		return nil, fmt.Errorf("open graph driver: %w", err)
	}

	logger.Infof("Graph driver opened for %s", target)

	return &Client{driver: driver, logger: logger}, nil
}

// Close releases the driver and its connection pool
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("Closing graph driver")
	return c.driver.Close(ctx)
}

// VerifyConnectivity probes the backend, used at startup and by health checks
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Client) session(ctx context.Context, accessMode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: accessMode})
}

// ExecuteWrite runs work inside a managed write transaction
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteWrite")
	defer span.End()

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	return session.ExecuteWrite(ctx, work)
}

// ExecuteRead runs work inside a managed read transaction
func (c *Client) ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteRead")
	defer span.End()

	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	return session.ExecuteRead(ctx, work)
}
