package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/pkg/database"
)

// GraphPinger is the slice of the graph client the checker needs
type GraphPinger interface {
	VerifyConnectivity(ctx context.Context) error
}

// RedisPinger is the slice of the Redis client the checker needs
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Checker serves the health endpoints. Liveness is unconditional, readiness
// flips with SetReady, and the full health report probes every configured
// backend.
type Checker struct {
	db        database.DB
	graph     GraphPinger
	redis     RedisPinger
	version   string
	startTime time.Time
	ready     atomic.Bool
}

// NewChecker creates a new health checker. The graph and Redis pingers may be
// nil when those backends are disabled.
func NewChecker(db database.DB, graph GraphPinger, redis RedisPinger, version string) *Checker {
	return &Checker{
		db:        db,
		graph:     graph,
		redis:     redis,
		version:   version,
		startTime: time.Now(),
	}
}

// SetReady sets the readiness state
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// Register registers health check endpoints
func (c *Checker) Register(e *echo.Echo) {
	e.GET("/api/v1/health", c.Health)
	e.GET("/api/v1/health/live", c.Live)
	e.GET("/api/v1/health/ready", c.Ready)
}

// Report is the health check response
type Report struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Checks     map[string]*Check `json:"checks"`
	ReportedAt time.Time         `json:"reported_at"`
}

// Check is the outcome of probing one backend
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// probe times one backend check and records the outcome in the report
func (r *Report) probe(name string, ping func() error) {
	start := time.Now()
	if err := ping(); err != nil {
		r.Status = "unhealthy"
		r.Checks[name] = &Check{Status: "unhealthy", Message: err.Error()}
		return
	}
	r.Checks[name] = &Check{Status: "healthy", Latency: time.Since(start).String()}
}

// Health probes every configured backend and reports 200 when all of them
// answer, 503 otherwise
func (c *Checker) Health(ctx echo.Context) error {
	report := &Report{
		Status:     "healthy",
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		Checks:     make(map[string]*Check),
		ReportedAt: time.Now(),
	}

	reqCtx := ctx.Request().Context()

	if c.db != nil {
		report.probe("database", func() error { return c.db.PingContext(reqCtx) })
	} else {
		report.Status = "unhealthy"
		report.Checks["database"] = &Check{Status: "unhealthy", Message: "database not configured"}
	}

	if c.graph != nil {
		report.probe("graph", func() error { return c.graph.VerifyConnectivity(reqCtx) })
	}

	if c.redis != nil {
		report.probe("redis", func() error { return c.redis.Ping(reqCtx) })
	}

	code := http.StatusOK
	if report.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	return ctx.JSON(code, report)
}

// Live reports whether the process is running at all
func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// Ready reports whether the service is ready to accept traffic
func (c *Checker) Ready(ctx echo.Context) error {
	if c.ready.Load() {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
	return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
}
