package network

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/vine/pkg/context"
	graphpkg "github.com/Ramsey-B/vine/pkg/graph"
	"github.com/Ramsey-B/vine/pkg/tracing"
	"github.com/Ramsey-B/vine/pkg/utils"
)

// Handler serves graph queries over the supply chain network
type Handler struct {
	queryService *graphpkg.QueryService
	logger       ectologger.Logger
}

// NewHandler creates a new network handler
func NewHandler(queryService *graphpkg.QueryService, logger ectologger.Logger) *Handler {
	return &Handler{
		queryService: queryService,
		logger:       logger,
	}
}

// Register registers the network routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/query", h.ExecuteQuery)
	g.GET("/impact/:risk_event_id", h.Impact)
	g.GET("/neighbors/:entity_id", h.Neighbors)
	g.GET("/route", h.RouteBetween)
}

// requireQueryService returns the query service, or 503 when the graph
// database is not configured
func (h *Handler) requireQueryService(c echo.Context) (*graphpkg.QueryService, error) {
	if h.queryService != nil {
		return h.queryService, nil
	}

	ctx := c.Request().Context()
	_, svc, err := ectoinject.GetContext[*graphpkg.QueryService](ctx)
	if err != nil || svc == nil {
		return nil, httperror.NewHTTPError(http.StatusServiceUnavailable, "graph query service unavailable")
	}
	return svc, nil
}

func requireTenant(c echo.Context) (string, error) {
	tenantID := appctx.GetTenantID(c.Request().Context())
	if tenantID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "tenant is required")
	}
	return tenantID, nil
}

// QueryRequest is the request body for executing a Cypher query
type QueryRequest struct {
	Query  string         `json:"query" validate:"required"`
	Params map[string]any `json:"params,omitempty"`
}

// ExecuteQuery runs a read-only Cypher query against the tenant's partition
// of the network
func (h *Handler) ExecuteQuery(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.ExecuteQuery")
	defer span.End()

	tenantID, err := requireTenant(c)
	if err != nil {
		return err
	}

	qs, err := h.requireQueryService(c)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[QueryRequest](c)
	if err != nil {
		return err
	}

	result, err := qs.ExecuteQuery(ctx, tenantID, req.Query, req.Params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Impact returns the entities a risk event disrupts, including products
// supplied by affected suppliers and locations stocking affected products
func (h *Handler) Impact(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.Impact")
	defer span.End()

	tenantID, err := requireTenant(c)
	if err != nil {
		return err
	}

	qs, err := h.requireQueryService(c)
	if err != nil {
		return err
	}

	riskEventID, err := utils.ParseUUIDParam(c, "risk_event_id")
	if err != nil {
		return err
	}

	result, err := qs.ImpactedEntities(ctx, tenantID, riskEventID.String())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Neighbors returns the entities connected to a given entity within N hops
func (h *Handler) Neighbors(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.Neighbors")
	defer span.End()

	tenantID, err := requireTenant(c)
	if err != nil {
		return err
	}

	qs, err := h.requireQueryService(c)
	if err != nil {
		return err
	}

	entityID, err := utils.ParseUUIDParam(c, "entity_id")
	if err != nil {
		return err
	}

	hops := 1
	if hopsStr := c.QueryParam("hops"); hopsStr != "" {
		var parsed int
		if err := echo.QueryParamsBinder(c).Int("hops", &parsed).BindError(); err == nil && parsed > 0 {
			hops = parsed
		}
	}

	result, err := qs.Neighborhood(ctx, tenantID, entityID.String(), hops)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// RouteBetween finds the shortest chain of shipment routes connecting two
// locations
func (h *Handler) RouteBetween(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "network_handler.RouteBetween")
	defer span.End()

	tenantID, err := requireTenant(c)
	if err != nil {
		return err
	}

	qs, err := h.requireQueryService(c)
	if err != nil {
		return err
	}

	fromID := c.QueryParam("from")
	toID := c.QueryParam("to")
	if fromID == "" || toID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "from and to parameters are required")
	}

	maxLegs := 5
	if legsStr := c.QueryParam("max_legs"); legsStr != "" {
		var parsed int
		if err := echo.QueryParamsBinder(c).Int("max_legs", &parsed).BindError(); err == nil && parsed > 0 {
			maxLegs = parsed
		}
	}

	result, err := qs.RouteBetween(ctx, tenantID, fromID, toID, maxLegs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
