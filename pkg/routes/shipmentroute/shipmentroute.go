package shipmentroute

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/internal/repositories"
	appctx "github.com/Ramsey-B/vine/pkg/context"
	"github.com/Ramsey-B/vine/pkg/events"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
	"github.com/Ramsey-B/vine/pkg/utils"
)

// Register registers shipment route routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns the tenant's shipment routes, optionally filtered
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "shipmentroute_handler.List")
	defer span.End()

	filter, err := utils.BindRequest[models.ListShipmentRouteFilter](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ShipmentRouteRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ShipmentRouteListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates a new shipment route between two of the tenant's locations
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "shipmentroute_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateShipmentRouteRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ShipmentRouteRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	route := &models.ShipmentRoute{
		OriginLocationID:      req.OriginLocationID,
		DestinationLocationID: req.DestinationLocationID,
		TransitTimeDays:       req.TransitTimeDays,
		TransportMode:         req.TransportMode,
		DistanceKM:            req.DistanceKM,
		CostPerShipment:       req.CostPerShipment,
	}

	if err := repo.Create(ctx, route); err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityCreated(ctx, events.EntityTypeShipmentRoute, route.TenantID, route.ID, route)

	return c.JSON(http.StatusCreated, models.ShipmentRouteResponse{ShipmentRoute: *route})
}

// Get returns a single shipment route by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "shipmentroute_handler.Get")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ShipmentRouteRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	route, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ShipmentRouteResponse{ShipmentRoute: *route})
}

// Update applies a partial update to a shipment route
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "shipmentroute_handler.Update")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateShipmentRouteRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ShipmentRouteRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	route, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityUpdated(ctx, events.EntityTypeShipmentRoute, route.TenantID, route.ID, route)

	return c.JSON(http.StatusOK, models.ShipmentRouteResponse{ShipmentRoute: *route})
}

// Delete removes a shipment route. Routes still linked to risk events are
// protected and return 409.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "shipmentroute_handler.Delete")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ShipmentRouteRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitEntityDeleted(ctx, events.EntityTypeShipmentRoute, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}
