package location

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

// Register registers location routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.GET("/code/:code", GetByCode)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns the tenant's locations, optionally filtered
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.List")
	defer span.End()

	filter, err := utils.BindRequest[models.ListLocationFilter](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LocationListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates a new location for the tenant
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateLocationRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	location := &models.Location{
		Code:      req.Code,
		Name:      req.Name,
		Type:      req.Type,
		Status:    req.Status,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Capacity:  req.Capacity,
	}

	if err := repo.Create(ctx, location); err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityCreated(ctx, events.EntityTypeLocation, location.TenantID, location.ID, location)

	return c.JSON(http.StatusCreated, models.LocationResponse{Location: *location})
}

// Get returns a single location by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.Get")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	location, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LocationResponse{Location: *location})
}

// GetByCode returns a single location by its business key
func GetByCode(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.GetByCode")
	defer span.End()

	code := c.Param("code")
	if code == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	location, err := repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LocationResponse{Location: *location})
}

// Update applies a partial update to a location
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.Update")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateLocationRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	location, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityUpdated(ctx, events.EntityTypeLocation, location.TenantID, location.ID, location)

	return c.JSON(http.StatusOK, models.LocationResponse{Location: *location})
}

// Delete removes a location. Locations still referenced by routes or
// inventory are protected and return 409.
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "location_handler.Delete")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.LocationRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitEntityDeleted(ctx, events.EntityTypeLocation, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}
