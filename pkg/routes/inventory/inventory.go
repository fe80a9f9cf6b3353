package inventory

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

// Register registers inventory routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/totals", TotalsByLocation)
	g.GET("/:id", Get)
	g.GET("/product/:product_id/location/:location_id", GetByProductAndLocation)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns the tenant's inventory rows, optionally filtered
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.List")
	defer span.End()

	filter, err := utils.BindRequest[models.ListInventoryFilter](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.InventoryListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates an inventory row for a product/location pair
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateInventoryRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	inventory := &models.Inventory{
		ProductID:        req.ProductID,
		LocationID:       req.LocationID,
		QuantityOnHand:   req.QuantityOnHand,
		QuantityReserved: req.QuantityReserved,
		ReorderPoint:     req.ReorderPoint,
		LastCountDate:    req.LastCountDate,
	}

	if err := repo.Create(ctx, inventory); err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityCreated(ctx, events.EntityTypeInventory, inventory.TenantID, inventory.ID, inventory)

	return c.JSON(http.StatusCreated, models.InventoryResponse{Inventory: *inventory})
}

// TotalsByLocation returns stock totals aggregated per location
func TotalsByLocation(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.TotalsByLocation")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	totals, err := repo.TotalsByLocation(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.InventoryTotalsResponse{Items: totals})
}

// Get returns a single inventory row by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Get")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	inventory, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.InventoryResponse{Inventory: *inventory})
}

// GetByProductAndLocation returns the inventory row for a product at a
// location
func GetByProductAndLocation(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.GetByProductAndLocation")
	defer span.End()

	productID, err := utils.ParseUUIDParam(c, "product_id")
	if err != nil {
		return err
	}

	locationID, err := utils.ParseUUIDParam(c, "location_id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	inventory, err := repo.GetByProductAndLocation(ctx, productID, locationID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.InventoryResponse{Inventory: *inventory})
}

// Update applies a partial update to an inventory row
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Update")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateInventoryRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	inventory, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityUpdated(ctx, events.EntityTypeInventory, inventory.TenantID, inventory.ID, inventory)

	return c.JSON(http.StatusOK, models.InventoryResponse{Inventory: *inventory})
}

// Delete removes an inventory row
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "inventory_handler.Delete")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.InventoryRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitEntityDeleted(ctx, events.EntityTypeInventory, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}
