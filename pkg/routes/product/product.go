package product

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

// Register registers product routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.GET("/sku/:sku", GetBySKU)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// List returns the tenant's products, optionally filtered
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.List")
	defer span.End()

	filter, err := utils.BindRequest[models.ListProductFilter](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates a new product for the tenant
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateProductRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	product := &models.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		LeadTimeDays:  req.LeadTimeDays,
		UnitOfMeasure: req.UnitOfMeasure,
		SupplierID:    req.SupplierID,
	}

	if err := repo.Create(ctx, product); err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityCreated(ctx, events.EntityTypeProduct, product.TenantID, product.ID, product)

	return c.JSON(http.StatusCreated, models.ProductResponse{Product: *product})
}

// Get returns a single product by ID. Pass include=supplier to embed the
// assigned supplier in the response.
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Get")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	var product *models.Product
	if c.QueryParam("include") == "supplier" {
		product, err = repo.GetWithSupplier(ctx, id)
	} else {
		product, err = repo.GetByID(ctx, id)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *product})
}

// GetBySKU returns a single product by its business key
func GetBySKU(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.GetBySKU")
	defer span.End()

	sku := c.Param("sku")
	if sku == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "sku is required")
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	product, err := repo.GetBySKU(ctx, sku)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *product})
}

// Update applies a partial update to a product
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Update")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateProductRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	product, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityUpdated(ctx, events.EntityTypeProduct, product.TenantID, product.ID, product)

	return c.JSON(http.StatusOK, models.ProductResponse{Product: *product})
}

// Delete removes a product and its inventory rows
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "product_handler.Delete")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.ProductRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitEntityDeleted(ctx, events.EntityTypeProduct, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}
