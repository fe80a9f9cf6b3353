package riskevent

import (
	"context"
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

// Register registers risk event routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)

	g.GET("/:id/associations", ListAssociations)
	g.POST("/:id/suppliers/:supplier_id", AddSupplier)
	g.DELETE("/:id/suppliers/:supplier_id", RemoveSupplier)
	g.POST("/:id/products/:product_id", AddProduct)
	g.DELETE("/:id/products/:product_id", RemoveProduct)
	g.POST("/:id/locations/:location_id", AddLocation)
	g.DELETE("/:id/locations/:location_id", RemoveLocation)
	g.POST("/:id/routes/:route_id", AddRoute)
	g.DELETE("/:id/routes/:route_id", RemoveRoute)
}

// List returns the tenant's risk events, optionally filtered
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.List")
	defer span.End()

	filter, err := utils.BindRequest[models.ListRiskEventFilter](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.List(ctx, &filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RiskEventListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// Create creates a new risk event for the tenant
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.Create")
	defer span.End()

	req, err := utils.BindRequest[models.CreateRiskEventRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	event := &models.RiskEvent{
		EventType:      req.EventType,
		Severity:       req.Severity,
		Status:         req.Status,
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      req.StartDate,
		ResolutionDate: req.ResolutionDate,
		MitigationPlan: req.MitigationPlan,
	}

	if err := repo.Create(ctx, event); err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityCreated(ctx, events.EntityTypeRiskEvent, event.TenantID, event.ID, event)

	return c.JSON(http.StatusCreated, models.RiskEventResponse{RiskEvent: *event})
}

// Get returns a single risk event by ID. Pass include=associations to embed
// the linked entity IDs in the response.
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.Get")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	event, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	resp := models.RiskEventResponse{RiskEvent: *event}
	if c.QueryParam("include") == "associations" {
		assoc, err := repo.ListAssociations(ctx, id)
		if err != nil {
			return err
		}
		resp.Associations = assoc
	}

	return c.JSON(http.StatusOK, resp)
}

// Update applies a partial update to a risk event
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.Update")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateRiskEventRequest](c)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	event, err := repo.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
	emitter.EmitEntityUpdated(ctx, events.EntityTypeRiskEvent, event.TenantID, event.ID, event)

	return c.JSON(http.StatusOK, models.RiskEventResponse{RiskEvent: *event})
}

// Delete removes a risk event and its association rows
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.Delete")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitEntityDeleted(ctx, events.EntityTypeRiskEvent, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAssociations returns the IDs of every entity linked to a risk event
func ListAssociations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "riskevent_handler.ListAssociations")
	defer span.End()

	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	assoc, err := repo.ListAssociations(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assoc)
}

// AddSupplier links a supplier to a risk event
func AddSupplier(c echo.Context) error {
	return addAssociation(c, "riskevent_handler.AddSupplier", "supplier_id", events.EntityTypeSupplier,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.AddSupplier(ctx, eventID, otherID)
		})
}

// RemoveSupplier unlinks a supplier from a risk event
func RemoveSupplier(c echo.Context) error {
	return removeAssociation(c, "riskevent_handler.RemoveSupplier", "supplier_id", events.EntityTypeSupplier,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.RemoveSupplier(ctx, eventID, otherID)
		})
}

// AddProduct links a product to a risk event
func AddProduct(c echo.Context) error {
	return addAssociation(c, "riskevent_handler.AddProduct", "product_id", events.EntityTypeProduct,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.AddProduct(ctx, eventID, otherID)
		})
}

// RemoveProduct unlinks a product from a risk event
func RemoveProduct(c echo.Context) error {
	return removeAssociation(c, "riskevent_handler.RemoveProduct", "product_id", events.EntityTypeProduct,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.RemoveProduct(ctx, eventID, otherID)
		})
}

// AddLocation links a location to a risk event
func AddLocation(c echo.Context) error {
	return addAssociation(c, "riskevent_handler.AddLocation", "location_id", events.EntityTypeLocation,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.AddLocation(ctx, eventID, otherID)
		})
}

// RemoveLocation unlinks a location from a risk event
func RemoveLocation(c echo.Context) error {
	return removeAssociation(c, "riskevent_handler.RemoveLocation", "location_id", events.EntityTypeLocation,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.RemoveLocation(ctx, eventID, otherID)
		})
}

// AddRoute links a shipment route to a risk event
func AddRoute(c echo.Context) error {
	return addAssociation(c, "riskevent_handler.AddRoute", "route_id", events.EntityTypeShipmentRoute,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.AddRoute(ctx, eventID, otherID)
		})
}

// RemoveRoute unlinks a shipment route from a risk event
func RemoveRoute(c echo.Context) error {
	return removeAssociation(c, "riskevent_handler.RemoveRoute", "route_id", events.EntityTypeShipmentRoute,
		func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error {
			return repo.RemoveRoute(ctx, eventID, otherID)
		})
}

type linkFunc func(ctx context.Context, repo *repositories.RiskEventRepository, eventID, otherID uuid.UUID) error

func addAssociation(c echo.Context, spanName, paramName, otherType string, link linkFunc) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	riskEventID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	otherID, err := utils.ParseUUIDParam(c, paramName)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := link(ctx, repo, riskEventID, otherID); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitRelationshipCreated(ctx, events.RelationshipAffects, tenantID, events.EntityTypeRiskEvent, riskEventID, otherType, otherID)
	}

	return c.NoContent(http.StatusCreated)
}

func removeAssociation(c echo.Context, spanName, paramName, otherType string, link linkFunc) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	riskEventID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	otherID, err := utils.ParseUUIDParam(c, paramName)
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.RiskEventRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := link(ctx, repo, riskEventID, otherID); err != nil {
		return err
	}

	if tenantID, err := uuid.Parse(appctx.GetTenantID(ctx)); err == nil {
		_, emitter, _ := ectoinject.GetContext[*events.Emitter](ctx)
		emitter.EmitRelationshipDeleted(ctx, events.RelationshipAffects, tenantID, events.EntityTypeRiskEvent, riskEventID, otherType, otherID)
	}

	return c.NoContent(http.StatusNoContent)
}
