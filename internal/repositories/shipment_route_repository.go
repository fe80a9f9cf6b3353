package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

const shipmentRoutesTable = "shipment_routes"

const shipmentRouteColumns = "id, tenant_id, origin_location_id, destination_location_id, transit_time_days, transport_mode, distance_km, cost_per_shipment, created_at, updated_at"

var shipmentRouteStruct = database.NewStruct(new(models.ShipmentRoute))

// ShipmentRouteRepository handles database operations for shipment routes
type ShipmentRouteRepository struct {
	*Repository
}

// NewShipmentRouteRepository creates a new shipment route repository
func NewShipmentRouteRepository(db database.DB, logger ectologger.Logger) *ShipmentRouteRepository {
	return &ShipmentRouteRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new shipment route stamped with the active tenant. The
// origin/destination/mode triple is unique per tenant.
func (r *ShipmentRouteRepository) Create(ctx context.Context, route *models.ShipmentRoute) error {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	route.TenantID = scope.TenantID()

	if route.OriginLocationID == route.DestinationLocationID {
		return BadRequest("origin and destination must be different locations")
	}

	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}

	ib := scope.InsertInto(shipmentRoutesTable)
	ib.Cols("id", "origin_location_id", "destination_location_id", "transit_time_days", "transport_mode", "distance_km", "cost_per_shipment", "created_at", "updated_at")
	ib.Values(route.ID, route.OriginLocationID, route.DestinationLocationID, route.TransitTimeDays,
		route.TransportMode, route.DistanceKM, route.CostPerShipment,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&route.CreatedAt, &route.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("a %s route between these locations already exists", route.TransportMode)
	}
	if database.IsForeignKeyViolation(err) {
		return Conflict("origin or destination location does not exist for this tenant")
	}
	if database.IsCheckViolation(err) {
		return Conflict("route transit time must be at least 1 day")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"route_id": route.ID,
		}).Error("failed to create shipment route")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create shipment route")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"route_id": route.ID,
	}).Debugf("Created %s", shipmentRoutesTable)
	return nil
}

// GetByID retrieves a shipment route by ID (tenant-scoped)
func (r *ShipmentRouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ShipmentRoute, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(shipmentRouteStruct, shipmentRoutesTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var route models.ShipmentRoute
	err = r.DB().GetContext(ctx, &route, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("route %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"route_id": id,
		}).Error("failed to get route by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get route by ID")
	}

	return &route, nil
}

// List retrieves all shipment routes for the active tenant, optionally filtered
func (r *ShipmentRouteRepository) List(ctx context.Context, filter *models.ListShipmentRouteFilter) ([]models.ShipmentRoute, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(shipmentRouteStruct, shipmentRoutesTable)
	if filter != nil {
		if filter.OriginLocationID != nil {
			sb.Where(sb.Equal("origin_location_id", *filter.OriginLocationID))
		}
		if filter.DestinationLocationID != nil {
			sb.Where(sb.Equal("destination_location_id", *filter.DestinationLocationID))
		}
		if filter.TransportMode != nil {
			sb.Where(sb.Equal("transport_mode", *filter.TransportMode))
		}
	}
	sb.OrderBy("created_at")

	query, args := sb.Build()
	routes := []models.ShipmentRoute{}
	err = r.DB().SelectContext(ctx, &routes, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list shipment routes")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shipment routes")
	}

	return routes, nil
}

// Update applies the non-nil fields of req to a shipment route
// (tenant-scoped). The lane itself (origin, destination, mode) is immutable.
func (r *ShipmentRouteRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateShipmentRouteRequest) (*models.ShipmentRoute, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(shipmentRoutesTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.TransitTimeDays != nil {
		assignments = append(assignments, ub.Assign("transit_time_days", *req.TransitTimeDays))
	}
	if req.DistanceKM != nil {
		assignments = append(assignments, ub.Assign("distance_km", *req.DistanceKM))
	}
	if req.CostPerShipment != nil {
		assignments = append(assignments, ub.Assign("cost_per_shipment", *req.CostPerShipment))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + shipmentRouteColumns)

	query, args := ub.Build()
	var route models.ShipmentRoute
	err = r.DB().GetContext(ctx, &route, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("route %s does not exist", id)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("route transit time must be at least 1 day")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"route_id": id,
		}).Error("failed to update shipment route")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shipment route")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"route_id": id,
	}).Debugf("Updated %s", shipmentRoutesTable)
	return &route, nil
}

// Delete removes a shipment route (tenant-scoped). Routes linked to risk
// events are protected by a restrict rule and return 409.
func (r *ShipmentRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(shipmentRoutesTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if database.IsForeignKeyViolation(err) {
		return Conflict("route %s is linked to existing risk events", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"route_id": id,
		}).Error("failed to delete shipment route")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete shipment route")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete shipment route")
	}
	if rows == 0 {
		return NotFound("route %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"route_id": id,
	}).Debugf("Deleted %s", shipmentRoutesTable)
	return nil
}

// DeleteByTenantID removes every shipment route belonging to a tenant (administrative)
func (r *ShipmentRouteRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ShipmentRouteRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(shipmentRoutesTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete shipment routes by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete shipment routes by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
