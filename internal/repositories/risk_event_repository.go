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

const riskEventsTable = "risk_events"

const (
	riskEventSuppliersTable = "risk_event_suppliers"
	riskEventProductsTable  = "risk_event_products"
	riskEventLocationsTable = "risk_event_locations"
	riskEventRoutesTable    = "risk_event_routes"
)

const riskEventColumns = "id, tenant_id, event_type, severity, status, title, description, start_date, resolution_date, mitigation_plan, created_at, updated_at"

var riskEventStruct = database.NewStruct(new(models.RiskEvent))

// RiskEventRepository handles database operations for risk events and their
// links to suppliers, products, locations and routes
type RiskEventRepository struct {
	*Repository
}

// NewRiskEventRepository creates a new risk event repository
func NewRiskEventRepository(db database.DB, logger ectologger.Logger) *RiskEventRepository {
	return &RiskEventRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new risk event stamped with the active tenant
func (r *RiskEventRepository) Create(ctx context.Context, event *models.RiskEvent) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	event.TenantID = scope.TenantID()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	ib := scope.InsertInto(riskEventsTable)
	ib.Cols("id", "event_type", "severity", "status", "title", "description", "start_date", "resolution_date", "mitigation_plan", "created_at", "updated_at")
	ib.Values(event.ID, event.EventType, event.Severity, event.Status, event.Title, event.Description,
		event.StartDate, event.ResolutionDate, event.MitigationPlan,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&event.CreatedAt, &event.UpdatedAt)
	if database.IsCheckViolation(err) {
		return Conflict("risk event resolution date must not be earlier than its start date")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": event.ID,
		}).Error("failed to create risk event")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create risk event")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"risk_event_id": event.ID,
	}).Debugf("Created %s", riskEventsTable)
	return nil
}

// GetByID retrieves a risk event by ID (tenant-scoped)
func (r *RiskEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RiskEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(riskEventStruct, riskEventsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var event models.RiskEvent
	err = r.DB().GetContext(ctx, &event, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("risk event %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": id,
		}).Error("failed to get risk event by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get risk event by ID")
	}

	return &event, nil
}

// List retrieves all risk events for the active tenant, optionally filtered
func (r *RiskEventRepository) List(ctx context.Context, filter *models.ListRiskEventFilter) ([]models.RiskEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(riskEventStruct, riskEventsTable)
	if filter != nil {
		if filter.EventType != nil {
			sb.Where(sb.Equal("event_type", *filter.EventType))
		}
		if filter.Severity != nil {
			sb.Where(sb.Equal("severity", *filter.Severity))
		}
		if filter.Status != nil {
			sb.Where(sb.Equal("status", *filter.Status))
		}
	}
	sb.OrderBy("start_date").Desc()

	query, args := sb.Build()
	events := []models.RiskEvent{}
	err = r.DB().SelectContext(ctx, &events, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list risk events")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list risk events")
	}

	return events, nil
}

// Update applies the non-nil fields of req to a risk event (tenant-scoped).
// Date ordering across partial updates is guarded by the storage check
// constraint and surfaces as 409.
func (r *RiskEventRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateRiskEventRequest) (*models.RiskEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(riskEventsTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.EventType != nil {
		assignments = append(assignments, ub.Assign("event_type", *req.EventType))
	}
	if req.Severity != nil {
		assignments = append(assignments, ub.Assign("severity", *req.Severity))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	if req.Title != nil {
		assignments = append(assignments, ub.Assign("title", *req.Title))
	}
	if req.Description != nil {
		assignments = append(assignments, ub.Assign("description", *req.Description))
	}
	if req.StartDate != nil {
		assignments = append(assignments, ub.Assign("start_date", *req.StartDate))
	}
	if req.ResolutionDate != nil {
		assignments = append(assignments, ub.Assign("resolution_date", *req.ResolutionDate))
	}
	if req.MitigationPlan != nil {
		assignments = append(assignments, ub.Assign("mitigation_plan", *req.MitigationPlan))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + riskEventColumns)

	query, args := ub.Build()
	var event models.RiskEvent
	err = r.DB().GetContext(ctx, &event, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("risk event %s does not exist", id)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("risk event resolution date must not be earlier than its start date")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": id,
		}).Error("failed to update risk event")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update risk event")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"risk_event_id": id,
	}).Debugf("Updated %s", riskEventsTable)
	return &event, nil
}

// Delete removes a risk event (tenant-scoped). All of its junction rows are
// removed by the cascade rules.
func (r *RiskEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(riskEventsTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": id,
		}).Error("failed to delete risk event")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete risk event")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete risk event")
	}
	if rows == 0 {
		return NotFound("risk event %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"risk_event_id": id,
	}).Debugf("Deleted %s", riskEventsTable)
	return nil
}

// AddSupplier links a supplier to a risk event
func (r *RiskEventRepository) AddSupplier(ctx context.Context, riskEventID, supplierID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.AddSupplier")
	defer span.End()

	return r.addAssociation(ctx, riskEventSuppliersTable, "supplier_id", riskEventID, supplierID)
}

// RemoveSupplier unlinks a supplier from a risk event
func (r *RiskEventRepository) RemoveSupplier(ctx context.Context, riskEventID, supplierID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.RemoveSupplier")
	defer span.End()

	return r.removeAssociation(ctx, riskEventSuppliersTable, "supplier_id", riskEventID, supplierID)
}

// AddProduct links a product to a risk event
func (r *RiskEventRepository) AddProduct(ctx context.Context, riskEventID, productID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.AddProduct")
	defer span.End()

	return r.addAssociation(ctx, riskEventProductsTable, "product_id", riskEventID, productID)
}

// RemoveProduct unlinks a product from a risk event
func (r *RiskEventRepository) RemoveProduct(ctx context.Context, riskEventID, productID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.RemoveProduct")
	defer span.End()

	return r.removeAssociation(ctx, riskEventProductsTable, "product_id", riskEventID, productID)
}

// AddLocation links a location to a risk event
func (r *RiskEventRepository) AddLocation(ctx context.Context, riskEventID, locationID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.AddLocation")
	defer span.End()

	return r.addAssociation(ctx, riskEventLocationsTable, "location_id", riskEventID, locationID)
}

// RemoveLocation unlinks a location from a risk event
func (r *RiskEventRepository) RemoveLocation(ctx context.Context, riskEventID, locationID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.RemoveLocation")
	defer span.End()

	return r.removeAssociation(ctx, riskEventLocationsTable, "location_id", riskEventID, locationID)
}

// AddRoute links a shipment route to a risk event
func (r *RiskEventRepository) AddRoute(ctx context.Context, riskEventID, routeID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.AddRoute")
	defer span.End()

	return r.addAssociation(ctx, riskEventRoutesTable, "route_id", riskEventID, routeID)
}

// RemoveRoute unlinks a shipment route from a risk event
func (r *RiskEventRepository) RemoveRoute(ctx context.Context, riskEventID, routeID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.RemoveRoute")
	defer span.End()

	return r.removeAssociation(ctx, riskEventRoutesTable, "route_id", riskEventID, routeID)
}

// ListAssociations returns the ids of every entity linked to a risk event
func (r *RiskEventRepository) ListAssociations(ctx context.Context, riskEventID uuid.UUID) (*models.RiskEventAssociations, error) {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.ListAssociations")
	defer span.End()

	// 404 before returning empty sets for an event that is not ours.
	if _, err := r.GetByID(ctx, riskEventID); err != nil {
		return nil, err
	}

	assoc := &models.RiskEventAssociations{}
	targets := []struct {
		table  string
		column string
		into   *[]uuid.UUID
	}{
		{riskEventSuppliersTable, "supplier_id", &assoc.SupplierIDs},
		{riskEventProductsTable, "product_id", &assoc.ProductIDs},
		{riskEventLocationsTable, "location_id", &assoc.LocationIDs},
		{riskEventRoutesTable, "route_id", &assoc.RouteIDs},
	}

	for _, target := range targets {
		ids, err := r.listAssociationIDs(ctx, target.table, target.column, riskEventID)
		if err != nil {
			return nil, err
		}
		*target.into = ids
	}

	return assoc, nil
}

func (r *RiskEventRepository) addAssociation(ctx context.Context, table, column string, riskEventID, otherID uuid.UUID) error {
	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	ib := scope.InsertInto(table)
	ib.Cols("risk_event_id", column, "created_at")
	ib.Values(riskEventID, otherID, sqlbuilder.Raw("NOW()"))

	query, args := ib.Build()
	_, err = r.DB().ExecContext(ctx, query, args...)
	if database.IsUniqueViolation(err) {
		return Conflict("risk event %s is already linked to %s", riskEventID, otherID)
	}
	if database.IsForeignKeyViolation(err) {
		return Conflict("risk event %s or %s does not exist for this tenant", riskEventID, otherID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": riskEventID,
			"other_id":      otherID,
			"table":         table,
		}).Error("failed to add risk event association")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add risk event association")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"risk_event_id": riskEventID,
		"other_id":      otherID,
	}).Debugf("Linked %s", table)
	return nil
}

func (r *RiskEventRepository) removeAssociation(ctx context.Context, table, column string, riskEventID, otherID uuid.UUID) error {
	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(table)
	del.Where(del.Equal("risk_event_id", riskEventID), del.Equal(column, otherID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": riskEventID,
			"other_id":      otherID,
			"table":         table,
		}).Error("failed to remove risk event association")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove risk event association")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to remove risk event association")
	}
	if rows == 0 {
		return NotFound("risk event %s is not linked to %s", riskEventID, otherID)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"risk_event_id": riskEventID,
		"other_id":      otherID,
	}).Debugf("Unlinked %s", table)
	return nil
}

func (r *RiskEventRepository) listAssociationIDs(ctx context.Context, table, column string, riskEventID uuid.UUID) ([]uuid.UUID, error) {
	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.Select(table, column)
	sb.Where(sb.Equal("risk_event_id", riskEventID))
	sb.OrderBy(column)

	query, args := sb.Build()
	ids := []uuid.UUID{}
	err = r.DB().SelectContext(ctx, &ids, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"risk_event_id": riskEventID,
			"table":         table,
		}).Error("failed to list risk event associations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list risk event associations")
	}

	return ids, nil
}

// DeleteByTenantID removes every risk event belonging to a tenant (administrative)
func (r *RiskEventRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "RiskEventRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(riskEventsTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete risk events by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete risk events by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
