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

const locationsTable = "locations"

const locationColumns = "id, tenant_id, code, name, type, status, latitude, longitude, capacity, created_at, updated_at"

var locationStruct = database.NewStruct(new(models.Location))

// LocationRepository handles database operations for locations
type LocationRepository struct {
	*Repository
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db database.DB, logger ectologger.Logger) *LocationRepository {
	return &LocationRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new location stamped with the active tenant
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	location.TenantID = scope.TenantID()

	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}

	ib := scope.InsertInto(locationsTable)
	ib.Cols("id", "code", "name", "type", "status", "latitude", "longitude", "capacity", "created_at", "updated_at")
	ib.Values(location.ID, location.Code, location.Name, location.Type, location.Status,
		location.Latitude, location.Longitude, location.Capacity,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&location.CreatedAt, &location.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("location with code %s already exists", location.Code)
	}
	if database.IsCheckViolation(err) {
		return Conflict("location coordinates or type are out of range")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"location_id": location.ID,
		}).Error("failed to create location")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create location")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"location_id": location.ID,
	}).Debugf("Created %s", locationsTable)
	return nil
}

// GetByID retrieves a location by ID (tenant-scoped)
func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(locationStruct, locationsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var location models.Location
	err = r.DB().GetContext(ctx, &location, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("location %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"location_id": id,
		}).Error("failed to get location by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get location by ID")
	}

	return &location, nil
}

// GetByCode retrieves a location by its business key (tenant-scoped)
func (r *LocationRepository) GetByCode(ctx context.Context, code string) (*models.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.GetByCode")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(locationStruct, locationsTable)
	sb.Where(sb.Equal("code", code))

	query, args := sb.Build()
	var location models.Location
	err = r.DB().GetContext(ctx, &location, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("location %s does not exist", code)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"location_code": code,
		}).Error("failed to get location by code")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get location by code")
	}

	return &location, nil
}

// List retrieves all locations for the active tenant, optionally filtered
func (r *LocationRepository) List(ctx context.Context, filter *models.ListLocationFilter) ([]models.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(locationStruct, locationsTable)
	if filter != nil {
		if filter.Type != nil {
			sb.Where(sb.Equal("type", *filter.Type))
		}
		if filter.Status != nil {
			sb.Where(sb.Equal("status", *filter.Status))
		}
	}
	sb.OrderBy("code")

	query, args := sb.Build()
	locations := []models.Location{}
	err = r.DB().SelectContext(ctx, &locations, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list locations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list locations")
	}

	return locations, nil
}

// Update applies the non-nil fields of req to a location (tenant-scoped)
func (r *LocationRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateLocationRequest) (*models.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(locationsTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.Name != nil {
		assignments = append(assignments, ub.Assign("name", *req.Name))
	}
	if req.Type != nil {
		assignments = append(assignments, ub.Assign("type", *req.Type))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	if req.Latitude != nil {
		assignments = append(assignments, ub.Assign("latitude", *req.Latitude))
	}
	if req.Longitude != nil {
		assignments = append(assignments, ub.Assign("longitude", *req.Longitude))
	}
	if req.Capacity != nil {
		assignments = append(assignments, ub.Assign("capacity", *req.Capacity))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + locationColumns)

	query, args := ub.Build()
	var location models.Location
	err = r.DB().GetContext(ctx, &location, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("location %s does not exist", id)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("location coordinates or type are out of range")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"location_id": id,
		}).Error("failed to update location")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update location")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"location_id": id,
	}).Debugf("Updated %s", locationsTable)
	return &location, nil
}

// Delete removes a location (tenant-scoped). Locations referenced by routes
// or inventory are protected by restrict rules and return 409.
func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(locationsTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if database.IsForeignKeyViolation(err) {
		return Conflict("location %s is referenced by existing routes or inventory", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"location_id": id,
		}).Error("failed to delete location")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete location")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete location")
	}
	if rows == 0 {
		return NotFound("location %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"location_id": id,
	}).Debugf("Deleted %s", locationsTable)
	return nil
}

// DeleteByTenantID removes every location belonging to a tenant (administrative)
func (r *LocationRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "LocationRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(locationsTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete locations by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete locations by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
