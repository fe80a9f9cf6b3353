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

const suppliersTable = "suppliers"

const supplierColumns = "id, tenant_id, code, name, country, rating, contact_name, contact_email, contact_phone, created_at, updated_at"

var supplierStruct = database.NewStruct(new(models.Supplier))

// SupplierRepository handles database operations for suppliers
type SupplierRepository struct {
	*Repository
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db database.DB, logger ectologger.Logger) *SupplierRepository {
	return &SupplierRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new supplier stamped with the active tenant
func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	supplier.TenantID = scope.TenantID()

	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}

	ib := scope.InsertInto(suppliersTable)
	ib.Cols("id", "code", "name", "country", "rating", "contact_name", "contact_email", "contact_phone", "created_at", "updated_at")
	ib.Values(supplier.ID, supplier.Code, supplier.Name, supplier.Country, supplier.Rating,
		supplier.ContactName, supplier.ContactEmail, supplier.ContactPhone,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&supplier.CreatedAt, &supplier.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("supplier with code %s already exists", supplier.Code)
	}
	if database.IsCheckViolation(err) {
		return Conflict("supplier rating must be between 1 and 5")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"supplier_id": supplier.ID,
		}).Error("failed to create supplier")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create supplier")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"supplier_id": supplier.ID,
	}).Debugf("Created %s", suppliersTable)
	return nil
}

// GetByID retrieves a supplier by ID (tenant-scoped)
func (r *SupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(supplierStruct, suppliersTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var supplier models.Supplier
	err = r.DB().GetContext(ctx, &supplier, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("supplier %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"supplier_id": id,
		}).Error("failed to get supplier by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get supplier by ID")
	}

	return &supplier, nil
}

// GetByCode retrieves a supplier by its business key (tenant-scoped)
func (r *SupplierRepository) GetByCode(ctx context.Context, code string) (*models.Supplier, error) {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.GetByCode")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(supplierStruct, suppliersTable)
	sb.Where(sb.Equal("code", code))

	query, args := sb.Build()
	var supplier models.Supplier
	err = r.DB().GetContext(ctx, &supplier, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("supplier %s does not exist", code)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"supplier_code": code,
		}).Error("failed to get supplier by code")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get supplier by code")
	}

	return &supplier, nil
}

// List retrieves all suppliers for the active tenant, optionally filtered
func (r *SupplierRepository) List(ctx context.Context, filter *models.ListSupplierFilter) ([]models.Supplier, error) {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(supplierStruct, suppliersTable)
	if filter != nil {
		if filter.Country != nil {
			sb.Where(sb.Equal("country", *filter.Country))
		}
		if filter.Rating != nil {
			sb.Where(sb.Equal("rating", *filter.Rating))
		}
	}
	sb.OrderBy("code")

	query, args := sb.Build()
	suppliers := []models.Supplier{}
	err = r.DB().SelectContext(ctx, &suppliers, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list suppliers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list suppliers")
	}

	return suppliers, nil
}

// Update applies the non-nil fields of req to a supplier (tenant-scoped).
// Updating another tenant's supplier matches no rows and returns 404.
func (r *SupplierRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateSupplierRequest) (*models.Supplier, error) {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(suppliersTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.Name != nil {
		assignments = append(assignments, ub.Assign("name", *req.Name))
	}
	if req.Country != nil {
		assignments = append(assignments, ub.Assign("country", *req.Country))
	}
	if req.Rating != nil {
		assignments = append(assignments, ub.Assign("rating", *req.Rating))
	}
	if req.ContactName != nil {
		assignments = append(assignments, ub.Assign("contact_name", *req.ContactName))
	}
	if req.ContactEmail != nil {
		assignments = append(assignments, ub.Assign("contact_email", *req.ContactEmail))
	}
	if req.ContactPhone != nil {
		assignments = append(assignments, ub.Assign("contact_phone", *req.ContactPhone))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + supplierColumns)

	query, args := ub.Build()
	var supplier models.Supplier
	err = r.DB().GetContext(ctx, &supplier, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("supplier %s does not exist", id)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("supplier rating must be between 1 and 5")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"supplier_id": id,
		}).Error("failed to update supplier")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update supplier")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"supplier_id": id,
	}).Debugf("Updated %s", suppliersTable)
	return &supplier, nil
}

// Delete removes a supplier (tenant-scoped). Suppliers still referenced by
// products are protected by a restrict rule and return 409.
func (r *SupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(suppliersTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if database.IsForeignKeyViolation(err) {
		return Conflict("supplier %s is referenced by existing products", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"supplier_id": id,
		}).Error("failed to delete supplier")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete supplier")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete supplier")
	}
	if rows == 0 {
		return NotFound("supplier %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"supplier_id": id,
	}).Debugf("Deleted %s", suppliersTable)
	return nil
}

// DeleteByTenantID removes every supplier belonging to a tenant. This is the
// administrative pass-through path: the tenant comes from the caller, not the
// context, and no scope is applied.
func (r *SupplierRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "SupplierRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(suppliersTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete suppliers by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete suppliers by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
