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

const inventoryTable = "inventory"

const inventoryColumns = "id, tenant_id, product_id, location_id, quantity_on_hand, quantity_reserved, reorder_point, last_count_date, created_at, updated_at"

var inventoryStruct = database.NewStruct(new(models.Inventory))

// InventoryRepository handles database operations for inventory rows
type InventoryRepository struct {
	*Repository
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db database.DB, logger ectologger.Logger) *InventoryRepository {
	return &InventoryRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new inventory row stamped with the active tenant. Omitted
// quantities land as their zero defaults.
func (r *InventoryRepository) Create(ctx context.Context, inventory *models.Inventory) error {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	inventory.TenantID = scope.TenantID()

	if inventory.ID == uuid.Nil {
		inventory.ID = uuid.New()
	}

	ib := scope.InsertInto(inventoryTable)
	ib.Cols("id", "product_id", "location_id", "quantity_on_hand", "quantity_reserved", "reorder_point", "last_count_date", "created_at", "updated_at")
	ib.Values(inventory.ID, inventory.ProductID, inventory.LocationID, inventory.QuantityOnHand,
		inventory.QuantityReserved, inventory.ReorderPoint, inventory.LastCountDate,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&inventory.CreatedAt, &inventory.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("inventory for product %s at location %s already exists", inventory.ProductID, inventory.LocationID)
	}
	if database.IsForeignKeyViolation(err) {
		return Conflict("product or location does not exist for this tenant")
	}
	if database.IsCheckViolation(err) {
		return Conflict("inventory quantities must not be negative")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"inventory_id": inventory.ID,
		}).Error("failed to create inventory")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"inventory_id": inventory.ID,
	}).Debugf("Created %s", inventoryTable)
	return nil
}

// GetByID retrieves an inventory row by ID (tenant-scoped)
func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(inventoryStruct, inventoryTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var inventory models.Inventory
	err = r.DB().GetContext(ctx, &inventory, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("inventory %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"inventory_id": id,
		}).Error("failed to get inventory by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get inventory by ID")
	}

	return &inventory, nil
}

// GetByProductAndLocation retrieves the inventory row for a product at a
// location (tenant-scoped)
func (r *InventoryRepository) GetByProductAndLocation(ctx context.Context, productID, locationID uuid.UUID) (*models.Inventory, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.GetByProductAndLocation")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(inventoryStruct, inventoryTable)
	sb.Where(sb.Equal("product_id", productID), sb.Equal("location_id", locationID))

	query, args := sb.Build()
	var inventory models.Inventory
	err = r.DB().GetContext(ctx, &inventory, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("no inventory for product %s at location %s", productID, locationID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  productID,
			"location_id": locationID,
		}).Error("failed to get inventory by product and location")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get inventory by product and location")
	}

	return &inventory, nil
}

// List retrieves all inventory rows for the active tenant, optionally filtered
func (r *InventoryRepository) List(ctx context.Context, filter *models.ListInventoryFilter) ([]models.Inventory, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(inventoryStruct, inventoryTable)
	if filter != nil {
		if filter.ProductID != nil {
			sb.Where(sb.Equal("product_id", *filter.ProductID))
		}
		if filter.LocationID != nil {
			sb.Where(sb.Equal("location_id", *filter.LocationID))
		}
	}
	sb.OrderBy("created_at")

	query, args := sb.Build()
	rows := []models.Inventory{}
	err = r.DB().SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list inventory")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory")
	}

	return rows, nil
}

// TotalsByLocation aggregates on-hand and reserved quantities per location
// for the active tenant
func (r *InventoryRepository) TotalsByLocation(ctx context.Context) ([]models.InventoryLocationTotals, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.TotalsByLocation")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.Select(inventoryTable,
		"location_id",
		"COALESCE(SUM(quantity_on_hand), 0) AS total_on_hand",
		"COALESCE(SUM(quantity_reserved), 0) AS total_reserved")
	sb.GroupBy("location_id")
	sb.OrderBy("location_id")

	query, args := sb.Build()
	totals := []models.InventoryLocationTotals{}
	err = r.DB().SelectContext(ctx, &totals, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to aggregate inventory totals")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to aggregate inventory totals")
	}

	return totals, nil
}

// Update applies the non-nil fields of req to an inventory row
// (tenant-scoped). The product and location pair is immutable.
func (r *InventoryRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateInventoryRequest) (*models.Inventory, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(inventoryTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.QuantityOnHand != nil {
		assignments = append(assignments, ub.Assign("quantity_on_hand", *req.QuantityOnHand))
	}
	if req.QuantityReserved != nil {
		assignments = append(assignments, ub.Assign("quantity_reserved", *req.QuantityReserved))
	}
	if req.ReorderPoint != nil {
		assignments = append(assignments, ub.Assign("reorder_point", *req.ReorderPoint))
	}
	if req.LastCountDate != nil {
		assignments = append(assignments, ub.Assign("last_count_date", *req.LastCountDate))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + inventoryColumns)

	query, args := ub.Build()
	var inventory models.Inventory
	err = r.DB().GetContext(ctx, &inventory, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("inventory %s does not exist", id)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("inventory quantities must not be negative")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"inventory_id": id,
		}).Error("failed to update inventory")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update inventory")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"inventory_id": id,
	}).Debugf("Updated %s", inventoryTable)
	return &inventory, nil
}

// Delete removes an inventory row (tenant-scoped)
func (r *InventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(inventoryTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"inventory_id": id,
		}).Error("failed to delete inventory")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete inventory")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete inventory")
	}
	if rows == 0 {
		return NotFound("inventory %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"inventory_id": id,
	}).Debugf("Deleted %s", inventoryTable)
	return nil
}

// DeleteByTenantID removes every inventory row belonging to a tenant (administrative)
func (r *InventoryRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "InventoryRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(inventoryTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete inventory by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete inventory by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
