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

const productsTable = "products"

const productColumns = "id, tenant_id, sku, name, category, lead_time_days, unit_of_measure, supplier_id, created_at, updated_at"

var productStruct = database.NewStruct(new(models.Product))

// ProductRepository handles database operations for products
type ProductRepository struct {
	*Repository
}

// NewProductRepository creates a new product repository
func NewProductRepository(db database.DB, logger ectologger.Logger) *ProductRepository {
	return &ProductRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new product stamped with the active tenant
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	product.TenantID = scope.TenantID()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	ib := scope.InsertInto(productsTable)
	ib.Cols("id", "sku", "name", "category", "lead_time_days", "unit_of_measure", "supplier_id", "created_at", "updated_at")
	ib.Values(product.ID, product.SKU, product.Name, product.Category, product.LeadTimeDays,
		product.UnitOfMeasure, product.SupplierID,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&product.CreatedAt, &product.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("product with sku %s already exists", product.SKU)
	}
	if database.IsForeignKeyViolation(err) {
		return Conflict("supplier %s does not exist for this tenant", product.SupplierID)
	}
	if database.IsCheckViolation(err) {
		return Conflict("product lead time must be at least 1 day")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": product.ID,
		}).Error("failed to create product")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"product_id": product.ID,
	}).Debugf("Created %s", productsTable)
	return nil
}

// GetByID retrieves a product by ID (tenant-scoped)
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(productStruct, productsTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var product models.Product
	err = r.DB().GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("product %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": id,
		}).Error("failed to get product by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product by ID")
	}

	return &product, nil
}

// GetWithSupplier retrieves a product by ID with its supplier eagerly loaded
func (r *ProductRepository) GetWithSupplier(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.GetWithSupplier")
	defer span.End()

	product, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.SupplierID == nil {
		return product, nil
	}

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(supplierStruct, suppliersTable)
	sb.Where(sb.Equal("id", *product.SupplierID))

	query, args := sb.Build()
	var supplier models.Supplier
	err = r.DB().GetContext(ctx, &supplier, query, args...)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id":  id,
			"supplier_id": *product.SupplierID,
		}).Error("failed to load supplier for product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load supplier for product")
	}
	if err == nil {
		product.Supplier = &supplier
	}

	return product, nil
}

// GetBySKU retrieves a product by its business key (tenant-scoped)
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.GetBySKU")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(productStruct, productsTable)
	sb.Where(sb.Equal("sku", sku))

	query, args := sb.Build()
	var product models.Product
	err = r.DB().GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("product %s does not exist", sku)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_sku": sku,
		}).Error("failed to get product by sku")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product by sku")
	}

	return &product, nil
}

// List retrieves all products for the active tenant, optionally filtered
func (r *ProductRepository) List(ctx context.Context, filter *models.ListProductFilter) ([]models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(productStruct, productsTable)
	if filter != nil {
		if filter.Category != nil {
			sb.Where(sb.Equal("category", *filter.Category))
		}
		if filter.SupplierID != nil {
			sb.Where(sb.Equal("supplier_id", *filter.SupplierID))
		}
	}
	sb.OrderBy("sku")

	query, args := sb.Build()
	products := []models.Product{}
	err = r.DB().SelectContext(ctx, &products, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list products")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	return products, nil
}

// Update applies the non-nil fields of req to a product (tenant-scoped)
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(productsTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.Name != nil {
		assignments = append(assignments, ub.Assign("name", *req.Name))
	}
	if req.Category != nil {
		assignments = append(assignments, ub.Assign("category", *req.Category))
	}
	if req.LeadTimeDays != nil {
		assignments = append(assignments, ub.Assign("lead_time_days", *req.LeadTimeDays))
	}
	if req.UnitOfMeasure != nil {
		assignments = append(assignments, ub.Assign("unit_of_measure", *req.UnitOfMeasure))
	}
	if req.SupplierID != nil {
		assignments = append(assignments, ub.Assign("supplier_id", *req.SupplierID))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + productColumns)

	query, args := ub.Build()
	var product models.Product
	err = r.DB().GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("product %s does not exist", id)
	}
	if database.IsForeignKeyViolation(err) {
		return nil, Conflict("supplier %s does not exist for this tenant", req.SupplierID)
	}
	if database.IsCheckViolation(err) {
		return nil, Conflict("product lead time must be at least 1 day")
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": id,
		}).Error("failed to update product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"product_id": id,
	}).Debugf("Updated %s", productsTable)
	return &product, nil
}

// Delete removes a product (tenant-scoped). Inventory rows referencing the
// product are removed by the cascade rule.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(productsTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"product_id": id,
		}).Error("failed to delete product")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}
	if rows == 0 {
		return NotFound("product %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"product_id": id,
	}).Debugf("Deleted %s", productsTable)
	return nil
}

// DeleteByTenantID removes every product belonging to a tenant (administrative)
func (r *ProductRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ProductRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(productsTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete products by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete products by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
