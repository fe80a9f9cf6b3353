package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func TestSupplierRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewSupplierRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)

	// Test Create
	supplier := &models.Supplier{
		Code:         "SUP-001",
		Name:         "Acme Metals",
		Country:      "DE",
		Rating:       4,
		ContactName:  strPtr("Greta Weber"),
		ContactEmail: strPtr("greta@acme-metals.example"),
	}

	err := repo.Create(ctx, supplier)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, supplier.ID)
	assert.Equal(t, tenantID, supplier.TenantID)
	assert.False(t, supplier.CreatedAt.IsZero())
	assert.False(t, supplier.UpdatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, fetched.ID)
	assert.Equal(t, "SUP-001", fetched.Code)
	assert.Equal(t, "Acme Metals", fetched.Name)
	assert.Equal(t, 4, fetched.Rating)
	assert.Equal(t, "Greta Weber", *fetched.ContactName)

	// Test GetByCode
	fetchedByCode, err := repo.GetByCode(ctx, "SUP-001")
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, fetchedByCode.ID)

	// Test List with a filter
	suppliers, err := repo.List(ctx, &models.ListSupplierFilter{Country: strPtr("DE")})
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, supplier.ID, suppliers[0].ID)

	suppliers, err = repo.List(ctx, &models.ListSupplierFilter{Country: strPtr("FR")})
	require.NoError(t, err)
	assert.Empty(t, suppliers)

	// Test Update bumps updated_at and leaves the code alone
	updated, err := repo.Update(ctx, supplier.ID, &models.UpdateSupplierRequest{
		Name:   strPtr("Acme Metals GmbH"),
		Rating: intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Metals GmbH", updated.Name)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "SUP-001", updated.Code)
	assert.Equal(t, "DE", updated.Country)
	assert.False(t, updated.UpdatedAt.Before(supplier.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, supplier.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, supplier.ID)
	assertNotFound(t, err)

	err = repo.Delete(ctx, supplier.ID)
	assertNotFound(t, err)
}

func TestSupplierRepository_TenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewSupplierRepository(db, getTestLogger())

	_, ctxA := newTestTenant(t, db)
	_, ctxB := newTestTenant(t, db)

	// Tenant A has two suppliers, tenant B has one
	supplierA1 := createTestSupplier(t, ctxA, db, "SUP-A1")
	createTestSupplier(t, ctxA, db, "SUP-A2")
	createTestSupplier(t, ctxB, db, "SUP-B1")

	// Each tenant's list only contains its own rows
	listA, err := repo.List(ctxA, nil)
	require.NoError(t, err)
	require.Len(t, listA, 2)
	for _, s := range listA {
		assert.Equal(t, supplierA1.TenantID, s.TenantID)
	}

	listB, err := repo.List(ctxB, nil)
	require.NoError(t, err)
	require.Len(t, listB, 1)
	assert.Equal(t, "SUP-B1", listB[0].Code)

	// Tenant B cannot see tenant A's supplier, by id or by code
	_, err = repo.GetByID(ctxB, supplierA1.ID)
	assertNotFound(t, err)

	_, err = repo.GetByCode(ctxB, "SUP-A1")
	assertNotFound(t, err)

	// Tenant B cannot update or delete tenant A's supplier, and the row is untouched
	_, err = repo.Update(ctxB, supplierA1.ID, &models.UpdateSupplierRequest{Name: strPtr("Hijacked")})
	assertNotFound(t, err)

	err = repo.Delete(ctxB, supplierA1.ID)
	assertNotFound(t, err)

	unchanged, err := repo.GetByID(ctxA, supplierA1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Supplier SUP-A1", unchanged.Name)
}

func TestSupplierRepository_TenantStamping(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewSupplierRepository(db, getTestLogger())

	tenantID, ctx := newTestTenant(t, db)

	// A tenant id smuggled in on the model is overwritten by the one on the context
	supplier := &models.Supplier{
		TenantID: uuid.New(),
		Code:     "SUP-STAMP",
		Name:     "Stamped Supplier",
		Country:  "NL",
		Rating:   3,
	}

	err := repo.Create(ctx, supplier)
	require.NoError(t, err)
	assert.Equal(t, tenantID, supplier.TenantID)

	stored, err := repo.GetByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, stored.TenantID)
}

func TestSupplierRepository_TenantRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewSupplierRepository(db, getTestLogger())

	// Context without tenant ID fails for every operation kind
	ctx := context.Background()
	id := uuid.New()

	err := repo.Create(ctx, &models.Supplier{Code: "SUP-NOPE", Name: "Should Fail", Country: "US", Rating: 1})
	assertUnauthorized(t, err)

	_, err = repo.GetByID(ctx, id)
	assertUnauthorized(t, err)

	_, err = repo.GetByCode(ctx, "SUP-NOPE")
	assertUnauthorized(t, err)

	_, err = repo.List(ctx, nil)
	assertUnauthorized(t, err)

	_, err = repo.Update(ctx, id, &models.UpdateSupplierRequest{Name: strPtr("Nope")})
	assertUnauthorized(t, err)

	err = repo.Delete(ctx, id)
	assertUnauthorized(t, err)
}

func TestSupplierRepository_DuplicateCode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewSupplierRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	createTestSupplier(t, ctx, db, "SUP-DUP")

	// Same code under the same tenant conflicts
	err := repo.Create(ctx, &models.Supplier{Code: "SUP-DUP", Name: "Copycat", Country: "DE", Rating: 2})
	assertConflict(t, err)

	// The code is free for other tenants
	_, otherCtx := newTestTenant(t, db)
	err = repo.Create(otherCtx, &models.Supplier{Code: "SUP-DUP", Name: "Other Tenant Supplier", Country: "DE", Rating: 2})
	require.NoError(t, err)
}

func TestSupplierRepository_DeleteWithProducts(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	supplierRepo := repositories.NewSupplierRepository(db, logger)
	productRepo := repositories.NewProductRepository(db, logger)

	_, ctx := newTestTenant(t, db)

	supplier := createTestSupplier(t, ctx, db, "SUP-REF")
	product := createTestProduct(t, ctx, db, "SKU-REF", &supplier.ID)

	// A supplier with products cannot be deleted
	err := supplierRepo.Delete(ctx, supplier.ID)
	assertConflict(t, err)

	// Once the product is gone the delete goes through
	err = productRepo.Delete(ctx, product.ID)
	require.NoError(t, err)

	err = supplierRepo.Delete(ctx, supplier.ID)
	require.NoError(t, err)
}

func TestSupplierRepository_DeleteByTenantID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewSupplierRepository(db, getTestLogger())

	tenantID, ctx := newTestTenant(t, db)
	createTestSupplier(t, ctx, db, "SUP-PURGE-1")
	createTestSupplier(t, ctx, db, "SUP-PURGE-2")

	// The administrative delete ignores the context tenant entirely
	deleted, err := repo.DeleteByTenantID(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	suppliers, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, suppliers)
}
