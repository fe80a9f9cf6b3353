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

func TestProductRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewProductRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)
	supplier := createTestSupplier(t, ctx, db, "SUP-PRD")

	// Test Create
	product := &models.Product{
		SKU:           "SKU-001",
		Name:          "Steel Bracket",
		Category:      "fasteners",
		LeadTimeDays:  10,
		UnitOfMeasure: "EA",
		SupplierID:    &supplier.ID,
	}

	err := repo.Create(ctx, product)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, tenantID, product.TenantID)
	assert.False(t, product.CreatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", fetched.SKU)
	assert.Equal(t, 10, fetched.LeadTimeDays)
	require.NotNil(t, fetched.SupplierID)
	assert.Equal(t, supplier.ID, *fetched.SupplierID)
	assert.Nil(t, fetched.Supplier)

	// Test GetBySKU
	fetchedBySKU, err := repo.GetBySKU(ctx, "SKU-001")
	require.NoError(t, err)
	assert.Equal(t, product.ID, fetchedBySKU.ID)

	// Test List with filters
	products, err := repo.List(ctx, &models.ListProductFilter{Category: strPtr("fasteners")})
	require.NoError(t, err)
	require.Len(t, products, 1)

	products, err = repo.List(ctx, &models.ListProductFilter{SupplierID: &supplier.ID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	// Test Update
	updated, err := repo.Update(ctx, product.ID, &models.UpdateProductRequest{
		Name:         strPtr("Steel Bracket v2"),
		LeadTimeDays: intPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "Steel Bracket v2", updated.Name)
	assert.Equal(t, 7, updated.LeadTimeDays)
	assert.Equal(t, "SKU-001", updated.SKU)
	assert.False(t, updated.UpdatedAt.Before(product.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, product.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, product.ID)
	assertNotFound(t, err)
}

func TestProductRepository_GetWithSupplier(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewProductRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	supplier := createTestSupplier(t, ctx, db, "SUP-EAGER")

	withSupplier := createTestProduct(t, ctx, db, "SKU-EAGER", &supplier.ID)
	withoutSupplier := createTestProduct(t, ctx, db, "SKU-LONER", nil)

	// The supplier comes back embedded when one is assigned
	fetched, err := repo.GetWithSupplier(ctx, withSupplier.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Supplier)
	assert.Equal(t, supplier.ID, fetched.Supplier.ID)
	assert.Equal(t, "SUP-EAGER", fetched.Supplier.Code)

	// No supplier assigned means no embedded supplier, not an error
	fetched, err = repo.GetWithSupplier(ctx, withoutSupplier.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.SupplierID)
	assert.Nil(t, fetched.Supplier)
}

func TestProductRepository_DuplicateSKU(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewProductRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	createTestProduct(t, ctx, db, "SKU-DUP", nil)

	err := repo.Create(ctx, &models.Product{
		SKU:           "SKU-DUP",
		Name:          "Copycat",
		LeadTimeDays:  1,
		UnitOfMeasure: "EA",
	})
	assertConflict(t, err)

	// Another tenant can reuse the SKU
	_, otherCtx := newTestTenant(t, db)
	err = repo.Create(otherCtx, &models.Product{
		SKU:           "SKU-DUP",
		Name:          "Other Tenant Product",
		LeadTimeDays:  1,
		UnitOfMeasure: "EA",
	})
	require.NoError(t, err)
}

func TestProductRepository_CrossTenantSupplier(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewProductRepository(db, getTestLogger())

	_, ctxA := newTestTenant(t, db)
	_, ctxB := newTestTenant(t, db)

	supplierA := createTestSupplier(t, ctxA, db, "SUP-XTEN")

	// Tenant B cannot hang a product off tenant A's supplier
	err := repo.Create(ctxB, &models.Product{
		SKU:           "SKU-XTEN",
		Name:          "Stolen Supplier Product",
		LeadTimeDays:  2,
		UnitOfMeasure: "EA",
		SupplierID:    &supplierA.ID,
	})
	assertConflict(t, err)

	// Nor reassign an existing product to it
	productB := createTestProduct(t, ctxB, db, "SKU-XTEN-2", nil)
	_, err = repo.Update(ctxB, productB.ID, &models.UpdateProductRequest{SupplierID: &supplierA.ID})
	assertConflict(t, err)
}

func TestProductRepository_DeleteCascadesInventory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	productRepo := repositories.NewProductRepository(db, logger)
	inventoryRepo := repositories.NewInventoryRepository(db, logger)

	_, ctx := newTestTenant(t, db)

	product := createTestProduct(t, ctx, db, "SKU-CASCADE", nil)
	location := createTestLocation(t, ctx, db, "LOC-CASCADE")

	inventory := &models.Inventory{
		ProductID:      product.ID,
		LocationID:     location.ID,
		QuantityOnHand: 25,
	}
	require.NoError(t, inventoryRepo.Create(ctx, inventory))

	// Deleting the product takes its inventory rows with it
	err := productRepo.Delete(ctx, product.ID)
	require.NoError(t, err)

	_, err = inventoryRepo.GetByID(ctx, inventory.ID)
	assertNotFound(t, err)
}

func TestProductRepository_TenantRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewProductRepository(db, getTestLogger())

	// Context without tenant ID
	ctx := context.Background()

	err := repo.Create(ctx, &models.Product{SKU: "SKU-NOPE", Name: "Should Fail", LeadTimeDays: 1, UnitOfMeasure: "EA"})
	assertUnauthorized(t, err)

	_, err = repo.GetWithSupplier(ctx, uuid.New())
	assertUnauthorized(t, err)
}
