package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func TestInventoryRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewInventoryRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)
	product := createTestProduct(t, ctx, db, "SKU-INV", nil)
	location := createTestLocation(t, ctx, db, "LOC-INV")

	// Test Create
	inventory := &models.Inventory{
		ProductID:        product.ID,
		LocationID:       location.ID,
		QuantityOnHand:   100,
		QuantityReserved: 20,
		ReorderPoint:     30,
	}

	err := repo.Create(ctx, inventory)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inventory.ID)
	assert.Equal(t, tenantID, inventory.TenantID)
	assert.False(t, inventory.CreatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, inventory.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, fetched.QuantityOnHand)
	assert.Equal(t, 20, fetched.QuantityReserved)
	assert.Equal(t, 30, fetched.ReorderPoint)
	assert.Nil(t, fetched.LastCountDate)

	// Test GetByProductAndLocation
	fetchedByPair, err := repo.GetByProductAndLocation(ctx, product.ID, location.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.ID, fetchedByPair.ID)

	_, err = repo.GetByProductAndLocation(ctx, product.ID, uuid.New())
	assertNotFound(t, err)

	// Test List with filters
	rows, err := repo.List(ctx, &models.ListInventoryFilter{ProductID: &product.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = repo.List(ctx, &models.ListInventoryFilter{LocationID: &location.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Test Update
	countDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, inventory.ID, &models.UpdateInventoryRequest{
		QuantityOnHand: intPtr(80),
		LastCountDate:  &countDate,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.QuantityOnHand)
	assert.Equal(t, 20, updated.QuantityReserved)
	require.NotNil(t, updated.LastCountDate)
	assert.True(t, updated.LastCountDate.Equal(countDate))
	assert.False(t, updated.UpdatedAt.Before(inventory.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, inventory.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, inventory.ID)
	assertNotFound(t, err)
}

func TestInventoryRepository_ZeroDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewInventoryRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	product := createTestProduct(t, ctx, db, "SKU-ZERO", nil)
	location := createTestLocation(t, ctx, db, "LOC-ZERO")

	// Quantities left off the create land as zero, not null
	inventory := &models.Inventory{
		ProductID:  product.ID,
		LocationID: location.ID,
	}
	require.NoError(t, repo.Create(ctx, inventory))

	stored, err := repo.GetByID(ctx, inventory.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.QuantityOnHand)
	assert.Equal(t, 0, stored.QuantityReserved)
	assert.Equal(t, 0, stored.ReorderPoint)
}

func TestInventoryRepository_DuplicatePair(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewInventoryRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	product := createTestProduct(t, ctx, db, "SKU-PAIR", nil)
	location := createTestLocation(t, ctx, db, "LOC-PAIR")
	otherLocation := createTestLocation(t, ctx, db, "LOC-PAIR-B")

	require.NoError(t, repo.Create(ctx, &models.Inventory{
		ProductID:      product.ID,
		LocationID:     location.ID,
		QuantityOnHand: 10,
	}))

	// One inventory row per product and location
	err := repo.Create(ctx, &models.Inventory{
		ProductID:      product.ID,
		LocationID:     location.ID,
		QuantityOnHand: 99,
	})
	assertConflict(t, err)

	// The same product elsewhere is fine
	err = repo.Create(ctx, &models.Inventory{
		ProductID:      product.ID,
		LocationID:     otherLocation.ID,
		QuantityOnHand: 5,
	})
	require.NoError(t, err)
}

func TestInventoryRepository_TotalsByLocation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewInventoryRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	bolts := createTestProduct(t, ctx, db, "SKU-BOLTS", nil)
	nuts := createTestProduct(t, ctx, db, "SKU-NUTS", nil)
	hamburg := createTestLocation(t, ctx, db, "LOC-HAM")
	munich := createTestLocation(t, ctx, db, "LOC-MUC")

	require.NoError(t, repo.Create(ctx, &models.Inventory{ProductID: bolts.ID, LocationID: hamburg.ID, QuantityOnHand: 40, QuantityReserved: 5}))
	require.NoError(t, repo.Create(ctx, &models.Inventory{ProductID: nuts.ID, LocationID: hamburg.ID, QuantityOnHand: 60, QuantityReserved: 10}))
	require.NoError(t, repo.Create(ctx, &models.Inventory{ProductID: bolts.ID, LocationID: munich.ID, QuantityOnHand: 7}))

	totals, err := repo.TotalsByLocation(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	byLocation := map[uuid.UUID]models.InventoryLocationTotals{}
	for _, row := range totals {
		byLocation[row.LocationID] = row
	}
	assert.Equal(t, 100, byLocation[hamburg.ID].TotalOnHand)
	assert.Equal(t, 15, byLocation[hamburg.ID].TotalReserved)
	assert.Equal(t, 7, byLocation[munich.ID].TotalOnHand)
	assert.Equal(t, 0, byLocation[munich.ID].TotalReserved)

	// Another tenant's totals are empty, not someone else's numbers
	_, otherCtx := newTestTenant(t, db)
	totals, err = repo.TotalsByLocation(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, totals)

	// The aggregate needs a tenant like everything else
	_, err = repo.TotalsByLocation(context.Background())
	assertUnauthorized(t, err)
}
