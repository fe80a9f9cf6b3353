package repositories_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestLocationRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewLocationRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)

	// Test Create
	location := &models.Location{
		Code:      "LOC-001",
		Name:      "Rotterdam Port",
		Type:      models.LocationTypePort,
		Status:    models.LocationStatusActive,
		Latitude:  floatPtr(51.9496),
		Longitude: floatPtr(4.1453),
		Capacity:  intPtr(120000),
	}

	err := repo.Create(ctx, location)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, location.ID)
	assert.Equal(t, tenantID, location.TenantID)
	assert.False(t, location.CreatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, location.ID)
	require.NoError(t, err)
	assert.Equal(t, "LOC-001", fetched.Code)
	assert.Equal(t, models.LocationTypePort, fetched.Type)
	assert.InDelta(t, 51.9496, *fetched.Latitude, 0.0001)
	assert.Equal(t, 120000, *fetched.Capacity)

	// Test GetByCode
	fetchedByCode, err := repo.GetByCode(ctx, "LOC-001")
	require.NoError(t, err)
	assert.Equal(t, location.ID, fetchedByCode.ID)

	// Test List with filters
	portType := models.LocationTypePort
	locations, err := repo.List(ctx, &models.ListLocationFilter{Type: &portType})
	require.NoError(t, err)
	require.Len(t, locations, 1)

	warehouseType := models.LocationTypeWarehouse
	locations, err = repo.List(ctx, &models.ListLocationFilter{Type: &warehouseType})
	require.NoError(t, err)
	assert.Empty(t, locations)

	// Test Update
	closedStatus := models.LocationStatusClosed
	updated, err := repo.Update(ctx, location.ID, &models.UpdateLocationRequest{
		Status:   &closedStatus,
		Capacity: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LocationStatusClosed, updated.Status)
	assert.Equal(t, 0, *updated.Capacity)
	assert.Equal(t, "Rotterdam Port", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(location.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, location.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, location.ID)
	assertNotFound(t, err)
}

func TestLocationRepository_CrossTenantUpdateBlocked(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLocationRepository(db, getTestLogger())

	_, ctxA := newTestTenant(t, db)
	_, ctxB := newTestTenant(t, db)

	location := createTestLocation(t, ctxA, db, "LOC-MINE")

	// Tenant B gets a not found, not a hint that the row exists
	_, err := repo.Update(ctxB, location.ID, &models.UpdateLocationRequest{Name: strPtr("Hijacked")})
	assertNotFound(t, err)

	// Tenant A's row is untouched
	unchanged, err := repo.GetByID(ctxA, location.ID)
	require.NoError(t, err)
	assert.Equal(t, "Location LOC-MINE", unchanged.Name)
}

func TestLocationRepository_DuplicateCode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewLocationRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	createTestLocation(t, ctx, db, "LOC-DUP")

	err := repo.Create(ctx, &models.Location{
		Code:   "LOC-DUP",
		Name:   "Copycat",
		Type:   models.LocationTypeStore,
		Status: models.LocationStatusActive,
	})
	assertConflict(t, err)

	_, otherCtx := newTestTenant(t, db)
	err = repo.Create(otherCtx, &models.Location{
		Code:   "LOC-DUP",
		Name:   "Other Tenant Location",
		Type:   models.LocationTypeStore,
		Status: models.LocationStatusActive,
	})
	require.NoError(t, err)
}

func TestLocationRepository_DeleteRestricted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	locationRepo := repositories.NewLocationRepository(db, logger)
	routeRepo := repositories.NewShipmentRouteRepository(db, logger)
	inventoryRepo := repositories.NewInventoryRepository(db, logger)

	_, ctx := newTestTenant(t, db)

	origin := createTestLocation(t, ctx, db, "LOC-ORIGIN")
	destination := createTestLocation(t, ctx, db, "LOC-DEST")
	route := createTestRoute(t, ctx, db, origin.ID, destination.ID, models.TransportModeTruck)

	// A location on a route cannot be deleted
	err := locationRepo.Delete(ctx, origin.ID)
	assertConflict(t, err)

	// Same for a location holding inventory
	product := createTestProduct(t, ctx, db, "SKU-LOC", nil)
	stocked := createTestLocation(t, ctx, db, "LOC-STOCKED")
	require.NoError(t, inventoryRepo.Create(ctx, &models.Inventory{
		ProductID:      product.ID,
		LocationID:     stocked.ID,
		QuantityOnHand: 5,
	}))

	err = locationRepo.Delete(ctx, stocked.ID)
	assertConflict(t, err)

	// Removing the route frees the origin
	require.NoError(t, routeRepo.Delete(ctx, route.ID))
	err = locationRepo.Delete(ctx, origin.ID)
	require.NoError(t, err)
}
