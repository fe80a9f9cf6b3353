package repositories_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func TestShipmentRouteRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewShipmentRouteRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)
	origin := createTestLocation(t, ctx, db, "LOC-RT-A")
	destination := createTestLocation(t, ctx, db, "LOC-RT-B")

	// Test Create
	route := &models.ShipmentRoute{
		OriginLocationID:      origin.ID,
		DestinationLocationID: destination.ID,
		TransitTimeDays:       6,
		TransportMode:         models.TransportModeSea,
		DistanceKM:            floatPtr(1250.5),
		CostPerShipment:       floatPtr(940.00),
	}

	err := repo.Create(ctx, route)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, route.ID)
	assert.Equal(t, tenantID, route.TenantID)
	assert.False(t, route.CreatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, origin.ID, fetched.OriginLocationID)
	assert.Equal(t, destination.ID, fetched.DestinationLocationID)
	assert.Equal(t, models.TransportModeSea, fetched.TransportMode)
	assert.InDelta(t, 1250.5, *fetched.DistanceKM, 0.001)

	// Test List with filters
	routes, err := repo.List(ctx, &models.ListShipmentRouteFilter{OriginLocationID: &origin.ID})
	require.NoError(t, err)
	require.Len(t, routes, 1)

	airMode := models.TransportModeAir
	routes, err = repo.List(ctx, &models.ListShipmentRouteFilter{TransportMode: &airMode})
	require.NoError(t, err)
	assert.Empty(t, routes)

	// Test Update only touches the mutable fields
	updated, err := repo.Update(ctx, route.ID, &models.UpdateShipmentRouteRequest{
		TransitTimeDays: intPtr(5),
		CostPerShipment: floatPtr(899.99),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TransitTimeDays)
	assert.InDelta(t, 899.99, *updated.CostPerShipment, 0.001)
	assert.Equal(t, origin.ID, updated.OriginLocationID)
	assert.Equal(t, models.TransportModeSea, updated.TransportMode)
	assert.False(t, updated.UpdatedAt.Before(route.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, route.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, route.ID)
	assertNotFound(t, err)
}

func TestShipmentRouteRepository_SameOriginAndDestination(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewShipmentRouteRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	location := createTestLocation(t, ctx, db, "LOC-SELF")

	err := repo.Create(ctx, &models.ShipmentRoute{
		OriginLocationID:      location.ID,
		DestinationLocationID: location.ID,
		TransitTimeDays:       1,
		TransportMode:         models.TransportModeTruck,
	})
	assertBadRequest(t, err)
}

func TestShipmentRouteRepository_DuplicateLane(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewShipmentRouteRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	origin := createTestLocation(t, ctx, db, "LOC-LANE-A")
	destination := createTestLocation(t, ctx, db, "LOC-LANE-B")

	createTestRoute(t, ctx, db, origin.ID, destination.ID, models.TransportModeTruck)

	// A second TRUCK route on the same lane conflicts
	err := repo.Create(ctx, &models.ShipmentRoute{
		OriginLocationID:      origin.ID,
		DestinationLocationID: destination.ID,
		TransitTimeDays:       2,
		TransportMode:         models.TransportModeTruck,
	})
	assertConflict(t, err)

	// A different mode on the same lane is a different route
	err = repo.Create(ctx, &models.ShipmentRoute{
		OriginLocationID:      origin.ID,
		DestinationLocationID: destination.ID,
		TransitTimeDays:       1,
		TransportMode:         models.TransportModeAir,
	})
	require.NoError(t, err)

	// So is the same mode in the opposite direction
	err = repo.Create(ctx, &models.ShipmentRoute{
		OriginLocationID:      destination.ID,
		DestinationLocationID: origin.ID,
		TransitTimeDays:       2,
		TransportMode:         models.TransportModeTruck,
	})
	require.NoError(t, err)
}

func TestShipmentRouteRepository_CrossTenantLocations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewShipmentRouteRepository(db, getTestLogger())

	_, ctxA := newTestTenant(t, db)
	_, ctxB := newTestTenant(t, db)

	originA := createTestLocation(t, ctxA, db, "LOC-XT-A")
	destinationA := createTestLocation(t, ctxA, db, "LOC-XT-B")

	// Tenant B cannot build a route over tenant A's locations
	err := repo.Create(ctxB, &models.ShipmentRoute{
		OriginLocationID:      originA.ID,
		DestinationLocationID: destinationA.ID,
		TransitTimeDays:       3,
		TransportMode:         models.TransportModeRail,
	})
	assertConflict(t, err)
}

func TestShipmentRouteRepository_DeleteLinkedToRiskEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	routeRepo := repositories.NewShipmentRouteRepository(db, logger)
	riskEventRepo := repositories.NewRiskEventRepository(db, logger)

	_, ctx := newTestTenant(t, db)
	origin := createTestLocation(t, ctx, db, "LOC-RISKED-A")
	destination := createTestLocation(t, ctx, db, "LOC-RISKED-B")
	route := createTestRoute(t, ctx, db, origin.ID, destination.ID, models.TransportModeRail)
	event := createTestRiskEvent(t, ctx, db, "Rail strike")

	require.NoError(t, riskEventRepo.AddRoute(ctx, event.ID, route.ID))

	// A route linked to a risk event stays put
	err := routeRepo.Delete(ctx, route.ID)
	assertConflict(t, err)

	// Unlinking clears the way
	require.NoError(t, riskEventRepo.RemoveRoute(ctx, event.ID, route.ID))
	err = routeRepo.Delete(ctx, route.ID)
	require.NoError(t, err)
}
