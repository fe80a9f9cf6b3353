package repositories_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func timePtr(ts time.Time) *time.Time {
	return &ts
}

func TestRiskEventRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewRiskEventRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)

	// Test Create
	event := &models.RiskEvent{
		EventType:   models.RiskEventTypeWeather,
		Severity:    models.RiskSeverityCritical,
		Status:      models.RiskEventStatusActive,
		Title:       "Typhoon closing Kaohsiung port",
		Description: "Category 4 storm expected to halt operations for a week",
		StartDate:   testStartDate(),
	}

	err := repo.Create(ctx, event)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, tenantID, event.TenantID)
	assert.False(t, event.CreatedAt.IsZero())

	// Test GetByID
	fetched, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiskEventTypeWeather, fetched.EventType)
	assert.Equal(t, models.RiskSeverityCritical, fetched.Severity)
	assert.Equal(t, "Typhoon closing Kaohsiung port", fetched.Title)
	assert.True(t, fetched.StartDate.Equal(testStartDate()))
	assert.Nil(t, fetched.ResolutionDate)

	// Test List with filters
	critical := models.RiskSeverityCritical
	events, err := repo.List(ctx, &models.ListRiskEventFilter{Severity: &critical})
	require.NoError(t, err)
	require.Len(t, events, 1)

	low := models.RiskSeverityLow
	events, err = repo.List(ctx, &models.ListRiskEventFilter{Severity: &low})
	require.NoError(t, err)
	assert.Empty(t, events)

	// Test Update resolves the event
	resolved := models.RiskEventStatusResolved
	updated, err := repo.Update(ctx, event.ID, &models.UpdateRiskEventRequest{
		Status:         &resolved,
		ResolutionDate: timePtr(testStartDate().AddDate(0, 0, 9)),
		MitigationPlan: strPtr("Shipments rerouted through Taipei"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskEventStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolutionDate)
	assert.True(t, updated.ResolutionDate.After(updated.StartDate))
	assert.False(t, updated.UpdatedAt.Before(event.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, event.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, event.ID)
	assertNotFound(t, err)
}

func TestRiskEventRepository_DateOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewRiskEventRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)

	// Resolution before start is rejected by storage even when the request
	// bypasses API validation
	err := repo.Create(ctx, &models.RiskEvent{
		EventType:      models.RiskEventTypeLogistics,
		Severity:       models.RiskSeverityMedium,
		Status:         models.RiskEventStatusResolved,
		Title:          "Backdated resolution",
		StartDate:      testStartDate(),
		ResolutionDate: timePtr(testStartDate().AddDate(0, 0, -1)),
	})
	assertConflict(t, err)

	// Same guard on update
	event := createTestRiskEvent(t, ctx, db, "Forward-dated event")
	_, err = repo.Update(ctx, event.ID, &models.UpdateRiskEventRequest{
		ResolutionDate: timePtr(testStartDate().AddDate(0, 0, -3)),
	})
	assertConflict(t, err)

	// A resolution on the start date itself is fine
	_, err = repo.Update(ctx, event.ID, &models.UpdateRiskEventRequest{
		ResolutionDate: timePtr(testStartDate()),
	})
	require.NoError(t, err)
}

func TestRiskEventRepository_Associations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewRiskEventRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)

	event := createTestRiskEvent(t, ctx, db, "Port congestion")
	supplier := createTestSupplier(t, ctx, db, "SUP-ASSOC")
	product := createTestProduct(t, ctx, db, "SKU-ASSOC", &supplier.ID)
	location := createTestLocation(t, ctx, db, "LOC-ASSOC")
	destination := createTestLocation(t, ctx, db, "LOC-ASSOC-B")
	route := createTestRoute(t, ctx, db, location.ID, destination.ID, models.TransportModeSea)

	// Link one of each entity kind
	require.NoError(t, repo.AddSupplier(ctx, event.ID, supplier.ID))
	require.NoError(t, repo.AddProduct(ctx, event.ID, product.ID))
	require.NoError(t, repo.AddLocation(ctx, event.ID, location.ID))
	require.NoError(t, repo.AddRoute(ctx, event.ID, route.ID))

	associations, err := repo.ListAssociations(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{supplier.ID}, associations.SupplierIDs)
	assert.Equal(t, []uuid.UUID{product.ID}, associations.ProductIDs)
	assert.Equal(t, []uuid.UUID{location.ID}, associations.LocationIDs)
	assert.Equal(t, []uuid.UUID{route.ID}, associations.RouteIDs)

	// Linking the same supplier twice conflicts
	err = repo.AddSupplier(ctx, event.ID, supplier.ID)
	assertConflict(t, err)

	// Test Remove
	require.NoError(t, repo.RemoveSupplier(ctx, event.ID, supplier.ID))

	associations, err = repo.ListAssociations(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, associations.SupplierIDs)
	assert.Len(t, associations.ProductIDs, 1)

	// Removing a link that is not there is a not found
	err = repo.RemoveSupplier(ctx, event.ID, supplier.ID)
	assertNotFound(t, err)

	// Deleting the event sweeps the remaining junction rows with it
	require.NoError(t, repo.RemoveRoute(ctx, event.ID, route.ID))
	require.NoError(t, repo.Delete(ctx, event.ID))

	_, err = repo.ListAssociations(ctx, event.ID)
	assertNotFound(t, err)
}

func TestRiskEventRepository_AssociationTenantScoping(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewRiskEventRepository(db, getTestLogger())

	_, ctxA := newTestTenant(t, db)
	_, ctxB := newTestTenant(t, db)

	eventA := createTestRiskEvent(t, ctxA, db, "Tenant A event")
	supplierA := createTestSupplier(t, ctxA, db, "SUP-A-ONLY")
	eventB := createTestRiskEvent(t, ctxB, db, "Tenant B event")

	// Tenant B cannot link its event to tenant A's supplier
	err := repo.AddSupplier(ctxB, eventB.ID, supplierA.ID)
	assertConflict(t, err)

	// Nor link anything to tenant A's event
	supplierB := createTestSupplier(t, ctxB, db, "SUP-B-ONLY")
	err = repo.AddSupplier(ctxB, eventA.ID, supplierB.ID)
	assertConflict(t, err)

	// Tenant A's association list is not visible to tenant B
	require.NoError(t, repo.AddSupplier(ctxA, eventA.ID, supplierA.ID))
	_, err = repo.ListAssociations(ctxB, eventA.ID)
	assertNotFound(t, err)
}

func TestRiskEventRepository_DeleteCascadesAssociatedEntities(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewRiskEventRepository(db, logger)
	supplierRepo := repositories.NewSupplierRepository(db, logger)

	_, ctx := newTestTenant(t, db)

	event := createTestRiskEvent(t, ctx, db, "Supplier insolvency")
	supplier := createTestSupplier(t, ctx, db, "SUP-GONE")
	require.NoError(t, repo.AddSupplier(ctx, event.ID, supplier.ID))

	// Deleting the supplier clears its junction rows, not the event
	require.NoError(t, supplierRepo.Delete(ctx, supplier.ID))

	associations, err := repo.ListAssociations(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, associations.SupplierIDs)

	_, err = repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
}
