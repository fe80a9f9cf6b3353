package repositories_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/vine/internal/repositories"
	appctx "github.com/Ramsey-B/vine/pkg/context"
	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	// Use environment variables or defaults for test DB
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "vine"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.Wrap(db, getTestLogger())
}

func getTestContext(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	return appctx.SetTenantID(ctx, tenantID.String())
}

// newTestTenant returns a fresh tenant with a context bound to it. All of the
// tenant's rows are purged when the test finishes.
func newTestTenant(t *testing.T, db database.DB) (uuid.UUID, context.Context) {
	t.Helper()
	tenantID := uuid.New()
	t.Cleanup(func() {
		_, _ = repositories.NewTenantRepository(db, getTestLogger()).Purge(context.Background(), tenantID)
	})
	return tenantID, getTestContext(tenantID)
}

// assertNotFound asserts that err is an HTTP 404 error
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err), "expected 404, got: %d", httperror.GetStatusCode(err))
}

// assertUnauthorized asserts that err is an HTTP 401 error
func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusUnauthorized, httperror.GetStatusCode(err), "expected 401, got: %d", httperror.GetStatusCode(err))
}

// assertConflict asserts that err is an HTTP 409 error
func assertConflict(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err), "expected 409, got: %d", httperror.GetStatusCode(err))
}

// assertBadRequest asserts that err is an HTTP 400 error
func assertBadRequest(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err), "expected 400, got: %d", httperror.GetStatusCode(err))
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func createTestSupplier(t *testing.T, ctx context.Context, db database.DB, code string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{
		Code:    code,
		Name:    "Supplier " + code,
		Country: "DE",
		Rating:  3,
	}
	require.NoError(t, repositories.NewSupplierRepository(db, getTestLogger()).Create(ctx, supplier))
	return supplier
}

func createTestProduct(t *testing.T, ctx context.Context, db database.DB, sku string, supplierID *uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Category:      "components",
		LeadTimeDays:  5,
		UnitOfMeasure: "EA",
		SupplierID:    supplierID,
	}
	require.NoError(t, repositories.NewProductRepository(db, getTestLogger()).Create(ctx, product))
	return product
}

func createTestLocation(t *testing.T, ctx context.Context, db database.DB, code string) *models.Location {
	t.Helper()
	location := &models.Location{
		Code:   code,
		Name:   "Location " + code,
		Type:   models.LocationTypeWarehouse,
		Status: models.LocationStatusActive,
	}
	require.NoError(t, repositories.NewLocationRepository(db, getTestLogger()).Create(ctx, location))
	return location
}

func createTestRoute(t *testing.T, ctx context.Context, db database.DB, originID, destinationID uuid.UUID, mode models.TransportMode) *models.ShipmentRoute {
	t.Helper()
	route := &models.ShipmentRoute{
		OriginLocationID:      originID,
		DestinationLocationID: destinationID,
		TransitTimeDays:       4,
		TransportMode:         mode,
	}
	require.NoError(t, repositories.NewShipmentRouteRepository(db, getTestLogger()).Create(ctx, route))
	return route
}

func testStartDate() time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
}

func createTestRiskEvent(t *testing.T, ctx context.Context, db database.DB, title string) *models.RiskEvent {
	t.Helper()
	event := &models.RiskEvent{
		EventType: models.RiskEventTypeWeather,
		Severity:  models.RiskSeverityHigh,
		Status:    models.RiskEventStatusActive,
		Title:     title,
		StartDate: testStartDate(),
	}
	require.NoError(t, repositories.NewRiskEventRepository(db, getTestLogger()).Create(ctx, event))
	return event
}
