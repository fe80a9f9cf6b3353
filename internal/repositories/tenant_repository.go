package repositories

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// purgeOrder lists every tenant-owning table in an order that satisfies the
// restrict rules: junction rows before routes, inventory and routes before
// locations, products before suppliers.
var purgeOrder = []string{
	riskEventSuppliersTable,
	riskEventProductsTable,
	riskEventLocationsTable,
	riskEventRoutesTable,
	riskEventsTable,
	inventoryTable,
	shipmentRoutesTable,
	productsTable,
	suppliersTable,
	locationsTable,
	usersTable,
}

// TenantRepository handles administrative operations spanning a whole tenant
type TenantRepository struct {
	*Repository
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db database.DB, logger ectologger.Logger) *TenantRepository {
	return &TenantRepository{Repository: NewRepository(db, logger)}
}

// Purge removes every row belonging to a tenant across all tables in a
// single transaction. This is the administrative pass-through path: the
// tenant comes from the caller and no scope is applied.
func (r *TenantRepository) Purge(ctx context.Context, tenantID uuid.UUID) (*models.TenantPurgeResult, error) {
	ctx, span := tracing.StartSpan(ctx, "TenantRepository.Purge")
	defer span.End()

	txCtx, tx, err := r.DB().GetTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to begin tenant purge")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to purge tenant")
	}
	// Rollback with the pre-transaction context so it fires unless committed.
	defer func() { _ = tx.Rollback(ctx) }()

	result := &models.TenantPurgeResult{
		TenantID: tenantID,
		Deleted:  make(map[string]int64, len(purgeOrder)),
	}

	for _, table := range purgeOrder {
		del := database.NewDeleteBuilder()
		del.DeleteFrom(table)
		del.Where(del.Equal("tenant_id", tenantID))

		query, args := del.Build()
		res, err := tx.ExecContext(txCtx, query, args...)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"tenant_id": tenantID,
				"table":     table,
			}).Error("failed to purge tenant table")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to purge tenant")
		}

		rows, _ := res.RowsAffected()
		result.Deleted[table] = rows
		result.Total += rows
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to purge tenant")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":    tenantID,
		"rows_deleted": result.Total,
	}).Info("Purged tenant data")
	return result, nil
}
