package tenant

import (
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/graph"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/redis"
	"github.com/Ramsey-B/vine/pkg/tracing"
	"github.com/Ramsey-B/vine/pkg/utils"
)

// purgeLockTTL caps how long a crashed purge can block a retry
const purgeLockTTL = 5 * time.Minute

// Register registers tenant routes
func Register(g *echo.Group) {
	g.DELETE("/:tenant_id", Purge)
}

// Purge removes every row belonging to a tenant, in every table, and clears
// the tenant's graph partition when the graph is enabled. This is the
// offboarding path and runs outside tenant scoping: the target tenant comes
// from the URL, not from the caller's context.
func Purge(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "tenant_handler.Purge")
	defer span.End()

	tenantID, err := utils.ParseUUIDParam(c, "tenant_id")
	if err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*repositories.TenantRepository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	var result *models.TenantPurgeResult
	purge := func() error {
		var err error
		result, err = repo.Purge(ctx, tenantID)
		return err
	}

	// Concurrent purges of the same tenant are serialized through Redis
	// when it is wired
	if lockCtx, locker, lockErr := ectoinject.GetContext[*redis.Locker](ctx); lockErr == nil && locker != nil {
		ctx = lockCtx
		err = locker.WithLock(ctx, "tenant-purge:"+tenantID.String(), purgeLockTTL, purge)
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return httperror.NewHTTPError(http.StatusConflict, "tenant purge already in progress")
		}
	} else {
		err = purge()
	}
	if err != nil {
		return err
	}

	// Clear the tenant's graph partition when the graph is wired
	if ctx, network, err := ectoinject.GetContext[*graph.NetworkService](ctx); err == nil && network != nil {
		if err := network.PurgeTenant(ctx, tenantID.String()); err != nil {
			_, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
			if logger != nil {
				logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"tenant_id": tenantID,
				}).Error("Failed to purge tenant graph partition")
			}
		}
	}

	return c.JSON(http.StatusOK, result)
}
