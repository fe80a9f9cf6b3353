package repositories

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/database"
)

// NotFound returns a 404 HTTP error with a descriptive message. Cross-tenant
// reads come back through here too, so a caller cannot tell a row that does
// not exist from a row owned by another tenant.
func NotFound(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// BadRequest returns a 400 HTTP error
func BadRequest(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// Conflict returns a 409 HTTP error for constraint violations
func Conflict(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf(format, args...))
}

// Repository provides the shared pieces of every entity repository. Entity
// queries are built through database.TenantScope, so every read, update and
// delete carries the tenant predicate and every insert is stamped with the
// active tenant before it reaches PostgreSQL.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository builds the base repository the entity repositories embed
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// DB exposes the underlying database handle
func (r *Repository) DB() database.DB {
	return r.db
}
