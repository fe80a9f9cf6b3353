package database

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"

	appctx "github.com/Ramsey-B/vine/pkg/context"
)

// TenantScope builds queries that are always constrained to a single tenant.
// It can only be obtained through ScopeFromContext, so repositories that build
// their SQL through a scope cannot issue an unscoped entity query. Reads,
// updates and deletes get a tenant_id predicate pre-applied; inserts get the
// tenant stamped into every row regardless of what the caller supplied.
type TenantScope struct {
	tenantID uuid.UUID
}

// ScopeFromContext returns the tenant scope for the active tenant on ctx.
// A missing or malformed tenant is a 401: the operation fails before any
// database round-trip and is never retried.
func ScopeFromContext(ctx context.Context) (*TenantScope, error) {
	tenantIDStr := appctx.GetTenantID(ctx)
	if tenantIDStr == "" {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "tenant required")
	}

	tenantID, err := uuid.Parse(tenantIDStr)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "tenant required")
	}

	return &TenantScope{tenantID: tenantID}, nil
}

// TenantID returns the tenant this scope is bound to.
func (s *TenantScope) TenantID() uuid.UUID {
	return s.tenantID
}

// SelectFrom returns a select builder for the struct's columns with the tenant
// predicate already applied.
func (s *TenantScope) SelectFrom(st *Struct, table string) *SelectBuilder {
	sb := st.SelectFrom(table)
	sb.Where(sb.Equal("tenant_id", s.tenantID))
	return sb
}

// Select returns a select builder over the given columns with the tenant
// predicate already applied. Used for aggregates and joins where a struct
// builder does not fit.
func (s *TenantScope) Select(table string, cols ...string) *SelectBuilder {
	sb := NewSelectBuilder()
	sb.Select(cols...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", s.tenantID))
	return sb
}

// Update returns an update builder with the tenant predicate already applied.
// Row predicates added by the caller AND with it, so an update aimed at
// another tenant's row matches nothing.
func (s *TenantScope) Update(table string) *UpdateBuilder {
	ub := NewUpdateBuilder()
	ub.Update(table)
	ub.Where(ub.Equal("tenant_id", s.tenantID))
	return ub
}

// DeleteFrom returns a delete builder with the tenant predicate already
// applied.
func (s *TenantScope) DeleteFrom(table string) *DeleteBuilder {
	db := NewDeleteBuilder()
	db.DeleteFrom(table)
	db.Where(db.Equal("tenant_id", s.tenantID))
	return db
}

// InsertInto returns an insert builder that stamps tenant_id into every row.
func (s *TenantScope) InsertInto(table string) *ScopedInsertBuilder {
	return &ScopedInsertBuilder{
		InsertBuilder: NewInsertBuilder().InsertInto(table),
		tenantID:      s.tenantID,
	}
}

// ScopedInsertBuilder prepends the tenant_id column and value to every
// Cols/Values pair. Callers list only their own columns; the stamped tenant
// cannot be overridden by a caller-supplied value.
type ScopedInsertBuilder struct {
	*InsertBuilder
	tenantID uuid.UUID
}

func (b *ScopedInsertBuilder) Cols(cols ...string) *ScopedInsertBuilder {
	b.InsertBuilder = b.InsertBuilder.Cols(append([]string{"tenant_id"}, cols...)...)
	return b
}

func (b *ScopedInsertBuilder) Values(values ...any) *ScopedInsertBuilder {
	b.InsertBuilder = b.InsertBuilder.Values(append([]any{b.tenantID}, values...)...)
	return b
}

func (b *ScopedInsertBuilder) Returning(cols ...string) *ScopedInsertBuilder {
	b.InsertBuilder = b.InsertBuilder.Returning(cols...)
	return b
}
