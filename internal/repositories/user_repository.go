package repositories

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

const usersTable = "users"

const userColumns = "id, tenant_id, email, name, role, status, last_login_at, created_at, updated_at"

var userStruct = database.NewStruct(new(models.User))

// UserRepository handles database operations for users
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DB, logger ectologger.Logger) *UserRepository {
	return &UserRepository{Repository: NewRepository(db, logger)}
}

// Create inserts a new user stamped with the active tenant
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Create")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	user.TenantID = scope.TenantID()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	ib := scope.InsertInto(usersTable)
	ib.Cols("id", "email", "name", "role", "status", "last_login_at", "created_at", "updated_at")
	ib.Values(user.ID, user.Email, user.Name, user.Role, user.Status, user.LastLoginAt,
		sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.DB().QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return Conflict("user with email %s already exists", user.Email)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": user.ID,
		}).Error("failed to create user")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": user.ID,
	}).Debugf("Created %s", usersTable)
	return nil
}

// GetByID retrieves a user by ID (tenant-scoped)
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByID")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(userStruct, usersTable)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var user models.User
	err = r.DB().GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": id,
		}).Error("failed to get user by ID")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get user by ID")
	}

	return &user, nil
}

// GetByEmail retrieves a user by email (tenant-scoped)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.GetByEmail")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(userStruct, usersTable)
	sb.Where(sb.Equal("email", email))

	query, args := sb.Build()
	var user models.User
	err = r.DB().GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user %s does not exist", email)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_email": email,
		}).Error("failed to get user by email")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get user by email")
	}

	return &user, nil
}

// List retrieves all users for the active tenant, optionally filtered
func (r *UserRepository) List(ctx context.Context, filter *models.ListUserFilter) ([]models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.List")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sb := scope.SelectFrom(userStruct, usersTable)
	if filter != nil {
		if filter.Role != nil {
			sb.Where(sb.Equal("role", *filter.Role))
		}
		if filter.Status != nil {
			sb.Where(sb.Equal("status", *filter.Status))
		}
	}
	sb.OrderBy("email")

	query, args := sb.Build()
	users := []models.User{}
	err = r.DB().SelectContext(ctx, &users, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list users")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}

	return users, nil
}

// Update applies the non-nil fields of req to a user (tenant-scoped). The
// email is a business key and cannot be changed.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Update")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ub := scope.Update(usersTable)
	assignments := []string{ub.Assign("updated_at", sqlbuilder.Raw("NOW()"))}
	if req.Name != nil {
		assignments = append(assignments, ub.Assign("name", *req.Name))
	}
	if req.Role != nil {
		assignments = append(assignments, ub.Assign("role", *req.Role))
	}
	if req.Status != nil {
		assignments = append(assignments, ub.Assign("status", *req.Status))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	ub.SQL("RETURNING " + userColumns)

	query, args := ub.Build()
	var user models.User
	err = r.DB().GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user %s does not exist", id)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": id,
		}).Error("failed to update user")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update user")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": id,
	}).Debugf("Updated %s", usersTable)
	return &user, nil
}

// RecordLogin stamps the user's last login time with the current time
// (tenant-scoped)
func (r *UserRepository) RecordLogin(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.RecordLogin")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	ub := scope.Update(usersTable)
	ub.Set(ub.Assign("last_login_at", sqlbuilder.Raw("NOW()")))
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": id,
		}).Error("failed to record user login")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record user login")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record user login")
	}
	if rows == 0 {
		return NotFound("user %s does not exist", id)
	}

	return nil
}

// Delete removes a user (tenant-scoped)
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.Delete")
	defer span.End()

	scope, err := database.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	del := scope.DeleteFrom(usersTable)
	del.Where(del.Equal("id", id))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id": id,
		}).Error("failed to delete user")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}
	if rows == 0 {
		return NotFound("user %s does not exist", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": id,
	}).Debugf("Deleted %s", usersTable)
	return nil
}

// DeleteByTenantID removes every user belonging to a tenant (administrative)
func (r *UserRepository) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "UserRepository.DeleteByTenantID")
	defer span.End()

	del := database.NewDeleteBuilder()
	del.DeleteFrom(usersTable)
	del.Where(del.Equal("tenant_id", tenantID))

	query, args := del.Build()
	result, err := r.DB().ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete users by tenant")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete users by tenant")
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}
