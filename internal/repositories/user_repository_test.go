package repositories_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/internal/repositories"
	"github.com/Ramsey-B/vine/pkg/models"
)

func TestUserRepository_CRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := repositories.NewUserRepository(db, logger)

	tenantID, ctx := newTestTenant(t, db)

	// Test Create
	user := &models.User{
		Email:  "maria@vine.example",
		Name:   "Maria Lindqvist",
		Role:   models.UserRoleAnalyst,
		Status: models.UserStatusActive,
	}

	err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, tenantID, user.TenantID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Nil(t, user.LastLoginAt)

	// Test GetByID
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria@vine.example", fetched.Email)
	assert.Equal(t, models.UserRoleAnalyst, fetched.Role)

	// Test GetByEmail
	fetchedByEmail, err := repo.GetByEmail(ctx, "maria@vine.example")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetchedByEmail.ID)

	// Test List with filters
	analyst := models.UserRoleAnalyst
	users, err := repo.List(ctx, &models.ListUserFilter{Role: &analyst})
	require.NoError(t, err)
	require.Len(t, users, 1)

	admin := models.UserRoleAdmin
	users, err = repo.List(ctx, &models.ListUserFilter{Role: &admin})
	require.NoError(t, err)
	assert.Empty(t, users)

	// Test Update
	planner := models.UserRolePlanner
	suspended := models.UserStatusSuspended
	updated, err := repo.Update(ctx, user.ID, &models.UpdateUserRequest{
		Role:   &planner,
		Status: &suspended,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRolePlanner, updated.Role)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)
	assert.Equal(t, "maria@vine.example", updated.Email)
	assert.False(t, updated.UpdatedAt.Before(user.UpdatedAt))

	// Test Delete
	err = repo.Delete(ctx, user.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, user.ID)
	assertNotFound(t, err)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewUserRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	require.NoError(t, repo.Create(ctx, &models.User{
		Email:  "taken@vine.example",
		Name:   "First In",
		Role:   models.UserRoleViewer,
		Status: models.UserStatusActive,
	}))

	err := repo.Create(ctx, &models.User{
		Email:  "taken@vine.example",
		Name:   "Second Try",
		Role:   models.UserRoleViewer,
		Status: models.UserStatusActive,
	})
	assertConflict(t, err)

	// The address is only taken within the tenant
	_, otherCtx := newTestTenant(t, db)
	err = repo.Create(otherCtx, &models.User{
		Email:  "taken@vine.example",
		Name:   "Other Tenant User",
		Role:   models.UserRoleViewer,
		Status: models.UserStatusActive,
	})
	require.NoError(t, err)
}

func TestUserRepository_RecordLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := repositories.NewUserRepository(db, getTestLogger())

	_, ctx := newTestTenant(t, db)
	user := &models.User{
		Email:  "login@vine.example",
		Name:   "Login Tester",
		Role:   models.UserRoleAdmin,
		Status: models.UserStatusActive,
	}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.RecordLogin(ctx, user.ID)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.LastLoginAt)
	assert.False(t, fetched.LastLoginAt.IsZero())

	// Unknown and cross-tenant users both read as not found
	err = repo.RecordLogin(ctx, uuid.New())
	assertNotFound(t, err)

	_, otherCtx := newTestTenant(t, db)
	err = repo.RecordLogin(otherCtx, user.ID)
	assertNotFound(t, err)
}
