package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole controls what a user may do
type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleAnalyst UserRole = "ANALYST"
	UserRoleViewer  UserRole = "VIEWER"
	UserRolePlanner UserRole = "PLANNER"
)

// UserStatus is the account state of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User represents an account belonging to a tenant
type User struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	// Email is the business key, unique per tenant.
	Email       string     `db:"email" json:"email"`
	Name        string     `db:"name" json:"name"`
	Role        UserRole   `db:"role" json:"role"`
	Status      UserStatus `db:"status" json:"status"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (User) TableName() string {
	return "users"
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Email  string     `json:"email" validate:"required,email"`
	Name   string     `json:"name" validate:"required"`
	Role   UserRole   `json:"role" validate:"required,oneof=ADMIN ANALYST VIEWER PLANNER"`
	Status UserStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

// UpdateUserRequest is the request body for updating a user. The email is a
// business key and cannot be changed after creation.
type UpdateUserRequest struct {
	Name   *string     `json:"name,omitempty"`
	Role   *UserRole   `json:"role,omitempty" validate:"omitempty,oneof=ADMIN ANALYST VIEWER PLANNER"`
	Status *UserStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
}

// ListUserFilter narrows List results. Nil fields are ignored.
type ListUserFilter struct {
	Role   *UserRole   `json:"role,omitempty" query:"role"`
	Status *UserStatus `json:"status,omitempty" query:"status"`
}

// UserResponse is the API response for user operations
type UserResponse struct {
	User
}

// UserListResponse is the API response for listing users
type UserListResponse struct {
	Items      []User `json:"items"`
	TotalCount int    `json:"total_count"`
}
