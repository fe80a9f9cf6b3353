package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a company that provides products to the supply chain
type Supplier struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	// Code is the business key (e.g. "SUP-001"), unique per tenant.
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Country      string    `db:"country" json:"country"`
	Rating       int       `db:"rating" json:"rating"`
	ContactName  *string   `db:"contact_name" json:"contact_name,omitempty"`
	ContactEmail *string   `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Supplier) TableName() string {
	return "suppliers"
}

// CreateSupplierRequest is the request body for creating a supplier
type CreateSupplierRequest struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Country      string  `json:"country" validate:"required"`
	Rating       int     `json:"rating" validate:"required,min=1,max=5"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// UpdateSupplierRequest is the request body for updating a supplier. The code
// is a business key and cannot be changed after creation.
type UpdateSupplierRequest struct {
	Name         *string `json:"name,omitempty"`
	Country      *string `json:"country,omitempty"`
	Rating       *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// ListSupplierFilter narrows List results. Nil fields are ignored.
type ListSupplierFilter struct {
	Country *string `json:"country,omitempty" query:"country"`
	Rating  *int    `json:"rating,omitempty" query:"rating"`
}

// SupplierResponse is the API response for supplier operations
type SupplierResponse struct {
	Supplier
}

// SupplierListResponse is the API response for listing suppliers
type SupplierListResponse struct {
	Items      []Supplier `json:"items"`
	TotalCount int        `json:"total_count"`
}
