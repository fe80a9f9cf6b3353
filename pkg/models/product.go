package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a good that moves through the supply chain
type Product struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	// SKU is the business key, unique per tenant.
	SKU           string     `db:"sku" json:"sku"`
	Name          string     `db:"name" json:"name"`
	Category      string     `db:"category" json:"category"`
	LeadTimeDays  int        `db:"lead_time_days" json:"lead_time_days"`
	UnitOfMeasure string     `db:"unit_of_measure" json:"unit_of_measure"`
	SupplierID    *uuid.UUID `db:"supplier_id" json:"supplier_id,omitempty"`
	// Supplier is populated only when the read requested it.
	Supplier  *Supplier `db:"-" json:"supplier,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// CreateProductRequest is the request body for creating a product
type CreateProductRequest struct {
	SKU           string     `json:"sku" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Category      string     `json:"category"`
	LeadTimeDays  int        `json:"lead_time_days" validate:"required,min=1"`
	UnitOfMeasure string     `json:"unit_of_measure" validate:"required"`
	SupplierID    *uuid.UUID `json:"supplier_id,omitempty"`
}

// UpdateProductRequest is the request body for updating a product. The sku
// is a business key and cannot be changed after creation.
type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty"`
	Category      *string    `json:"category,omitempty"`
	LeadTimeDays  *int       `json:"lead_time_days,omitempty" validate:"omitempty,min=1"`
	UnitOfMeasure *string    `json:"unit_of_measure,omitempty"`
	SupplierID    *uuid.UUID `json:"supplier_id,omitempty"`
}

// ListProductFilter narrows List results. Nil fields are ignored.
type ListProductFilter struct {
	Category   *string    `json:"category,omitempty" query:"category"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty" query:"supplier_id"`
}

// ProductResponse is the API response for product operations
type ProductResponse struct {
	Product
}

// ProductListResponse is the API response for listing products
type ProductListResponse struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"total_count"`
}
