package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory represents the stock of one product at one location. The
// combination of product and location is unique per tenant.
type Inventory struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	TenantID         uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	ProductID        uuid.UUID  `db:"product_id" json:"product_id"`
	LocationID       uuid.UUID  `db:"location_id" json:"location_id"`
	QuantityOnHand   int        `db:"quantity_on_hand" json:"quantity_on_hand"`
	QuantityReserved int        `db:"quantity_reserved" json:"quantity_reserved"`
	ReorderPoint     int        `db:"reorder_point" json:"reorder_point"`
	LastCountDate    *time.Time `db:"last_count_date" json:"last_count_date,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Inventory) TableName() string {
	return "inventory"
}

// CreateInventoryRequest is the request body for creating an inventory row.
// Quantities default to zero when omitted.
type CreateInventoryRequest struct {
	ProductID        uuid.UUID  `json:"product_id" validate:"required"`
	LocationID       uuid.UUID  `json:"location_id" validate:"required"`
	QuantityOnHand   int        `json:"quantity_on_hand" validate:"min=0"`
	QuantityReserved int        `json:"quantity_reserved" validate:"min=0"`
	ReorderPoint     int        `json:"reorder_point" validate:"min=0"`
	LastCountDate    *time.Time `json:"last_count_date,omitempty"`
}

// UpdateInventoryRequest is the request body for updating an inventory row.
// The product and location pair identifies the row and cannot be changed.
type UpdateInventoryRequest struct {
	QuantityOnHand   *int       `json:"quantity_on_hand,omitempty" validate:"omitempty,min=0"`
	QuantityReserved *int       `json:"quantity_reserved,omitempty" validate:"omitempty,min=0"`
	ReorderPoint     *int       `json:"reorder_point,omitempty" validate:"omitempty,min=0"`
	LastCountDate    *time.Time `json:"last_count_date,omitempty"`
}

// ListInventoryFilter narrows List results. Nil fields are ignored.
type ListInventoryFilter struct {
	ProductID  *uuid.UUID `json:"product_id,omitempty" query:"product_id"`
	LocationID *uuid.UUID `json:"location_id,omitempty" query:"location_id"`
}

// InventoryLocationTotals is one row of the per-location stock aggregate
type InventoryLocationTotals struct {
	LocationID    uuid.UUID `db:"location_id" json:"location_id"`
	TotalOnHand   int       `db:"total_on_hand" json:"total_on_hand"`
	TotalReserved int       `db:"total_reserved" json:"total_reserved"`
}

// InventoryResponse is the API response for inventory operations
type InventoryResponse struct {
	Inventory
}

// InventoryListResponse is the API response for listing inventory rows
type InventoryListResponse struct {
	Items      []Inventory `json:"items"`
	TotalCount int         `json:"total_count"`
}

// InventoryTotalsResponse is the API response for the per-location aggregate
type InventoryTotalsResponse struct {
	Items []InventoryLocationTotals `json:"items"`
}
