package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationType classifies what a location is used for
type LocationType string

const (
	LocationTypeWarehouse          LocationType = "WAREHOUSE"
	LocationTypeFactory            LocationType = "FACTORY"
	LocationTypePort               LocationType = "PORT"
	LocationTypeDistributionCenter LocationType = "DISTRIBUTION_CENTER"
	LocationTypeStore              LocationType = "STORE"
)

// LocationStatus is the operational state of a location
type LocationStatus string

const (
	LocationStatusActive   LocationStatus = "ACTIVE"
	LocationStatusInactive LocationStatus = "INACTIVE"
	LocationStatusClosed   LocationStatus = "CLOSED"
)

// Location represents a physical site in the supply chain network
type Location struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TenantID uuid.UUID `db:"tenant_id" json:"tenant_id"`
	// Code is the business key, unique per tenant.
	Code      string         `db:"code" json:"code"`
	Name      string         `db:"name" json:"name"`
	Type      LocationType   `db:"type" json:"type"`
	Status    LocationStatus `db:"status" json:"status"`
	Latitude  *float64       `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64       `db:"longitude" json:"longitude,omitempty"`
	Capacity  *int           `db:"capacity" json:"capacity,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (Location) TableName() string {
	return "locations"
}

// CreateLocationRequest is the request body for creating a location
type CreateLocationRequest struct {
	Code      string         `json:"code" validate:"required"`
	Name      string         `json:"name" validate:"required"`
	Type      LocationType   `json:"type" validate:"required,oneof=WAREHOUSE FACTORY PORT DISTRIBUTION_CENTER STORE"`
	Status    LocationStatus `json:"status" validate:"required,oneof=ACTIVE INACTIVE CLOSED"`
	Latitude  *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Capacity  *int           `json:"capacity,omitempty" validate:"omitempty,min=0"`
}

// UpdateLocationRequest is the request body for updating a location. The code
// is a business key and cannot be changed after creation.
type UpdateLocationRequest struct {
	Name      *string         `json:"name,omitempty"`
	Type      *LocationType   `json:"type,omitempty" validate:"omitempty,oneof=WAREHOUSE FACTORY PORT DISTRIBUTION_CENTER STORE"`
	Status    *LocationStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE CLOSED"`
	Latitude  *float64        `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64        `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Capacity  *int            `json:"capacity,omitempty" validate:"omitempty,min=0"`
}

// ListLocationFilter narrows List results. Nil fields are ignored.
type ListLocationFilter struct {
	Type   *LocationType   `json:"type,omitempty" query:"type"`
	Status *LocationStatus `json:"status,omitempty" query:"status"`
}

// LocationResponse is the API response for location operations
type LocationResponse struct {
	Location
}

// LocationListResponse is the API response for listing locations
type LocationListResponse struct {
	Items      []Location `json:"items"`
	TotalCount int        `json:"total_count"`
}
