package models

import (
	"time"

	"github.com/google/uuid"
)

// TransportMode is how goods move along a route
type TransportMode string

const (
	TransportModeTruck TransportMode = "TRUCK"
	TransportModeRail  TransportMode = "RAIL"
	TransportModeSea   TransportMode = "SEA"
	TransportModeAir   TransportMode = "AIR"
)

// ShipmentRoute represents a lane between two locations. The combination of
// origin, destination and transport mode is unique per tenant.
type ShipmentRoute struct {
	ID                    uuid.UUID     `db:"id" json:"id"`
	TenantID              uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	OriginLocationID      uuid.UUID     `db:"origin_location_id" json:"origin_location_id"`
	DestinationLocationID uuid.UUID     `db:"destination_location_id" json:"destination_location_id"`
	TransitTimeDays       int           `db:"transit_time_days" json:"transit_time_days"`
	TransportMode         TransportMode `db:"transport_mode" json:"transport_mode"`
	DistanceKM            *float64      `db:"distance_km" json:"distance_km,omitempty"`
	CostPerShipment       *float64      `db:"cost_per_shipment" json:"cost_per_shipment,omitempty"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (ShipmentRoute) TableName() string {
	return "shipment_routes"
}

// CreateShipmentRouteRequest is the request body for creating a shipment
// route. Origin and destination must differ; the repository enforces that.
type CreateShipmentRouteRequest struct {
	OriginLocationID      uuid.UUID     `json:"origin_location_id" validate:"required"`
	DestinationLocationID uuid.UUID     `json:"destination_location_id" validate:"required"`
	TransitTimeDays       int           `json:"transit_time_days" validate:"required,min=1"`
	TransportMode         TransportMode `json:"transport_mode" validate:"required,oneof=TRUCK RAIL SEA AIR"`
	DistanceKM            *float64      `json:"distance_km,omitempty" validate:"omitempty,min=0"`
	CostPerShipment       *float64      `json:"cost_per_shipment,omitempty" validate:"omitempty,min=0"`
}

// UpdateShipmentRouteRequest is the request body for updating a shipment
// route. Origin, destination and mode identify the lane and cannot be changed
// after creation.
type UpdateShipmentRouteRequest struct {
	TransitTimeDays *int     `json:"transit_time_days,omitempty" validate:"omitempty,min=1"`
	DistanceKM      *float64 `json:"distance_km,omitempty" validate:"omitempty,min=0"`
	CostPerShipment *float64 `json:"cost_per_shipment,omitempty" validate:"omitempty,min=0"`
}

// ListShipmentRouteFilter narrows List results. Nil fields are ignored.
type ListShipmentRouteFilter struct {
	OriginLocationID      *uuid.UUID     `json:"origin_location_id,omitempty" query:"origin_location_id"`
	DestinationLocationID *uuid.UUID     `json:"destination_location_id,omitempty" query:"destination_location_id"`
	TransportMode         *TransportMode `json:"transport_mode,omitempty" query:"transport_mode"`
}

// ShipmentRouteResponse is the API response for shipment route operations
type ShipmentRouteResponse struct {
	ShipmentRoute
}

// ShipmentRouteListResponse is the API response for listing shipment routes
type ShipmentRouteListResponse struct {
	Items      []ShipmentRoute `json:"items"`
	TotalCount int             `json:"total_count"`
}
