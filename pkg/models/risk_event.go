package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskEventType classifies the cause of a disruption
type RiskEventType string

const (
	RiskEventTypeWeather         RiskEventType = "WEATHER"
	RiskEventTypeGeopolitical    RiskEventType = "GEOPOLITICAL"
	RiskEventTypeSupplierFailure RiskEventType = "SUPPLIER_FAILURE"
	RiskEventTypeLogistics       RiskEventType = "LOGISTICS"
	RiskEventTypeCyber           RiskEventType = "CYBER"
	RiskEventTypeRegulatory      RiskEventType = "REGULATORY"
	RiskEventTypeOther           RiskEventType = "OTHER"
)

// RiskSeverity grades how damaging a risk event is
type RiskSeverity string

const (
	RiskSeverityLow      RiskSeverity = "LOW"
	RiskSeverityMedium   RiskSeverity = "MEDIUM"
	RiskSeverityHigh     RiskSeverity = "HIGH"
	RiskSeverityCritical RiskSeverity = "CRITICAL"
)

// RiskEventStatus tracks the lifecycle of a risk event
type RiskEventStatus string

const (
	RiskEventStatusActive     RiskEventStatus = "ACTIVE"
	RiskEventStatusMonitoring RiskEventStatus = "MONITORING"
	RiskEventStatusMitigated  RiskEventStatus = "MITIGATED"
	RiskEventStatusResolved   RiskEventStatus = "RESOLVED"
)

// RiskEvent represents a disruption affecting parts of the supply chain.
// Affected suppliers, products, locations and routes are linked through
// junction rows managed by the risk event repository.
type RiskEvent struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	TenantID       uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	EventType      RiskEventType   `db:"event_type" json:"event_type"`
	Severity       RiskSeverity    `db:"severity" json:"severity"`
	Status         RiskEventStatus `db:"status" json:"status"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	ResolutionDate *time.Time      `db:"resolution_date" json:"resolution_date,omitempty"`
	MitigationPlan *string         `db:"mitigation_plan" json:"mitigation_plan,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// TableName returns the database table name
func (RiskEvent) TableName() string {
	return "risk_events"
}

// RiskEventAssociations lists the entities linked to a risk event
type RiskEventAssociations struct {
	SupplierIDs []uuid.UUID `json:"supplier_ids"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
	LocationIDs []uuid.UUID `json:"location_ids"`
	RouteIDs    []uuid.UUID `json:"route_ids"`
}

// CreateRiskEventRequest is the request body for creating a risk event
type CreateRiskEventRequest struct {
	EventType      RiskEventType   `json:"event_type" validate:"required,oneof=WEATHER GEOPOLITICAL SUPPLIER_FAILURE LOGISTICS CYBER REGULATORY OTHER"`
	Severity       RiskSeverity    `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Status         RiskEventStatus `json:"status" validate:"required,oneof=ACTIVE MONITORING MITIGATED RESOLVED"`
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description"`
	StartDate      time.Time       `json:"start_date" validate:"required"`
	ResolutionDate *time.Time      `json:"resolution_date,omitempty" validate:"omitempty,gtefield=StartDate"`
	MitigationPlan *string         `json:"mitigation_plan,omitempty"`
}

// UpdateRiskEventRequest is the request body for updating a risk event.
// Date ordering across a partial update is enforced by the storage layer
// check constraint.
type UpdateRiskEventRequest struct {
	EventType      *RiskEventType   `json:"event_type,omitempty" validate:"omitempty,oneof=WEATHER GEOPOLITICAL SUPPLIER_FAILURE LOGISTICS CYBER REGULATORY OTHER"`
	Severity       *RiskSeverity    `json:"severity,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Status         *RiskEventStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE MONITORING MITIGATED RESOLVED"`
	Title          *string          `json:"title,omitempty"`
	Description    *string          `json:"description,omitempty"`
	StartDate      *time.Time       `json:"start_date,omitempty"`
	ResolutionDate *time.Time       `json:"resolution_date,omitempty"`
	MitigationPlan *string          `json:"mitigation_plan,omitempty"`
}

// ListRiskEventFilter narrows List results. Nil fields are ignored.
type ListRiskEventFilter struct {
	EventType *RiskEventType   `json:"event_type,omitempty" query:"event_type"`
	Severity  *RiskSeverity    `json:"severity,omitempty" query:"severity"`
	Status    *RiskEventStatus `json:"status,omitempty" query:"status"`
}

// RiskEventResponse is the API response for risk event operations
type RiskEventResponse struct {
	RiskEvent
	Associations *RiskEventAssociations `json:"associations,omitempty"`
}

// RiskEventListResponse is the API response for listing risk events
type RiskEventListResponse struct {
	Items      []RiskEvent `json:"items"`
	TotalCount int         `json:"total_count"`
}
