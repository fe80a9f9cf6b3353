package models

import "github.com/google/uuid"

// TenantPurgeResult reports how many rows a tenant purge removed per table
type TenantPurgeResult struct {
	TenantID uuid.UUID        `json:"tenant_id"`
	Deleted  map[string]int64 `json:"deleted"`
	Total    int64            `json:"total"`
}
