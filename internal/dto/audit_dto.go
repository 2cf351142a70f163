package dto

import (
	"time"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

// AuditAppendRequest captures one audit entry to record. Timestamp defaults
// to the insertion time when omitted.
type AuditAppendRequest struct {
	Actor     string     `json:"actor" validate:"required,max=128"`
	ActorRole string     `json:"actor_role" validate:"omitempty,oneof=user admin system assistant"`
	AdminID   *uint      `json:"admin_id"`
	UserID    *uint      `json:"user_id"`
	Event     string     `json:"event" validate:"required,max=256"`
	Detail    string     `json:"detail"`
	Timestamp *time.Time `json:"ts"`
}

// AuditEntryResponse serializes one stored audit entry.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	Actor     string    `json:"actor"`
	ActorRole string    `json:"actor_role,omitempty"`
	AdminID   *uint     `json:"admin_id,omitempty"`
	UserID    *uint     `json:"user_id,omitempty"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
}

// NewAuditEntryResponse converts an audit model into a DTO.
func NewAuditEntryResponse(entry models.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor,
		ActorRole: entry.ActorRole,
		AdminID:   entry.AdminID,
		UserID:    entry.UserID,
		Event:     entry.Event,
		Detail:    entry.Detail,
	}
}

// AuditListRequest defines filters for retrieving audit entries. All filters
// are optional and AND-combined; Search OR-matches actor, event and detail.
type AuditListRequest struct {
	Actor     string
	ActorRole string
	AdminID   *uint
	UserID    *uint
	Event     string
	Search    string
	Limit     int
	Offset    int
}

// AuditListResponse wraps an ordered page of audit entries.
type AuditListResponse struct {
	Items    []AuditEntryResponse `json:"items"`
	Count    int                  `json:"count"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
	CacheHit bool                 `json:"cache_hit"`
}
