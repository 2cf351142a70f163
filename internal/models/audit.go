package models

import "time"

// Actor roles recorded on audit entries.
const (
	ActorRoleUser      = "user"
	ActorRoleAdmin     = "admin"
	ActorRoleSystem    = "system"
	ActorRoleAssistant = "assistant"
)

// AuditEntry is one immutable record of a user/admin/system/assistant action.
// Entries are append-only: nothing in this codebase updates or deletes them,
// and the admin/user references are plain values so entries outlive the
// accounts they mention.
type AuditEntry struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"column:ts;not null;index" json:"ts"`
	Actor     string    `gorm:"size:128;not null;index" json:"actor"`
	ActorRole string    `gorm:"size:16" json:"actor_role,omitempty"`
	AdminID   *uint     `gorm:"index" json:"admin_id,omitempty"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Event     string    `gorm:"size:256;not null;index" json:"event"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
}

// TableName specifies the table name for the AuditEntry model.
func (AuditEntry) TableName() string {
	return "audits"
}
