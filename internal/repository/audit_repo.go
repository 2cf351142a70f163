package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

// Limits applied to audit queries. A limit below 1 falls back to 50 rows and
// a negative offset is treated as 0, mirroring the reporting contract.
const (
	DefaultAuditLimit  = 500
	FallbackAuditLimit = 50
)

// AuditFilter narrows audit queries. Zero-valued fields add no constraint;
// the provided ones are AND-combined. Search matches actor, event or detail
// as a case-insensitive substring.
type AuditFilter struct {
	Actor     string
	ActorRole string
	AdminID   *uint
	UserID    *uint
	Event     string
	Search    string
	Limit     int
	Offset    int
}

// AuditRepository is the append-only store for audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository constructs the audit repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})

	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.ActorRole != "" {
		query = query.Where("actor_role = ?", filter.ActorRole)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Event != "" {
		query = query.Where("event = ?", filter.Event)
	}
	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on postgres
		// and sqlite alike.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(actor) LIKE ? OR LOWER(event) LIKE ? OR LOWER(detail) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = FallbackAuditLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var entries []models.AuditEntry
	err := query.
		Order("ts DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
