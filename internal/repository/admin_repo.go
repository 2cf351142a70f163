package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

// AdminRepository persists administrator accounts. Usernames and emails are
// lowercased on the way in, which makes the unique indexes case-insensitive
// in effect and keeps lookups a plain equality match.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByID(ctx context.Context, id uint) (*models.Admin, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.Admin, error)
	TouchLastLogin(ctx context.Context, id uint) error
	UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdatePassword(ctx context.Context, id uint, digest, salt []byte) error
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs the admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.Username = strings.ToLower(strings.TrimSpace(admin.Username))
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	err := r.db.WithContext(ctx).Create(admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAccount
	}
	return err
}

func (r *adminRepository) FindByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "admin_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.Admin, error) {
	ident := strings.ToLower(strings.TrimSpace(identifier))

	var admin models.Admin
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", ident, ident).
		First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("admin_id = ?", id).
		UpdateColumn("last_login", time.Now().UTC()).Error
}

func (r *adminRepository) UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if username, ok := updates["username"].(string); ok {
		updates["username"] = strings.ToLower(strings.TrimSpace(username))
	}
	err := r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("admin_id = ?", id).
		Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAccount
	}
	return err
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uint, digest, salt []byte) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("admin_id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": digest,
			"password_salt": salt,
		}).Error
}
