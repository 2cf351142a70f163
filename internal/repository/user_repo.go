package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

// Duplicate errors surfaced when an insert trips a storage unique constraint.
// The user path distinguishes which field collided; the admin path does not.
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateAccount  = errors.New("username or email already registered")
)

// UserRepository persists end-user accounts. Lookups are byte-exact.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uint) error
	UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdatePassword(ctx context.Context, id uint, digest, salt []byte) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user relying on the unique indexes for race-free
// duplicate detection; an application pre-check alone could let two
// concurrent registrations both pass. On conflict the username is re-read
// to report which field collided.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var count int64
		if lookupErr := r.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ?", user.Username).
			Count(&count).Error; lookupErr == nil && count > 0 {
			return ErrDuplicateUsername
		}
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "user_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin records a successful login. Only last_login moves; concurrent
// logins race harmlessly since last write wins.
func (r *userRepository) TouchLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		UpdateColumn("last_login", time.Now().UTC()).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAccount
	}
	return err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, digest, salt []byte) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": digest,
			"password_salt": salt,
		}).Error
}
