package models

import "time"

// Admin represents an administrator account. Username and email are
// lowercased before storage so uniqueness is case-insensitive.
type Admin struct {
	ID            uint       `gorm:"primaryKey;column:admin_id" json:"id"`
	Username      string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email         string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Org           string     `gorm:"size:255" json:"org"`
	WeeklyReports bool       `gorm:"not null;default:true" json:"weekly_reports"`
	PasswordHash  []byte     `gorm:"not null" json:"-"`
	PasswordSalt  []byte     `gorm:"not null" json:"-"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	Title         string     `gorm:"size:128" json:"title"`
	Phone         string     `gorm:"size:32" json:"phone"`
	Location      string     `gorm:"size:128" json:"location"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Admin model.
func (Admin) TableName() string {
	return "admins"
}
