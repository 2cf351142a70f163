package models

import "time"

// AccountKind discriminates the two account tables.
type AccountKind string

const (
	AccountUser  AccountKind = "user"
	AccountAdmin AccountKind = "admin"
)

// Valid reports whether the kind names a known account table.
func (k AccountKind) Valid() bool {
	return k == AccountUser || k == AccountAdmin
}

// User represents an end-user account. Username and email uniqueness is
// byte-exact; values are stored as submitted.
type User struct {
	ID           uint       `gorm:"primaryKey;column:user_id" json:"id"`
	Username     string     `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash []byte     `gorm:"not null" json:"-"`
	PasswordSalt []byte     `gorm:"not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	Title        string     `gorm:"size:128" json:"title"`
	Phone        string     `gorm:"size:32" json:"phone"`
	Location     string     `gorm:"size:128" json:"location"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}
