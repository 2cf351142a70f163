package dto

import (
	"time"

	"github.com/regdocgpt/regdocgpt-api/internal/models"
)

// ProfileResponse is the normalized profile shape shared by users and admins.
type ProfileResponse struct {
	ID            uint       `json:"id"`
	Role          string     `json:"role"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Org           string     `json:"org,omitempty"`
	Title         string     `json:"title,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Location      string     `json:"location,omitempty"`
	WeeklyReports bool       `json:"weekly_reports"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// NewUserProfileResponse normalizes a user row.
func NewUserProfileResponse(user models.User) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID,
		Role:      string(models.AccountUser),
		Username:  user.Username,
		Email:     user.Email,
		Title:     user.Title,
		Phone:     user.Phone,
		Location:  user.Location,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	}
}

// NewAdminProfileResponse normalizes an admin row.
func NewAdminProfileResponse(admin models.Admin) ProfileResponse {
	return ProfileResponse{
		ID:            admin.ID,
		Role:          string(models.AccountAdmin),
		Username:      admin.Username,
		Email:         admin.Email,
		Org:           admin.Org,
		Title:         admin.Title,
		Phone:         admin.Phone,
		Location:      admin.Location,
		WeeklyReports: admin.WeeklyReports,
		IsActive:      admin.IsActive,
		CreatedAt:     admin.CreatedAt,
		LastLogin:     admin.LastLogin,
	}
}

// ProfileUpdateRequest captures partial profile updates. Nil fields are left
// untouched.
type ProfileUpdateRequest struct {
	Username      *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Org           *string `json:"org" validate:"omitempty,max=255"`
	Title         *string `json:"title" validate:"omitempty,max=128"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	Location      *string `json:"location" validate:"omitempty,max=128"`
	WeeklyReports *bool   `json:"weekly_reports"`
}

// ChangePasswordRequest verifies the current password before replacing it.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
