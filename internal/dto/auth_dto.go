package dto

import (
	"time"
)

// RegisterUserRequest captures a user self-registration payload.
type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterAdminRequest captures an admin registration payload. Admin signup
// is gated behind the configured invite code.
type RegisterAdminRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=64"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Org           string `json:"org" validate:"required,max=255"`
	WeeklyReports bool   `json:"weekly_reports"`
	InviteCode    string `json:"invite_code"`
}

// RegisterResponse reports the identifier assigned to a new account.
type RegisterResponse struct {
	ID   uint   `json:"id"`
	Kind string `json:"kind"`
}

// LoginRequest carries a username-or-email identifier plus password.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication. Code carries the
// legacy procedure status (0 on success) for callers that still key off it.
type LoginResponse struct {
	Code      int        `json:"code"`
	ID        uint       `json:"id"`
	Role      string     `json:"role"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Org       string     `json:"org,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// IdentifyResponse reports which account table an identifier resolves to.
type IdentifyResponse struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Org      string `json:"org,omitempty"`
}
