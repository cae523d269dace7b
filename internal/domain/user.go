package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// User is an account on the site. The password hash and reset-token fields
// never serialize into responses.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	PasswordChangedAt *time.Time `json:"-"`
	ResetTokenHash    string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	Active            bool       `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Tokens issued before a password change are dead.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=80"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// UpdateSelfRequest is the allow-list for self-service profile updates.
// Password changes go through the dedicated endpoint.
type UpdateSelfRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=80"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UpdateUserRequest is the admin-only patch; it may also move a user between
// roles or flip the active flag.
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=80"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Role   *Role   `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool   `json:"active"`
}
