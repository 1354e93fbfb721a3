package user

import (
	"time"

	"textok-auth/internal/token"
)

// User is an account row. OAuth2-created accounts start as placeholders:
// Nickname stays empty until the profile-completion step.
type User struct {
	ID            int64
	Email         string
	Username      string
	Nickname      string
	Password      string // bcrypt hash; empty for OAuth2 placeholder accounts
	Role          token.Role
	DateOfBirth   *time.Time
	Gender        string
	ProfileImgURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Completed reports whether the account ever finished registration.
func (u *User) Completed() bool {
	return u.Nickname != ""
}
