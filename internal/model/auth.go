package model

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller, resolved once per request from the
// bearer token.
type Identity struct {
	UserID    uuid.UUID
	Role      Role
	ProfileID uuid.UUID
	TokenID   string
	ExpiresAt time.Time
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User    *User
	Profile Profile
	Token   string
}
