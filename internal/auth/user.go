package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidState is returned when an OAuth callback carries a missing,
// expired, or mismatched anti-forgery state token.
var ErrInvalidState = errors.New("invalid oauth state")

// ErrProvider wraps failures talking to the identity provider.
var ErrProvider = errors.New("identity provider error")

// ErrSessionNotFound is returned when a session token is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when a session exists but is past its expiry.
var ErrSessionExpired = errors.New("session expired")

// ErrInvalidCredentials is returned on a failed password login. Unknown email
// and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when signing up with an already registered email.
var ErrEmailTaken = errors.New("email already registered")

// ErrWeakPassword is returned when a password fails the minimum length check.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// User represents a shop customer. A user holds either a password hash, an
// OAuth identity, or both (an OAuth login onto an existing email links them).
type User struct {
	ID              uuid.UUID
	Email           string
	Name            string
	AvatarURL       string
	PasswordHash    string
	OAuthProvider   string
	OAuthProviderID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastLoginAt     time.Time
}

// Session represents an authenticated user session. Expiry is absolute; a
// successful validation does not extend it.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	UserAgent string
	IPAddress string
}

// GoogleClaims contains the relevant claims from a Google ID token.
type GoogleClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
