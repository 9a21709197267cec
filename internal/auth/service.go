package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Service provides authentication business logic.
type Service struct {
	repo       Repository
	sessionTTL time.Duration
}

// NewService creates a new auth Service.
func NewService(repo Repository, sessionTTL time.Duration) *Service {
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
	}
}

// CreateOrUpdateUser finds an existing user by OAuth credentials or creates a
// new one. A Google login whose email matches an existing password account
// links the OAuth identity to that account instead of creating a duplicate.
func (s *Service) CreateOrUpdateUser(ctx context.Context, claims *GoogleClaims) (*User, error) {
	existing, err := s.repo.FindUserByOAuth(ctx, "google", claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if existing != nil {
		if err := s.repo.UpdateUserLogin(ctx, existing.ID, claims.Name, claims.Picture); err != nil {
			return nil, fmt.Errorf("update user login: %w", err)
		}
		existing.Name = claims.Name
		existing.AvatarURL = claims.Picture
		existing.LastLoginAt = time.Now()
		return existing, nil
	}

	byEmail, err := s.repo.FindUserByEmail(ctx, normalizeEmail(claims.Email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if byEmail != nil {
		if err := s.repo.LinkOAuthIdentity(ctx, byEmail.ID, "google", claims.Sub); err != nil {
			return nil, fmt.Errorf("link oauth identity: %w", err)
		}
		if err := s.repo.UpdateUserLogin(ctx, byEmail.ID, claims.Name, claims.Picture); err != nil {
			return nil, fmt.Errorf("update user login: %w", err)
		}
		byEmail.OAuthProvider = "google"
		byEmail.OAuthProviderID = claims.Sub
		byEmail.Name = claims.Name
		byEmail.AvatarURL = claims.Picture
		byEmail.LastLoginAt = time.Now()
		return byEmail, nil
	}

	now := time.Now()
	newUser := User{
		ID:              uuid.New(),
		Email:           normalizeEmail(claims.Email),
		Name:            claims.Name,
		AvatarURL:       claims.Picture,
		OAuthProvider:   "google",
		OAuthProviderID: claims.Sub,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     now,
	}

	created, err := s.repo.CreateUser(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &created, nil
}

// SignUp registers a new password account.
func (s *Service) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  now,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// LogIn authenticates a password account.
func (s *Service) LogIn(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.UpdateUserLogin(ctx, user.ID, user.Name, user.AvatarURL); err != nil {
		return nil, fmt.Errorf("update user login: %w", err)
	}
	user.LastLoginAt = time.Now()
	return user, nil
}

// UpdatePassword changes a user's password after verifying the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return ErrInvalidCredentials
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
			return ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePasswordHash(ctx, userID, string(hash))
}

// DeleteAccount removes the user and everything hanging off it: sessions,
// the cart, and order history.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteUser(ctx, userID)
}

// CreateSession creates a new session for the given user and returns the
// session token. The token is opaque; only its SHA-256 hash is stored.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, userAgent, ipAddress string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)
	tokenHash := hashToken(token)

	now := time.Now()
	session := Session{
		ID:        uuid.New(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UserAgent: truncateString(userAgent, 512),
		IPAddress: truncateString(ipAddress, 45),
	}

	if err := s.repo.CreateSession(ctx, session, tokenHash); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// ValidateSession checks if the token is valid and returns the associated
// user. An unknown token yields ErrSessionNotFound; a known but stale token
// yields ErrSessionExpired and the session row is removed.
func (s *Service) ValidateSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	tokenHash := hashToken(token)
	session, user, err := s.repo.FindSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	if session == nil || user == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, session.ID)
		return nil, ErrSessionExpired
	}

	return user, nil
}

// DeleteSession removes the session associated with the given token.
// Deleting an unknown or already deleted session is not an error.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := hashToken(token)
	session, _, err := s.repo.FindSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if session == nil {
		return nil
	}

	return s.repo.DeleteSession(ctx, session.ID)
}

// CleanupExpiredSessions removes all expired sessions from the store.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx)
}

// hashToken returns the SHA-256 hash of the token as a hex string.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// truncateString truncates a string to the given max length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
