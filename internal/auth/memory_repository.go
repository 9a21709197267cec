package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository keeps users and sessions in process memory. It backs the
// memory data store used for local development and tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	sessions map[string]Session // keyed by token hash
}

// NewInMemoryRepository constructs an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:    make(map[uuid.UUID]User),
		sessions: make(map[string]Session),
	}
}

// FindUserByOAuth looks up a user by OAuth provider and provider ID.
func (r *InMemoryRepository) FindUserByOAuth(_ context.Context, provider, providerID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.OAuthProvider == provider && u.OAuthProviderID == providerID {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// FindUserByEmail looks up a user by email.
func (r *InMemoryRepository) FindUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// FindUserByID looks up a user by primary key.
func (r *InMemoryRepository) FindUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	out := u
	return &out, nil
}

// CreateUser stores a new user, rejecting duplicate emails.
func (r *InMemoryRepository) CreateUser(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return User{}, ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return user, nil
}

// UpdateUserLogin refreshes profile data and the last login timestamp.
func (r *InMemoryRepository) UpdateUserLogin(_ context.Context, id uuid.UUID, name, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	now := time.Now()
	u.Name = name
	u.AvatarURL = avatarURL
	u.LastLoginAt = now
	u.UpdatedAt = now
	r.users[id] = u
	return nil
}

// LinkOAuthIdentity attaches an OAuth identity to an existing account.
func (r *InMemoryRepository) LinkOAuthIdentity(_ context.Context, id uuid.UUID, provider, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.OAuthProvider = provider
	u.OAuthProviderID = providerID
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *InMemoryRepository) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

// DeleteUser removes a user together with any sessions bound to it.
func (r *InMemoryRepository) DeleteUser(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	for hash, session := range r.sessions {
		if session.UserID == id {
			delete(r.sessions, hash)
		}
	}
	return nil
}

// CreateSession stores a session keyed by token hash.
func (r *InMemoryRepository) CreateSession(_ context.Context, session Session, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[tokenHash] = session
	return nil
}

// FindSessionByTokenHash returns the session and its user, or nils when unknown.
func (r *InMemoryRepository) FindSessionByTokenHash(_ context.Context, tokenHash string) (*Session, *User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, nil, nil
	}
	user, ok := r.users[session.UserID]
	if !ok {
		return nil, nil, nil
	}
	sessionCopy := session
	userCopy := user
	return &sessionCopy, &userCopy, nil
}

// DeleteSession removes a session by ID.
func (r *InMemoryRepository) DeleteSession(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, hash)
			break
		}
	}
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
func (r *InMemoryRepository) DeleteExpiredSessions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var removed int64
	for hash, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
