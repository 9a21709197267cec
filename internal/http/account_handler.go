package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"shoponline/internal/auth"
	"shoponline/internal/platform/metrics"
)

// AccountHandler exposes password signup/login and session endpoints.
type AccountHandler struct {
	authService  *auth.Service
	validate     *validator.Validate
	metrics      metrics.Recorder
	logger       *slog.Logger
	secureCookie bool
	sessionTTL   time.Duration
}

func NewAccountHandler(authService *auth.Service, env string, sessionTTL time.Duration, recorder metrics.Recorder, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		authService:  authService,
		validate:     validator.New(),
		metrics:      recorder,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		sessionTTL:   sessionTTL,
	}
}

type credentialsPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func toUserResponse(user *auth.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}

// SignUp handles POST /api/auth/signup.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	user, err := h.authService.SignUp(r.Context(), payload.Email, payload.Password)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	if err := h.issueSession(w, r, user); err != nil {
		h.logger.Error("session creation failed", "userId", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	h.metrics.RecordLogin("password")
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// LogIn handles POST /api/auth/login.
func (h *AccountHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	user, err := h.authService.LogIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	if err := h.issueSession(w, r, user); err != nil {
		h.logger.Error("session creation failed", "userId", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	h.metrics.RecordLogin("password")
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// LogOut handles POST /api/auth/logout. Logging out twice is not an error.
func (h *AccountHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger.Error("deleting session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me for the authenticated user.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updatePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UpdatePassword handles PUT /api/auth/password.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	var payload updatePasswordPayload
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "current password and a new password of at least 8 characters are required")
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/auth/me. The account, its sessions, cart,
// and order history are removed together.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		unauthorized(w)
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), user.ID); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) issueSession(w http.ResponseWriter, r *http.Request, user *auth.User) error {
	token, err := h.authService.CreateSession(r.Context(), user.ID, r.UserAgent(), clientIPFromRequest(r))
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	})
	return nil
}
