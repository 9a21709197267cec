package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shoponline/internal/auth"
	"shoponline/internal/platform/metrics"
)

func postJSON(ts *testServer, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestSignUpIssuesSession(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := postJSON(ts, "/api/auth/signup", `{"email":"new@example.com","password":"password123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected session cookie after signup")
	}

	// The cookie authenticates subsequent requests.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	me := httptest.NewRecorder()
	ts.handler.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /me, got %d", me.Code)
	}

	var user struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(me.Body.Bytes(), &user); err != nil {
		t.Fatalf("decoding user: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("unexpected email %q", user.Email)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	ts := newTestServer(t, nil)

	if rec := postJSON(ts, "/api/auth/signup", `{"email":"dup@example.com","password":"password123"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: expected 201, got %d", rec.Code)
	}
	rec := postJSON(ts, "/api/auth/signup", `{"email":"dup@example.com","password":"password456"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second signup: expected 409, got %d", rec.Code)
	}
}

func TestSignUpValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"password123"}`},
		{"invalid email", `{"email":"not-an-email","password":"password123"}`},
		{"short password", `{"email":"ok@example.com","password":"short"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(ts, "/api/auth/signup", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestLogIn(t *testing.T) {
	ts := newTestServer(t, nil)
	postJSON(ts, "/api/auth/signup", `{"email":"login@example.com","password":"password123"}`)

	rec := postJSON(ts, "/api/auth/login", `{"email":"login@example.com","password":"password123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(ts, "/api/auth/login", `{"email":"login@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}

	rec = postJSON(ts, "/api/auth/login", `{"email":"nobody@example.com","password":"password123"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", rec.Code)
	}
}

func TestLogOutIsIdempotent(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.sessionCookieFor(t, "logout@example.com")

	rec := postJSON(ts, "/api/auth/logout", "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first logout: expected 204, got %d", rec.Code)
	}

	// Replaying the logout with the dead cookie still succeeds.
	rec = postJSON(ts, "/api/auth/logout", "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("second logout: expected 204, got %d", rec.Code)
	}

	// The session no longer authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	ts.handler.ServeHTTP(me, req)
	if me.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", me.Code)
	}
}

func TestUpdatePassword(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.sessionCookieFor(t, "pw@example.com")

	req := httptest.NewRequest(http.MethodPut, "/api/auth/password", bytes.NewBufferString(`{"currentPassword":"password123","newPassword":"newpassword456"}`))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Old password stops working, new one logs in.
	if rec := postJSON(ts, "/api/auth/login", `{"email":"pw@example.com","password":"password123"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password: expected 401, got %d", rec.Code)
	}
	if rec := postJSON(ts, "/api/auth/login", `{"email":"pw@example.com","password":"newpassword456"}`); rec.Code != http.StatusOK {
		t.Fatalf("new password: expected 200, got %d", rec.Code)
	}
}

// failingSessionRepo accepts account writes but cannot persist sessions.
type failingSessionRepo struct {
	*auth.InMemoryRepository
}

func (r *failingSessionRepo) CreateSession(context.Context, auth.Session, string) error {
	return errors.New("session store unavailable")
}

func TestSignUpFailsWhenSessionCannotBeIssued(t *testing.T) {
	repo := &failingSessionRepo{auth.NewInMemoryRepository()}
	authService := auth.NewService(repo, time.Hour)
	handler := NewAccountHandler(authService, "development", time.Hour, metrics.NoopRecorder{}, newDiscardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(`{"email":"amy@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.SignUp(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no cookies when no session was created, got %d", len(cookies))
	}
}

func TestLogInFailsWhenSessionCannotBeIssued(t *testing.T) {
	repo := &failingSessionRepo{auth.NewInMemoryRepository()}
	authService := auth.NewService(repo, time.Hour)
	if _, err := authService.SignUp(context.Background(), "amy@example.com", "password123"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	handler := NewAccountHandler(authService, "development", time.Hour, metrics.NoopRecorder{}, newDiscardLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"amy@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.LogIn(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no cookies when no session was created, got %d", len(cookies))
	}
}

func TestDeleteAccount(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := postJSON(ts, "/api/auth/signup", `{"email":"gone@example.com","password":"password123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie after signup")
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	del := httptest.NewRecorder()
	ts.handler.ServeHTTP(del, req)
	if del.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d: %s", del.Code, del.Body.String())
	}

	// The session died with the account.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(sessionCookie)
	me := httptest.NewRecorder()
	ts.handler.ServeHTTP(me, req)
	if me.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 after deletion, got %d", me.Code)
	}

	// The email is free for a new account.
	rec = postJSON(ts, "/api/auth/signup", `{"email":"gone@example.com","password":"password123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 re-registering a deleted email, got %d", rec.Code)
	}
}
