package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"shoponline/internal/auth"
	"shoponline/internal/platform/metrics"
)

type googleStub struct {
	claims *auth.GoogleClaims
	err    error
}

func (g *googleStub) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (g *googleStub) Exchange(ctx context.Context, code string) (*auth.GoogleClaims, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.claims, nil
}

func newOAuthHandler(google googleAuthenticator) (*OAuthHandler, *auth.Service) {
	authService := auth.NewService(auth.NewInMemoryRepository(), 24*time.Hour)
	handler := NewOAuthHandler(google, authService, "http://localhost:3000", "development", 24*time.Hour, metrics.NoopRecorder{}, newDiscardLogger())
	return handler, authService
}

func stateCookieAndParam(t *testing.T, rec *httptest.ResponseRecorder) (*http.Cookie, string) {
	t.Helper()

	var stateCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == oauthStateCookieName {
			stateCookie = cookie
		}
	}
	if stateCookie == nil {
		t.Fatal("expected oauth state cookie to be set")
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parsing redirect location: %v", err)
	}
	return stateCookie, location.Query().Get("state")
}

func TestInitiateGoogleSetsStateCookie(t *testing.T) {
	handler, _ := newOAuthHandler(&googleStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	handler.InitiateGoogle(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", rec.Code)
	}

	cookie, stateParam := stateCookieAndParam(t, rec)
	if cookie.Value == "" {
		t.Fatal("state cookie is empty")
	}
	if !cookie.HttpOnly {
		t.Error("state cookie should be HttpOnly")
	}

	// The state parameter embeds the cookie value.
	stateBytes, err := base64.RawURLEncoding.DecodeString(stateParam)
	if err != nil {
		t.Fatalf("decoding state param: %v", err)
	}
	var payload oauthStatePayload
	if err := json.Unmarshal(stateBytes, &payload); err != nil {
		t.Fatalf("unmarshaling state payload: %v", err)
	}
	if payload.State != cookie.Value {
		t.Error("state payload does not match cookie value")
	}
}

func TestCallbackGoogleHappyPath(t *testing.T) {
	stub := &googleStub{claims: &auth.GoogleClaims{
		Sub:           "google-sub-1",
		Email:         "oauth@example.com",
		EmailVerified: true,
		Name:          "OAuth User",
	}}
	handler, authService := newOAuthHandler(stub)

	initReq := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	initRec := httptest.NewRecorder()
	handler.InitiateGoogle(initRec, initReq)
	cookie, stateParam := stateCookieAndParam(t, initRec)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=authcode&state="+url.QueryEscape(stateParam), nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.CallbackGoogle(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", rec.Code)
	}
	if strings.Contains(rec.Header().Get("Location"), "error=") {
		t.Fatalf("unexpected error redirect: %s", rec.Header().Get("Location"))
	}

	var sessionToken string
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			sessionToken = c.Value
		}
	}
	if sessionToken == "" {
		t.Fatal("expected session cookie to be set")
	}

	user, err := authService.ValidateSession(context.Background(), sessionToken)
	if err != nil {
		t.Fatalf("session should be valid: %v", err)
	}
	if user.Email != "oauth@example.com" {
		t.Fatalf("unexpected user email %q", user.Email)
	}
}

func TestCallbackGoogleStateMismatch(t *testing.T) {
	handler, _ := newOAuthHandler(&googleStub{})

	initReq := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	initRec := httptest.NewRecorder()
	handler.InitiateGoogle(initRec, initReq)
	cookie, _ := stateCookieAndParam(t, initRec)

	// Forge a state that does not match the cookie.
	forged, _ := json.Marshal(oauthStatePayload{State: "forged"})
	forgedParam := base64.RawURLEncoding.EncodeToString(forged)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=authcode&state="+url.QueryEscape(forgedParam), nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.CallbackGoogle(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "error=invalid_state") {
		t.Fatalf("expected invalid_state error redirect, got %s", rec.Header().Get("Location"))
	}
}

func TestCallbackGoogleMissingCookie(t *testing.T) {
	handler, _ := newOAuthHandler(&googleStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=authcode&state=whatever", nil)
	rec := httptest.NewRecorder()
	handler.CallbackGoogle(rec, req)

	if !strings.Contains(rec.Header().Get("Location"), "error=invalid_state") {
		t.Fatalf("expected invalid_state error redirect, got %s", rec.Header().Get("Location"))
	}
}

func TestCallbackGoogleUnverifiedEmail(t *testing.T) {
	stub := &googleStub{claims: &auth.GoogleClaims{
		Sub:   "google-sub-2",
		Email: "unverified@example.com",
	}}
	handler, _ := newOAuthHandler(stub)

	initReq := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	initRec := httptest.NewRecorder()
	handler.InitiateGoogle(initRec, initReq)
	cookie, stateParam := stateCookieAndParam(t, initRec)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=authcode&state="+url.QueryEscape(stateParam), nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.CallbackGoogle(rec, req)

	if !strings.Contains(rec.Header().Get("Location"), "error=email_not_verified") {
		t.Fatalf("expected email_not_verified redirect, got %s", rec.Header().Get("Location"))
	}
}

func TestIsValidRedirectPath(t *testing.T) {
	valid := []string{"/", "/products", "/cart?from=nav"}
	for _, path := range valid {
		if !isValidRedirectPath(path) {
			t.Errorf("expected %q to be valid", path)
		}
	}

	invalid := []string{"", "//evil.com", "https://evil.com", "/%2f%2fevil.com", "javascript:alert(1)"}
	for _, path := range invalid {
		if isValidRedirectPath(path) {
			t.Errorf("expected %q to be invalid", path)
		}
	}
}
