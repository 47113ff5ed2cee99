package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcgov/restoration-tracker/pkg/identity"
)

type fakeAuthenticator struct {
	tokens map[string]*identity.Identity
}

func (f *fakeAuthenticator) Name() string { return "fake" }

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*identity.Identity, error) {
	if id, ok := f.tokens[token]; ok {
		copied := *id
		return &copied, nil
	}
	return nil, errors.New("signature is invalid")
}

func (f *fakeAuthenticator) Status(context.Context) error { return nil }

func newTestAuthentication() *Authentication {
	a := &fakeAuthenticator{tokens: map[string]*identity.Identity{
		"good": {UserIdentifier: "jdoe", IdentitySource: "IDIR", UserGUID: "ABC123"},
	}}
	return NewAuthentication(a, func(ip string) bool { return ip == "10.0.0.1" }).
		Public("/api/codes", "/api/public/")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMiddleware_MissingAuthorization(t *testing.T) {
	handler := newTestAuthentication().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/user/self", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "HTTP401", body["name"])
}

func TestMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	handler := newTestAuthentication().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"random string", "something"},
		{"empty bearer", "Bearer "},
		{"unknown token", "Bearer forged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/user/self", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	var got *identity.Identity
	handler := newTestAuthentication().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.Get(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("GET", "/api/user/self", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "jdoe", got.UserIdentifier)
	assert.Equal(t, "192.0.2.10", got.ClientIP())
}

func TestMiddleware_PublicRoutesSkipAuthentication(t *testing.T) {
	called := 0
	handler := newTestAuthentication().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		_, ok := identity.Get(r.Context())
		assert.False(t, ok)
	}))

	for _, path := range []string{"/api/codes", "/api/public/project/list", "/api/public/search"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, 3, called)
}

func TestClientIP(t *testing.T) {
	trusted := func(ip string) bool { return ip == "10.0.0.1" || ip == "10.0.0.2" }

	tests := []struct {
		name      string
		remote    string
		forwarded string
		expected  string
	}{
		{"direct", "192.0.2.1:1234", "", "192.0.2.1"},
		{"untrusted proxy ignored", "192.0.2.1:1234", "203.0.113.9", "192.0.2.1"},
		{"trusted proxy", "10.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"chain of trusted proxies", "10.0.0.1:1234", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"spoofed leftmost entry", "10.0.0.1:1234", "1.1.1.1, 203.0.113.9", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, ClientIP(req, trusted).String())
		})
	}
}
