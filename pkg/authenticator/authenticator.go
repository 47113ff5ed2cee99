package authenticator

import (
	"context"
	"errors"
	"strings"

	"github.com/bcgov/restoration-tracker/pkg/identity"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token
	ErrMissingToken = errors.New("access token is missing")

	// ErrMalformedHeader is returned for an Authorization header that is not "Bearer <token>"
	ErrMalformedHeader = errors.New("malformed authorization header")
)

// Authenticator verifies bearer tokens
type Authenticator interface {
	// Name returns the authenticator name
	Name() string

	// Authenticate verifies a raw token and returns the caller's identity
	Authenticate(ctx context.Context, token string) (*identity.Identity, error)

	// Status checks if the authenticator can verify tokens
	Status(ctx context.Context) error
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
