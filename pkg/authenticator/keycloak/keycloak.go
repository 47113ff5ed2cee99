// Package keycloak verifies Keycloak access tokens against the realm JWKS.
package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bcgov/restoration-tracker/pkg/authenticator"
	"github.com/bcgov/restoration-tracker/pkg/identity"
)

var _ authenticator.Authenticator = (*Authenticator)(nil)

// DefaultCacheTTL is how long fetched signing keys are trusted before refresh
const DefaultCacheTTL = 5 * time.Minute

// Config holds Keycloak verification settings
type Config struct {
	// Issuer is the expected iss claim (the realm URL)
	Issuer string

	// JWKSURI is where the realm publishes its signing keys
	JWKSURI string

	// Audience is the expected aud claim (optional)
	Audience string

	// CacheTTL overrides DefaultCacheTTL
	CacheTTL time.Duration

	// HTTPClient overrides the default client with a 10s timeout
	HTTPClient *http.Client
}

// Authenticator verifies RS256/384/512 access tokens issued by one realm.
type Authenticator struct {
	parser *jwt.Parser
	keys   *keySet
}

func New(config Config) *Authenticator {
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &Authenticator{
		parser: jwt.NewParser(opts...),
		keys:   newKeySet(config.JWKSURI, ttl, client),
	}
}

func (a *Authenticator) Name() string {
	return "keycloak"
}

// Authenticate verifies the token signature, expiry, issuer and audience and
// returns the caller's identity.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*identity.Identity, error) {
	if tokenString == "" {
		return nil, authenticator.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return a.keys.get(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	return identity.FromClaims(claims), nil
}

// Status fetches the realm keys, failing when the realm is unreachable.
func (a *Authenticator) Status(ctx context.Context) error {
	return a.keys.fetch(ctx)
}
