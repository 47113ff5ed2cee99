// Package authenticator defines how API requests are authenticated.
//
// Every protected request carries a Keycloak-issued bearer token in the
// Authorization header. An Authenticator verifies the token and returns the
// caller's identity:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, token string) (*identity.Identity, error)
//	    Status(ctx context.Context) error
//	}
//
// The Keycloak implementation lives in [github.com/bcgov/restoration-tracker/pkg/authenticator/keycloak].
package authenticator
