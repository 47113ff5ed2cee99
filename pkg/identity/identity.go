package identity

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated caller of a request.
// It combines Keycloak token claims with request-specific context.
type Identity struct {
	// Token claims
	Subject        string
	Username       string // preferred_username, e.g. "jdoe@idir"
	UserIdentifier string // "jdoe"
	IdentitySource string // "IDIR", "BCEIDBASIC", ...
	UserGUID       string
	Email          string
	DisplayName    string
	GivenName      string
	FamilyName     string
	ClientID       string // azp
	IssuedAt       time.Time
	ExpiresAt      time.Time

	// Request context
	RemoteIP net.IP
}

// FromClaims builds an Identity from verified token claims.
func FromClaims(claims jwt.MapClaims) *Identity {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}

	id := &Identity{
		Subject:     str("sub"),
		Username:    str("preferred_username"),
		Email:       strings.ToLower(str("email")),
		DisplayName: str("display_name"),
		GivenName:   str("given_name"),
		FamilyName:  str("family_name"),
		ClientID:    str("azp"),
	}

	identifier, source := SplitUsername(id.Username)
	id.UserIdentifier = identifier
	id.IdentitySource = source
	if provider := str("identity_provider"); provider != "" {
		id.IdentitySource = strings.ToUpper(provider)
	}

	switch {
	case str("idir_user_guid") != "":
		id.UserGUID = str("idir_user_guid")
	case str("bceid_user_guid") != "":
		id.UserGUID = str("bceid_user_guid")
	default:
		// Keycloak usernames of the form "<guid>@<source>" carry the guid.
		id.UserGUID = identifier
	}
	if username := str("idir_username"); username != "" {
		id.UserIdentifier = strings.ToLower(username)
	} else if username := str("bceid_username"); username != "" {
		id.UserIdentifier = strings.ToLower(username)
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}

	if id.DisplayName == "" {
		id.DisplayName = strings.TrimSpace(id.GivenName + " " + id.FamilyName)
	}

	return id
}

// SplitUsername splits "identifier@source" into a lower-cased identifier and
// an upper-cased source.
func SplitUsername(username string) (string, string) {
	i := strings.LastIndex(username, "@")
	if i < 0 {
		return strings.ToLower(username), ""
	}
	return strings.ToLower(username[:i]), strings.ToUpper(username[i+1:])
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// ClientIP returns the remote IP as a string, or "" when unknown.
func (i *Identity) ClientIP() string {
	if i == nil || i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
