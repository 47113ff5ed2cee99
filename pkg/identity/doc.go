// Package identity provides the authenticated identity of API requests.
//
// An Identity combines Keycloak token claims (username, identity source,
// user guid, client id) with request-specific context such as the client IP.
//
// # Basic Usage
//
//	// Create identity from verified claims
//	id := identity.FromClaims(claims).WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
// The identity says who the caller is according to Keycloak. Whether the
// caller is a registered system user, and which roles they hold, is decided
// by the authz package.
package identity
