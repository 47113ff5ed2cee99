// Package middleware holds the HTTP middleware shared by every API route.
package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
	"github.com/bcgov/restoration-tracker/pkg/authenticator"
	"github.com/bcgov/restoration-tracker/pkg/identity"
)

// Authentication is middleware that verifies bearer tokens and stores the
// caller's identity on the request context.
type Authentication struct {
	Authenticator authenticator.Authenticator

	// TrustedProxy reports whether X-Forwarded-For from ip is honoured.
	TrustedProxy func(ip string) bool

	publicPaths    map[string]bool
	publicPrefixes []string
}

// NewAuthentication creates the authentication middleware.
func NewAuthentication(a authenticator.Authenticator, trustedProxy func(string) bool) *Authentication {
	return &Authentication{
		Authenticator: a,
		TrustedProxy:  trustedProxy,
		publicPaths:   map[string]bool{},
	}
}

// Public marks paths that skip authentication. A path ending in "/" is a
// prefix.
func (m *Authentication) Public(paths ...string) *Authentication {
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			m.publicPrefixes = append(m.publicPrefixes, p)
			continue
		}
		m.publicPaths[p] = true
	}
	return m
}

// IsPublic reports whether path skips authentication.
func (m *Authentication) IsPublic(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	for _, prefix := range m.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (m *Authentication) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := authenticator.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			apierror.Write(w, apierror.Unauthorized("Access Denied", err.Error()))
			return
		}

		id, err := m.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			zap.L().Debug("token rejected",
				zap.String("authenticator", m.Authenticator.Name()),
				zap.Error(err),
			)
			if errors.Is(err, authenticator.ErrMissingToken) {
				apierror.Write(w, apierror.Unauthorized("Access Denied", err.Error()))
				return
			}
			apierror.Write(w, apierror.Unauthorized("Access Denied", "access token is invalid"))
			return
		}

		id.WithRemoteIP(ClientIP(r, m.TrustedProxy))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// ClientIP returns the address of the caller. X-Forwarded-For is walked
// from the right while the hop is a trusted proxy.
func ClientIP(r *http.Request, trustedProxy func(string) bool) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	remote := net.ParseIP(host)

	if trustedProxy == nil || remote == nil || !trustedProxy(remote.String()) {
		return remote
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return remote
	}

	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		remote = ip
		if !trustedProxy(ip.String()) {
			break
		}
	}
	return remote
}
