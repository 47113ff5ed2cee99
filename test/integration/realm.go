package integration

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	realmIssuer   = "https://sso.example.com/auth/realms/restoration"
	realmAudience = "restoration-tracker"
	realmKeyID    = "integration-key-1"
)

// Realm stands in for Keycloak: it publishes a JWKS and signs access tokens
// for IDIR users.
type Realm struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

func NewRealm() (*Realm, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	r := &Realm{key: key}

	jwks, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]interface{}{{
			"kty": "RSA",
			"kid": realmKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	if err != nil {
		return nil, err
	}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jwks)
	}))
	return r, nil
}

// JWKSURI is the URL of the published signing keys.
func (r *Realm) JWKSURI() string {
	return r.server.URL
}

// GUID derives a stable IDIR guid from a username.
func GUID(username string) string {
	return strings.ToUpper(fmt.Sprintf("%x", []byte(username)))
}

// Token signs an IDIR access token for username.
func (r *Realm) Token(username string) (string, error) {
	guid := GUID(username)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":                realmIssuer,
		"aud":                realmAudience,
		"azp":                realmAudience,
		"sub":                guid,
		"preferred_username": strings.ToLower(guid) + "@idir",
		"idir_user_guid":     guid,
		"idir_username":      strings.ToUpper(username),
		"identity_provider":  "idir",
		"email":              username + "@gov.bc.ca",
		"display_name":       username,
		"iat":                time.Now().Unix(),
		"exp":                time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = realmKeyID
	return token.SignedString(r.key)
}

func (r *Realm) Close() {
	r.server.Close()
}
