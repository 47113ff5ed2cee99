package keycloak

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// maxJWKSBytes bounds the realm key document.
const maxJWKSBytes = 1 << 20

// jsonWebKey is the subset of RFC 7517 fields Keycloak publishes for its
// realm signing keys.
type jsonWebKey struct {
	KeyID     string `json:"kid"`
	KeyType   string `json:"kty"`
	Use       string `json:"use"`
	Algorithm string `json:"alg"`
	Modulus   string `json:"n"`
	Exponent  string `json:"e"`
}

// publicKey decodes the RSA modulus and exponent.
func (k jsonWebKey) publicKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.Modulus)
	if err != nil {
		return nil, fmt.Errorf("key %s: modulus: %w", k.KeyID, err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.Exponent)
	if err != nil {
		return nil, fmt.Errorf("key %s: exponent: %w", k.KeyID, err)
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("key %s: unsupported exponent", k.KeyID)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}

// keySet holds the realm's RSA signing keys by kid. Keycloak also publishes
// encryption keys (use "enc"); those are skipped.
type keySet struct {
	uri    string
	ttl    time.Duration
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newKeySet(uri string, ttl time.Duration, client *http.Client) *keySet {
	return &keySet{uri: uri, ttl: ttl, client: client, keys: map[string]*rsa.PublicKey{}}
}

// stale reports whether the keys are older than the TTL.
func (ks *keySet) stale() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return time.Since(ks.fetchedAt) > ks.ttl
}

func (ks *keySet) lookup(kid string) (*rsa.PublicKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.keys[kid]
	return key, ok
}

// get returns the key for kid, fetching the key set when it is stale or
// does not know kid, which is how realm key rotation is picked up.
func (ks *keySet) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if !ks.stale() {
		if key, ok := ks.lookup(kid); ok {
			return key, nil
		}
	}
	if err := ks.fetch(ctx); err != nil {
		return nil, err
	}
	if key, ok := ks.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("signing key %q is not published by the realm", kid)
}

// fetch downloads the key set and replaces the cached keys.
func (ks *keySet) fetch(ctx context.Context) error {
	if ks.uri == "" {
		return errors.New("no JWKS URI configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.uri, nil)
	if err != nil {
		return fmt.Errorf("failed to build JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch JWKS: status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&doc); err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys, err := signingKeys(doc.Keys)
	if err != nil {
		return err
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.fetchedAt = time.Now()
	ks.mu.Unlock()
	return nil
}

// signingKeys keeps the RSA signature keys. A malformed key is an error
// only when no usable key remains.
func signingKeys(jwks []jsonWebKey) (map[string]*rsa.PublicKey, error) {
	keys := make(map[string]*rsa.PublicKey, len(jwks))
	var errs []error
	for _, k := range jwks {
		if k.KeyType != "RSA" || (k.Use != "" && k.Use != "sig") || k.KeyID == "" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys[k.KeyID] = pub
	}
	if len(keys) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("no usable signing keys in JWKS: %w", errors.Join(errs...))
		}
		return nil, errors.New("no usable signing keys in JWKS")
	}
	return keys, nil
}
