package objectstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// DownloadPath is the route that redeems signed tokens.
const DownloadPath = "/api/attachments/download"

const tokenIssuer = "restoration-tracker"

// ErrInvalidToken is returned for expired, tampered or malformed download tokens.
var ErrInvalidToken = errors.New("invalid download token")

type downloadClaims struct {
	FileName string `json:"name"`
	jwt.RegisteredClaims
}

// Signer issues short-lived HS256 tokens granting download of one object.
type Signer struct {
	secret  []byte
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

// NewSigner creates a signer. baseURL is prefixed to DownloadPath.
func NewSigner(secret string, ttl time.Duration, baseURL string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signed url secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("signed url ttl must be positive, got %s", ttl)
	}
	return &Signer{
		secret:  []byte(secret),
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Sign returns a download URL for key.
func (s *Signer) Sign(key, fileName string) (model.SignedURL, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		FileName: fileName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   key,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return model.SignedURL{}, err
	}
	return model.SignedURL{
		URL:       s.baseURL + DownloadPath + "?token=" + url.QueryEscape(signed),
		ExpiresAt: expires.UTC().Truncate(time.Second),
	}, nil
}

// Verify checks a token and returns the object key and file name it grants.
func (s *Signer) Verify(token string) (key, fileName string, err error) {
	claims := &downloadClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, claims.FileName, nil
}
