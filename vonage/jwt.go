package vonage

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenMinter produces a bearer credential for one API call
type TokenMinter interface {
	Token() (string, error)
}

// TokenSource mints short-lived RS256 application JWTs
type TokenSource struct {
	applicationID string
	key           *rsa.PrivateKey
	ttl           time.Duration
	now           func() time.Time
}

// NewTokenSource parses the application's PEM private key
func NewTokenSource(applicationID, privateKeyPEM string, ttl time.Duration) (*TokenSource, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("%w: missing application id", ErrAuth)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %w", ErrAuth, err)
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenSource{
		applicationID: applicationID,
		key:           key,
		ttl:           ttl,
		now:           time.Now,
	}, nil
}

// Token mints a fresh JWT; each call gets its own jti
func (s *TokenSource) Token() (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"application_id": s.applicationID,
		"iat":            now.Unix(),
		"nbf":            now.Unix(),
		"exp":            now.Add(s.ttl).Unix(),
		"jti":            uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", ErrAuth, err)
	}
	return signed, nil
}
