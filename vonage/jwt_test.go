package vonage

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestTokenSourceMintsFreshTokens(t *testing.T) {
	key, pemKey := generateKey(t)
	ts, err := NewTokenSource("app-123", pemKey, 5*time.Minute)
	require.NoError(t, err)

	first, err := ts.Token()
	require.NoError(t, err)
	second, err := ts.Token()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	parsed, err := jwt.Parse(first, func(tok *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "app-123", claims["application_id"])
	assert.NotEmpty(t, claims["jti"])

	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, exp.Sub(iat.Time))
}

func TestNewTokenSourceErrors(t *testing.T) {
	_, pemKey := generateKey(t)

	_, err := NewTokenSource("", pemKey, time.Minute)
	assert.ErrorIs(t, err, ErrAuth)

	_, err = NewTokenSource("app-123", "not a key", time.Minute)
	assert.ErrorIs(t, err, ErrAuth)
}
