package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/identity-service/internal/core/domain"
)

func newTestTokenService(t *testing.T, opts ...Option) *TokenService {
	t.Helper()
	s, err := NewTokenService("secret", "identity-service", opts...)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "identity-service")
	assert.ErrorIs(t, err, ErrMissingSigningKey)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	s := newTestTokenService(t)

	tok, err := s.Issue("u1", domain.RoleDriver)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleDriver, claims.Role)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestTokenService_PayloadFields(t *testing.T) {
	s := newTestTokenService(t)
	tok, err := s.Issue("u1", domain.RoleAdmin)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["userId"])
	assert.Equal(t, "admin", claims["role"])
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}

func TestTokenService_Verify_Expired(t *testing.T) {
	now := time.Now()
	s := newTestTokenService(t, WithClock(func() time.Time { return now }))

	tok, err := s.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	now = now.Add(TokenTTL + time.Second)
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_Verify_StillValidJustBeforeExpiry(t *testing.T) {
	now := time.Now()
	s := newTestTokenService(t, WithClock(func() time.Time { return now }))

	tok, err := s.Issue("u1", domain.RoleUser)
	require.NoError(t, err)

	now = now.Add(TokenTTL - time.Minute)
	_, err = s.Verify(tok)
	assert.NoError(t, err)
}

func TestTokenService_Verify_Rejections(t *testing.T) {
	s := newTestTokenService(t)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService("other-secret", "identity-service")
		require.NoError(t, err)
		tok, err := other.Issue("u1", domain.RoleUser)
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("expired token with wrong secret is invalid, not expired", func(t *testing.T) {
		past := time.Now().Add(-2 * TokenTTL)
		other, err := NewTokenService("other-secret", "identity-service", WithClock(func() time.Time { return past }))
		require.NoError(t, err)
		tok, err := other.Issue("u1", domain.RoleUser)
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"userId": "u1",
			"role":   "admin",
			"iss":    "identity-service",
			"exp":    time.Now().Add(time.Minute).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(unsigned)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"userId": "u1",
			"role":   "user",
			"iss":    "identity-service",
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"userId": "u1",
			"role":   "superuser",
			"iss":    "identity-service",
			"exp":    time.Now().Add(time.Minute).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other, err := NewTokenService("secret", "someone-else")
		require.NoError(t, err)
		tok, err := other.Issue("u1", domain.RoleUser)
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	})
}
