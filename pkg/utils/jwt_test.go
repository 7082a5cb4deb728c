package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "desk-shared-secret"

// signToken 模拟桌面壳层签发令牌
func signToken(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func freshClaims(issuer string) Claims {
	return Claims{
		UserID: "desk-user-01",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestParseTokenValid(t *testing.T) {
	m := NewJWTManager(testSecret, "deskmate-ai")
	token := signToken(t, jwt.SigningMethodHS256, freshClaims("deskmate-ai"))

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "desk-user-01", claims.UserID)
}

func TestParseTokenExpired(t *testing.T) {
	m := NewJWTManager(testSecret, "")
	expired := freshClaims("")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := m.ParseToken(signToken(t, jwt.SigningMethodHS256, expired))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseTokenRejectsBadSignature(t *testing.T) {
	m := NewJWTManager("another-secret", "")
	_, err := m.ParseToken(signToken(t, jwt.SigningMethodHS256, freshClaims("")))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// 只接受 HS256，其余算法即便同属 HMAC 也拒绝。
func TestParseTokenRejectsOtherMethods(t *testing.T) {
	m := NewJWTManager(testSecret, "")
	_, err := m.ParseToken(signToken(t, jwt.SigningMethodHS384, freshClaims("")))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenIssuer(t *testing.T) {
	t.Run("issuer mismatch rejected", func(t *testing.T) {
		m := NewJWTManager(testSecret, "deskmate-ai")
		_, err := m.ParseToken(signToken(t, jwt.SigningMethodHS256, freshClaims("someone-else")))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("issuer not enforced when unset", func(t *testing.T) {
		m := NewJWTManager(testSecret, "")
		_, err := m.ParseToken(signToken(t, jwt.SigningMethodHS256, freshClaims("someone-else")))
		assert.NoError(t, err)
	})
}

func TestParseTokenGarbage(t *testing.T) {
	m := NewJWTManager(testSecret, "")
	_, err := m.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
