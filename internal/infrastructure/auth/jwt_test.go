package auth

import (
	"testing"
	"time"

	"github.com/erp/billing/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "billing-test",
	})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, expiresAt, err := svc.Issue(userID, "ravi")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ravi", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Hour,
		Issuer:                "billing-test",
	})
	token, _, err := svc.Issue(uuid.New(), "")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	svc := newTestJWTService()

	sign := func(t *testing.T, claims *Claims, secret string) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() *Claims {
		now := time.Now()
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "billing-test",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			UserID:    uuid.New().String(),
			TokenType: TokenTypeAccess,
		}
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  error
	}{
		{"garbage", func(*testing.T) string { return "not-a-token" }, ErrInvalidToken},
		{"wrong secret", func(t *testing.T) string { return sign(t, valid(), "another-secret-of-sufficient-size") }, ErrInvalidToken},
		{"wrong issuer", func(t *testing.T) string {
			c := valid()
			c.Issuer = "someone-else"
			return sign(t, c, "test-secret-key-at-least-32-chars")
		}, ErrInvalidToken},
		{"refresh token", func(t *testing.T) string {
			c := valid()
			c.TokenType = "refresh"
			return sign(t, c, "test-secret-key-at-least-32-chars")
		}, ErrInvalidTokenType},
		{"missing user", func(t *testing.T) string {
			c := valid()
			c.UserID = ""
			return sign(t, c, "test-secret-key-at-least-32-chars")
		}, ErrMissingUserID},
		{"malformed user", func(t *testing.T) string {
			c := valid()
			c.UserID = "42"
			return sign(t, c, "test-secret-key-at-least-32-chars")
		}, ErrInvalidClaims},
		{"not yet valid", func(t *testing.T) string {
			c := valid()
			c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
			return sign(t, c, "test-secret-key-at-least-32-chars")
		}, ErrTokenNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token(t))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{UserID: uuid.New().String(), TokenType: TokenTypeAccess}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
