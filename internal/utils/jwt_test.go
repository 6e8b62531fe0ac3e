package utils

import (
	"testing"
	"time"

	"eventflow/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	account := &domain.UserAccount{ID: "user-1", Email: "ana@example.com"}

	token, err := GenerateJWT(account, testSecret, time.Hour)
	require.NoError(t, err)

	sess, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{UserID: "user-1", Email: "ana@example.com"}, sess)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(&domain.UserAccount{ID: "user-1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_Expired(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_RejectsUnsignedTokens(t *testing.T) {
	claims := Claims{UserID: "user-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
