package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("acct_owner", "admin", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "acct_owner", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, jwtIssuer, claims.Issuer)
}

func TestValidateJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT("acct_owner", "", 1)
	require.NoError(t, err)

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	SetJWTSecret("test-secret")
	expired, err := GenerateJWT("acct_owner", "", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)
}

func TestValidateJWTRequiresSubject(t *testing.T) {
	SetJWTSecret("test-secret")

	_, err := GenerateJWT("", "", 1)
	assert.Error(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.Error(t, err)
}
