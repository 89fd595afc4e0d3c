package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessToken(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("desktop")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Positive(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "desktop", decoded.Subject())
	tokenType, _ := decoded.Get("type")
	assert.Equal(t, "access", tokenType)
}

func TestJWTService_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "soon")
	_, _, err := svc.GenerateAccessToken("desktop")
	assert.Error(t, err)
}

func TestJWTService_StreamToken(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, expiresIn, err := svc.GenerateStreamToken("desktop")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	subject, err := svc.ValidateStreamToken(token)
	require.NoError(t, err)
	assert.Equal(t, "desktop", subject)

	access, _, err := svc.GenerateAccessToken("desktop")
	require.NoError(t, err)
	_, err = svc.ValidateStreamToken(access)
	assert.Error(t, err, "access tokens are not stream tokens")

	other := NewJWTService("another-secret", "1h")
	_, err = other.ValidateStreamToken(token)
	assert.Error(t, err)
}
