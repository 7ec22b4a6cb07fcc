package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJWT_RejectsShortSecret(t *testing.T) {
	assert.Error(t, ConfigureJWT("short", time.Hour))
}

func TestGenerateAndValidateToken(t *testing.T) {
	require.NoError(t, ConfigureJWT("test-secret-long-enough-123", time.Hour))

	token, expiresAt, err := GenerateAccessToken(42, "Awa", "server")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "server", claims.Role)
	assert.Equal(t, "Awa", claims.Username)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	require.NoError(t, ConfigureJWT("first-secret-long-enough-1", time.Hour))
	token, _, err := GenerateAccessToken(1, "a", "admin")
	require.NoError(t, err)

	require.NoError(t, ConfigureJWT("second-secret-long-enough-2", time.Hour))
	_, err = ValidateToken(token)
	assert.Error(t, err)
}
