package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(testSecret, 42, "tienda@example.com")
	require.NoError(t, err)

	claims, err := ParseJWT(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MerchantID)
	assert.Equal(t, "tienda@example.com", claims.Email)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(testSecret, 42, "tienda@example.com")
	require.NoError(t, err)

	_, err = ParseJWT("another-secret", token)
	assert.Error(t, err)
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT("", 42, "tienda@example.com")
	assert.Error(t, err)
}
