package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := GenerateToken(secret, 42, 2, TypeAccess, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(secret, TypeAccess, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, 2, claims.Role)
}

func TestParseToken_WrongType(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := GenerateToken(secret, 1, 1, "refresh", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, TypeAccess, tok)
	assert.Error(t, err)
}

func TestParseToken_WrongSecretOrExpired(t *testing.T) {
	tok, err := GenerateToken([]byte("a"), 1, 1, TypeAccess, time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte("b"), TypeAccess, tok)
	assert.Error(t, err)

	expired, err := GenerateToken([]byte("a"), 1, 1, TypeAccess, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken([]byte("a"), TypeAccess, expired)
	assert.Error(t, err)
}
