package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-for-auth-package"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("secret123")
	require.NoError(t, err)
	h2, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(42, "Jane Doe", "https://example.com/avatar.png", testSecret, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, BearerPrefix))

	claims, err := VerifyToken(token, testSecret)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "https://example.com/avatar.png", claims.Avatar)
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyToken_WithoutPrefix(t *testing.T) {
	token, err := IssueToken(7, "Bob", "", testSecret, time.Hour)
	require.NoError(t, err)

	raw := strings.TrimPrefix(token, BearerPrefix)
	claims, err := VerifyToken(raw, testSecret)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(1, "Eve", "", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(token, "a-different-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := IssueToken(1, "Old", "", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := VerifyToken("Bearer not.a.jwt", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken(1, "X", "", "", time.Hour)
	assert.Error(t, err)
}

func TestTokenJTIsAreUnique(t *testing.T) {
	t1, err := IssueToken(1, "A", "", testSecret, time.Hour)
	require.NoError(t, err)
	t2, err := IssueToken(1, "A", "", testSecret, time.Hour)
	require.NoError(t, err)

	c1, err := VerifyToken(t1, testSecret)
	require.NoError(t, err)
	c2, err := VerifyToken(t2, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}
