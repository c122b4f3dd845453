package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)

	token, err := tm.CreateToken(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestCheckTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)
	other := NewTokenManager("another-secret", 1)

	token, err := tm.CreateToken(42, "alice")
	require.NoError(t, err)

	_, err = other.CheckToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -1)

	token, err := tm.CreateToken(42, "alice")
	require.NoError(t, err)

	_, err = tm.CheckToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 1)

	_, err := tm.CheckToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
