package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	m := NewJWTManager("test-secret", "canvas-ai-api")

	token, err := m.GenerateToken(42, "member", "access", time.Minute)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "canvas-ai-api", claims.Issuer)
}

func TestGenerateTokenPair(t *testing.T) {
	m := NewJWTManager("test-secret", "canvas-ai-api")

	pair, err := m.GenerateTokenPair(7, "admin", time.Minute, time.Hour)
	require.NoError(t, err)

	access, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", access.Type)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
	assert.Equal(t, int64(7), refresh.UserID)
}

func TestParseExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "canvas-ai-api")

	token, err := m.GenerateToken(1, "member", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseTokenWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", "canvas-ai-api")
	other := NewJWTManager("another-secret", "canvas-ai-api")

	token, err := m.GenerateToken(1, "member", "access", time.Minute)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
