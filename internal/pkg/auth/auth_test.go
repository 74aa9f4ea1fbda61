package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})

	token, expiresIn, err := svc.GenerateToken("fac-1", "f@x.edu", RoleFaculty)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "fac-1", claims.SubjectID)
	assert.Equal(t, RoleFaculty, claims.Role)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	expired := NewJWTService(JWTConfig{SecretKey: "secret", AccessTokenExp: -time.Minute})
	token, _, err := expired.GenerateToken("s1", "s@x.edu", RoleStudent)
	require.NoError(t, err)
	_, err = expired.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	a := NewJWTService(JWTConfig{SecretKey: "a", AccessTokenExp: time.Hour})
	b := NewJWTService(JWTConfig{SecretKey: "b", AccessTokenExp: time.Hour})
	token, _, err = a.GenerateToken("s1", "s@x.edu", RoleStudent)
	require.NoError(t, err)
	_, err = b.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTempPasswordHashes(t *testing.T) {
	pw, err := GenerateTempPassword(12)
	require.NoError(t, err)
	assert.Len(t, pw, 12)

	hash, err := HashPassword(pw)
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, pw))
	assert.False(t, CheckPassword(hash, pw+"x"))
}
