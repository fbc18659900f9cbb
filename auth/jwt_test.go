package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	token, err := svc.GenerateToken(7, "reception1", "RECEPTIONIST")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "reception1", claims.Username)
	assert.Equal(t, "RECEPTIONIST", claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, time.Hour, svc.Expiry())
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService(testSecret, -time.Minute)

	token, err := svc.GenerateToken(1, "admin", "SYSTEM_ADMIN")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, IsExpired(err))
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewService(testSecret, time.Hour).GenerateToken(1, "admin", "SYSTEM_ADMIN")
	require.NoError(t, err)

	_, err = NewService("another-secret", time.Hour).ValidateToken(token)
	require.Error(t, err)
	assert.False(t, IsExpired(err))
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewService(testSecret, time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
