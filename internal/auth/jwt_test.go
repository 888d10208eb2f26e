package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTSignVerifyRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	u := User{ID: "u-123", Name: "Ada", Email: "ada@example.com", Picture: "https://example.com/a.png"}
	token, err := j.Sign(u)
	require.NoError(t, err)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "https://example.com/a.png", claims.Picture)
}

func TestJWTVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-one").Sign(User{ID: "u-123"})
	require.NoError(t, err)

	_, err = NewJWT("secret-two").Verify(token)
	assert.Error(t, err)
}

func TestJWTVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWT("secret").Verify("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, ComparePassword(hash, "correct horse battery staple"))
	assert.False(t, ComparePassword(hash, "wrong"))
}
