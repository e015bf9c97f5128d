// internal/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndCompareHash(t *testing.T) {
	hash, err := CreateHash("hunter2", Params)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	match, err := ComparePasswordAndHash("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = ComparePasswordAndHash("wrong", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := CreateHash("same", Params)
	require.NoError(t, err)
	h2, err := CreateHash("same", Params)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	_, err := ComparePasswordAndHash("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = ComparePasswordAndHash("x", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestJWTRoundTrip(t *testing.T) {
	require.NoError(t, Init())

	token, err := CreateJWT("1b671a64-40d5-491e-99b0-da01ff1f3341")
	require.NoError(t, err)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "1b671a64-40d5-491e-99b0-da01ff1f3341", sub)
}

func TestJWTRejectsGarbage(t *testing.T) {
	require.NoError(t, Init())
	_, err := AuthenticateJWT("not.a.token")
	assert.Error(t, err)
}
