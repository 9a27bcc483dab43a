package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "two hashes of the same password must differ")

	for _, h := range []string{h1, h2} {
		ok, err := CheckPassword("secret1", h)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestCheckPasswordMismatch(t *testing.T) {
	h, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := CheckPassword("wrong", h)
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, ok)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	ok, err := CheckPassword("secret1", "not-a-bcrypt-hash")
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestHashPasswordClampsCost(t *testing.T) {
	h, err := HashPassword("secret1", 99)
	require.NoError(t, err)

	ok, err := CheckPassword("secret1", h)
	require.NoError(t, err)
	assert.True(t, ok)
}
