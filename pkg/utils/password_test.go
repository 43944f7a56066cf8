package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_RoundTrip(t *testing.T) {
	encoded, err := HashSecret("987412374123")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(encoded))
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=3,p=2$"))

	ok, err := VerifySecret("987412374123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySecret("987412374124", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSecret_Salted(t *testing.T) {
	a, err := HashSecret("same")
	require.NoError(t, err)
	b, err := HashSecret("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifySecret_InvalidHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$2a$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$AAAA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNo",
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNo",
		"$argon2id$v=19$m=8,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNo",
		"$argon2id$v=19$m=4294967295,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNo",
	} {
		_, err := VerifySecret("x", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}

func TestIsArgon2Hash(t *testing.T) {
	assert.False(t, IsArgon2Hash("$2a$10$abc"))
	assert.False(t, IsArgon2Hash(""))
}
