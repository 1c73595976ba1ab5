package cryptox_test

import (
	"testing"

	"github.com/nyaybooker/nyaybooker/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "correct horse", "hash must not embed the plaintext")

	require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	require.Error(t, cryptox.VerifyPassword("correct horse battery stable", hash))
	require.Error(t, cryptox.VerifyPassword("", hash))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "two hashes of the same password must differ by salt")
}

func TestVerifyGarbageHash(t *testing.T) {
	require.Error(t, cryptox.VerifyPassword("whatever", "not-a-bcrypt-hash"))
}

func TestGeneratePassword(t *testing.T) {
	p, err := cryptox.GeneratePassword()
	require.NoError(t, err)
	require.Len(t, p, 12)

	q, err := cryptox.GeneratePassword()
	require.NoError(t, err)
	require.NotEqual(t, p, q)
}
