package jwtx

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestPair(t *testing.T, issuer string) (*Signer, *Verifier) {
	t.Helper()

	signer, err := NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(testSecret, issuer)
	require.NoError(t, err)
	return signer, verifier
}

func TestSignVerifyRoundTrip(t *testing.T) {
	signer, verifier := newTestPair(t, "nyaybooker")
	now := time.Now().UTC()

	for _, role := range []Role{RoleUser, RoleLawyer, RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			token, err := signer.Sign(NewSessionClaims("subject-1", role, time.Hour, "nyaybooker", now))
			require.NoError(t, err)
			require.Len(t, strings.Split(token, "."), 3, "compact token has three segments")

			id, err := verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "subject-1", id.Subject)
			require.Equal(t, role, id.Role)
			require.WithinDuration(t, now.Add(time.Hour), id.ExpiresAt, time.Second)
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	signer, verifier := newTestPair(t, "")
	issued := time.Now().UTC().Add(-2 * time.Hour)

	token, err := signer.Sign(NewSessionClaims("subject-1", RoleUser, time.Hour, "", issued))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	signer, verifier := newTestPair(t, "")
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	token, err := signer.Sign(NewSessionClaims("subject-1", RoleUser, time.Hour, "", issued))
	require.NoError(t, err)

	t.Run("one second before exp is valid", func(t *testing.T) {
		verifier.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
		_, err := verifier.Verify(token)
		require.NoError(t, err)
	})

	t.Run("exactly at exp is invalid", func(t *testing.T) {
		verifier.now = func() time.Time { return issued.Add(time.Hour) }
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestVerifyTampered(t *testing.T) {
	signer, verifier := newTestPair(t, "")
	token, err := signer.Sign(NewSessionClaims("subject-1", RoleUser, time.Hour, "", time.Now().UTC()))
	require.NoError(t, err)

	t.Run("payload swap breaks signature", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := NewSessionClaims("subject-1", RoleAdmin, time.Hour, "", time.Now().UTC())
		otherSigner, err := NewSignerHS256([]byte("another-secret-another-secret-32"))
		require.NoError(t, err)
		forgedToken, err := otherSigner.Sign(forged)
		require.NoError(t, err)
		forgedParts := strings.Split(forgedToken, ".")

		_, err = verifier.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("signature bytes flipped", func(t *testing.T) {
		parts := strings.Split(token, ".")
		sig, decErr := base64.RawURLEncoding.DecodeString(parts[2])
		require.NoError(t, decErr)
		sig[0] ^= 0xff
		_, err := verifier.Verify(parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(sig))
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage never panics", func(t *testing.T) {
		for _, raw := range []string{"", "a", "a.b", "a.b.c", "....", token + "."} {
			_, err := verifier.Verify(raw)
			require.Error(t, err)
		}
	})
}

func TestVerifyIssuerMismatch(t *testing.T) {
	signer, verifier := newTestPair(t, "nyaybooker")
	token, err := signer.Sign(NewSessionClaims("subject-1", RoleUser, time.Hour, "someone-else", time.Now().UTC()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyMissingRole(t *testing.T) {
	signer, verifier := newTestPair(t, "")

	claims := NewSessionClaims("subject-1", RoleUser, time.Hour, "", time.Now().UTC())
	claims.Role = ""
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrUnknownRole, "absent role is rejected, not defaulted")

	claims.Role = "SUPERUSER"
	token, err = signer.Sign(claims)
	require.NoError(t, err)
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestShortSecretRejected(t *testing.T) {
	_, err := NewSignerHS256([]byte("short"))
	require.ErrorIs(t, err, ErrShortSecret)
	_, err = NewVerifierHS256([]byte("short"), "")
	require.ErrorIs(t, err, ErrShortSecret)
}

func TestParseRole(t *testing.T) {
	for _, ok := range []string{"USER", "LAWYER", "ADMIN"} {
		r, err := ParseRole(ok)
		require.NoError(t, err)
		require.True(t, r.Valid())
	}
	for _, bad := range []string{"", "user", "ROOT"} {
		_, err := ParseRole(bad)
		require.ErrorIs(t, err, ErrUnknownRole)
	}
}
