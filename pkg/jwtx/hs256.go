package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrShortSecret  = errors.New("jwtx: signing secret must be at least 32 bytes")
)

// MinSecretLen is the minimum accepted HMAC secret length. HS256 with a
// short secret is brute-forceable offline.
const MinSecretLen = 32

// Signer issues HS256 session tokens over a server-held secret.
type Signer struct {
	secret []byte
}

// NewSignerHS256 creates a signer. The secret is shared with the verifier
// and never leaves the process.
func NewSignerHS256(secret []byte) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrShortSecret
	}
	return &Signer{secret: secret}, nil
}

// Sign serializes the claims into a compact header.payload.signature token.
func (s *Signer) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verifier validates HS256 tokens and hands back the embedded Identity.
type Verifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
	now    func() time.Time
}

// NewVerifierHS256 creates a verifier. issuer is enforced when non-empty.
func NewVerifierHS256(secret []byte, issuer string) (*Verifier, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrShortSecret
	}
	return &Verifier{
		secret: secret,
		issuer: issuer,
		// Claims validation is done by hand below so expiry is strict
		// (invalid at exactly exp) instead of the library default.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Verify checks segment structure, signature, issuer and expiry, then
// returns the Identity. Every failure mode maps to one of the package
// sentinel errors; callers collapse them all to a single 401.
func (v *Verifier) Verify(token string) (Identity, error) {
	var claims Claims
	tok, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrMalformed
		default:
			return Identity{}, ErrMalformed
		}
	}
	if !tok.Valid {
		return Identity{}, ErrInvalidSig
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Identity{}, err
	}
	if err := claims.ValidateExpiryAt(v.now()); err != nil {
		return Identity{}, err
	}

	return claims.Identity()
}
