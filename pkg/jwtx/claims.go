package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. Sessions
// are invalidated by expiry only; there is no revocation list.
const DefaultSessionTTL = 24 * time.Hour

// Claims are the session-token claims. Additive changes only, to keep
// older tokens verifying across deploys.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the subject's authorization role (USER, LAWYER, ADMIN).
	Role string `json:"role,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a login session.
func NewSessionClaims(subject string, role Role, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: string(role),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer matches the expected value.
// An empty expectation enforces nothing.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryAt enforces the validity window at the given instant.
// A token is invalid at exactly exp: the window is [iat, exp).
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// Identity is the authenticated principal derived from a verified token.
// Downstream code trusts it read-only; it is never mutated after issue.
type Identity struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity converts verified claims into an Identity. It fails if the
// subject is empty or the role claim is absent or unknown.
func (c *Claims) Identity() (Identity, error) {
	if c.Subject == "" {
		return Identity{}, ErrInvalidClaim
	}
	role, err := ParseRole(c.Role)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{Subject: c.Subject, Role: role}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
