package jwtx

import "errors"

// Role is the authorization role carried in the "role" claim. It is part of
// the token contract between the issuer and every verifying service, which
// is why it lives next to the claims rather than in the domain layer.
type Role string

const (
	RoleUser   Role = "USER"
	RoleLawyer Role = "LAWYER"
	RoleAdmin  Role = "ADMIN"
)

// ErrUnknownRole reports a role claim outside the known set. A token with
// an absent or unknown role is rejected outright, never defaulted.
var ErrUnknownRole = errors.New("jwtx: unknown role")

// ParseRole maps a raw claim value onto the role enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleLawyer, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
