package domain

import (
	"time"

	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
)

type User struct {
	ID           string
	Email        string
	FullName     string
	Phone        string
	PasswordHash string // bcrypt encoded
	Role         jwtx.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the client-facing view of a user, without the credential.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      jwtx.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
