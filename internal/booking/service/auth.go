package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/cryptox"
	"github.com/nyaybooker/nyaybooker/pkg/idx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

const minPasswordLen = 8

type AuthService struct {
	Store      store.Store
	Signer     *jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

type RegisterParams struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Register creates a USER account and returns a fresh session. Lawyer and
// admin roles are never self-assigned: lawyers go through the application
// flow and admins are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.Session, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Session{}, invalid("invalid email address")
	}
	if len(p.Password) < minPasswordLen {
		return domain.Session{}, invalid("password must be at least 8 characters")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return domain.Session{}, invalid("full name is required")
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Session{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		FullName:     strings.TrimSpace(p.FullName),
		Phone:        strings.TrimSpace(p.Phone),
		PasswordHash: hash,
		Role:         jwtx.RoleUser,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Session{}, ErrEmailTaken
		}
		return domain.Session{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)
	return s.issueSession(u)
}

// Login verifies the credentials and returns a session. Unknown email and
// wrong password collapse into the same error so the endpoint can't be used
// to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}

	slogx.FromContext(ctx).Info("user logged in", "user_id", u.ID)
	return s.issueSession(u)
}

// Me returns the profile behind an authenticated subject.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.Profile, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrNotFound
		}
		return domain.Profile{}, err
	}
	return u.Profile(), nil
}

func (s *AuthService) issueSession(u domain.User) (domain.Session, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(u.ID, u.Role, ttl, s.Issuer, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        u.Profile(),
	}, nil
}
