package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/cryptox"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

type AdminService struct {
	Store store.Store
}

// ListUsers returns user profiles for the admin console, newest first.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	users, err := s.Store.Users().ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

// VerifyLawyer approves a lawyer application: the profile goes live in
// listings, the owning account is promoted to the LAWYER role, and the
// applicant is notified. All three commit atomically.
func (s *AdminService) VerifyLawyer(ctx context.Context, lawyerID string) (domain.Lawyer, error) {
	var out domain.Lawyer

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		l, err := tx.Lawyers().GetLawyerByID(ctx, lawyerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if l.Verified {
			return ErrConflict
		}

		if err := tx.Lawyers().SetVerified(ctx, l.ID, true); err != nil {
			return err
		}
		if err := tx.Users().UpdateRole(ctx, l.UserID, string(jwtx.RoleLawyer)); err != nil {
			return err
		}

		l.Verified = true
		out = l
		return notify(ctx, tx, l.UserID, domain.NotifyLawyerVerified,
			fmt.Sprintf("Your lawyer profile (%s) has been verified", l.BarCouncilID))
	})
	if err != nil {
		return domain.Lawyer{}, err
	}

	slogx.FromContext(ctx).Info("lawyer verified", "lawyer_id", out.ID, "user_id", out.UserID)
	return out, nil
}

// ResetPassword replaces a user's credential with a generated temporary
// password and returns it. The plaintext is shown once in the response and
// never stored.
func (s *AdminService) ResetPassword(ctx context.Context, userID string) (string, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return "", err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := s.Store.Users().UpdatePassword(ctx, u.ID, hash); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("password reset", "user_id", u.ID)
	return password, nil
}

// Stats assembles the dashboard snapshot.
func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	var err error

	if stats.Users, err = s.Store.Users().CountUsers(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Lawyers, stats.VerifiedLawyers, err = s.Store.Lawyers().CountLawyers(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Bookings, stats.PendingBookings, stats.CompletedBookings, err = s.Store.Bookings().CountBookings(ctx); err != nil {
		return domain.Stats{}, err
	}
	if stats.Reviews, err = s.Store.Reviews().CountReviews(ctx); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
