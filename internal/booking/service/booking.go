package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/idx"
	"github.com/nyaybooker/nyaybooker/pkg/jwtx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

const (
	minBookingDuration = 30 * time.Minute
	maxBookingDuration = 4 * time.Hour
)

type BookingService struct {
	Store store.Store
}

type BookParams struct {
	UserID   string
	LawyerID string
	StartsAt time.Time
	EndsAt   time.Time
	Subject  string
	Notes    string
}

// Book creates a PENDING booking against a verified lawyer. The slot must
// lie in the future and must not overlap another active booking for the
// same lawyer. The booking and the lawyer's notification commit atomically.
func (s *BookingService) Book(ctx context.Context, p BookParams) (domain.Booking, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(p.Subject) == "" {
		return domain.Booking{}, invalid("subject is required")
	}
	if !p.StartsAt.After(now) {
		return domain.Booking{}, invalid("booking must start in the future")
	}
	if d := p.EndsAt.Sub(p.StartsAt); d < minBookingDuration || d > maxBookingDuration {
		return domain.Booking{}, invalid("booking duration must be between 30 minutes and 4 hours")
	}

	l, err := s.Store.Lawyers().GetLawyerByID(ctx, p.LawyerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Booking{}, ErrNotFound
		}
		return domain.Booking{}, err
	}
	if !l.Verified {
		return domain.Booking{}, ErrLawyerNotVerified
	}
	if l.UserID == p.UserID {
		return domain.Booking{}, invalid("cannot book a consultation with yourself")
	}

	b := domain.Booking{
		ID:       idx.New().String(),
		UserID:   p.UserID,
		LawyerID: l.ID,
		Status:   domain.BookingPending,
		StartsAt: p.StartsAt.UTC(),
		EndsAt:   p.EndsAt.UTC(),
		Subject:  strings.TrimSpace(p.Subject),
		Notes:    strings.TrimSpace(p.Notes),
		// Fee snapshot at booking time; later fee changes don't reprice it.
		// Payment itself is settled out-of-band, so paid starts false.
		FeeCents: l.FeePerHour * int64(p.EndsAt.Sub(p.StartsAt)) / int64(time.Hour),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		overlap, err := tx.Bookings().HasOverlap(ctx, l.ID, b.StartsAt, b.EndsAt)
		if err != nil {
			return err
		}
		if overlap {
			return ErrSlotTaken
		}
		if err := tx.Bookings().CreateBooking(ctx, b); err != nil {
			return err
		}
		return notify(ctx, tx, l.UserID, domain.NotifyBookingCreated,
			fmt.Sprintf("New booking request %q on %s", b.Subject, b.StartsAt.Format(time.RFC1123)))
	})
	if err != nil {
		return domain.Booking{}, err
	}

	slogx.FromContext(ctx).Info("booking created",
		"booking_id", b.ID, "user_id", b.UserID, "lawyer_id", b.LawyerID)
	return b, nil
}

// ListForCaller returns the caller's bookings: a client sees bookings they
// made, a lawyer sees bookings made against their profile, an admin sees
// everything.
func (s *BookingService) ListForCaller(ctx context.Context, id jwtx.Identity, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	f := domain.BookingFilter{Status: status, Limit: limit, Offset: offset}

	switch id.Role {
	case jwtx.RoleAdmin:
		// unscoped
	case jwtx.RoleLawyer:
		l, err := s.Store.Lawyers().GetLawyerByUserID(ctx, id.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// A LAWYER token without a profile sees their own client bookings.
				f.UserID = id.Subject
				break
			}
			return nil, err
		}
		f.LawyerID = l.ID
	default:
		f.UserID = id.Subject
	}

	return s.Store.Bookings().ListBookings(ctx, f)
}

// Cancel moves a booking to CANCELLED. Only the booking client or the
// booked lawyer may cancel, and only from PENDING or CONFIRMED.
func (s *BookingService) Cancel(ctx context.Context, id jwtx.Identity, bookingID string) (domain.Booking, error) {
	return s.transition(ctx, id, bookingID, domain.BookingCancelled)
}

// SetStatus applies a lawyer-driven status change: CONFIRMED, REJECTED or
// COMPLETED. Clients cannot drive these transitions.
func (s *BookingService) SetStatus(ctx context.Context, id jwtx.Identity, bookingID string, status domain.BookingStatus) (domain.Booking, error) {
	switch status {
	case domain.BookingConfirmed, domain.BookingRejected, domain.BookingCompleted:
	default:
		return domain.Booking{}, invalid("status must be CONFIRMED, REJECTED or COMPLETED")
	}
	return s.transition(ctx, id, bookingID, status)
}

func (s *BookingService) transition(ctx context.Context, id jwtx.Identity, bookingID string, to domain.BookingStatus) (domain.Booking, error) {
	var out domain.Booking

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.Bookings().GetBookingByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		l, err := tx.Lawyers().GetLawyerByID(ctx, b.LawyerID)
		if err != nil {
			return err
		}

		if err := authorizeTransition(id, b, l, to); err != nil {
			return err
		}
		if !b.Status.CanTransition(to) {
			return ErrBadTransition
		}

		if err := tx.Bookings().UpdateStatus(ctx, b.ID, to); err != nil {
			return err
		}
		b.Status = to
		out = b

		kind, recipient := transitionNotification(id, b, l, to)
		return notify(ctx, tx, recipient, kind,
			fmt.Sprintf("Booking %q is now %s", b.Subject, to))
	})
	if err != nil {
		return domain.Booking{}, err
	}

	slogx.FromContext(ctx).Info("booking status changed", "booking_id", out.ID, "status", out.Status)
	return out, nil
}

// authorizeTransition decides who may drive which transition. Cancellation
// is open to both parties; confirm/reject/complete belong to the lawyer.
// Admins can drive anything.
func authorizeTransition(id jwtx.Identity, b domain.Booking, l domain.Lawyer, to domain.BookingStatus) error {
	if id.Role == jwtx.RoleAdmin {
		return nil
	}

	isClient := b.UserID == id.Subject
	isLawyer := l.UserID == id.Subject

	if to == domain.BookingCancelled {
		if isClient || isLawyer {
			return nil
		}
		return ErrForbidden
	}
	if isLawyer {
		return nil
	}
	if isClient {
		return ErrForbidden
	}
	// Strangers learn nothing about the booking's existence.
	return ErrNotFound
}

// transitionNotification picks who hears about the change: the party that
// didn't drive it.
func transitionNotification(id jwtx.Identity, b domain.Booking, l domain.Lawyer, to domain.BookingStatus) (domain.NotificationKind, string) {
	var kind domain.NotificationKind
	switch to {
	case domain.BookingConfirmed:
		kind = domain.NotifyBookingConfirmed
	case domain.BookingRejected:
		kind = domain.NotifyBookingRejected
	case domain.BookingCompleted:
		kind = domain.NotifyBookingCompleted
	default:
		kind = domain.NotifyBookingCancelled
	}

	recipient := b.UserID
	if id.Subject == b.UserID {
		recipient = l.UserID
	}
	return kind, recipient
}

func notify(ctx context.Context, tx store.Tx, userID string, kind domain.NotificationKind, body string) error {
	return tx.Notifications().CreateNotification(ctx, domain.Notification{
		ID:     idx.New().String(),
		UserID: userID,
		Kind:   kind,
		Body:   body,
	})
}
