package store

import (
	"context"
	"errors"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and hands out transactions explicitly so callers can't nest them
// by accident.
type Store interface {
	Users() Users
	Lawyers() Lawyers
	Bookings() Bookings
	Reviews() Reviews
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. Email lookups are
	// case-insensitive; the store normalises on write.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateRole changes the user's role and bumps updated_at. Used when a
	// lawyer application is verified.
	UpdateRole(ctx context.Context, userID string, role string) error

	// UpdatePassword replaces the stored credential hash, for admin resets.
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error

	// ListUsers returns users newest first, for the admin console.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	CountUsers(ctx context.Context) (int64, error)
}

type Lawyers interface {
	// CreateLawyer inserts a lawyer application (unverified).
	CreateLawyer(ctx context.Context, l domain.Lawyer) error

	GetLawyerByID(ctx context.Context, id string) (domain.Lawyer, error)

	// GetLawyerByUserID returns the profile owned by a user account.
	GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error)

	// ListLawyers returns verified lawyers matching the filter, best rated
	// first. Unverified profiles never appear here.
	ListLawyers(ctx context.Context, f domain.LawyerFilter) ([]domain.Lawyer, error)

	// SetVerified flips the verified flag.
	SetVerified(ctx context.Context, lawyerID string, verified bool) error

	// UpdateRating recomputes the aggregate from the reviews table.
	UpdateRating(ctx context.Context, lawyerID string) error

	CountLawyers(ctx context.Context) (total int64, verified int64, err error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, b domain.Booking) error

	GetBookingByID(ctx context.Context, id string) (domain.Booking, error)

	// ListBookings returns bookings matching the filter, newest first.
	ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)

	// UpdateStatus sets the new status and bumps updated_at. It does not
	// validate the transition; the service layer does that.
	UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error

	// HasOverlap reports whether the lawyer already holds a PENDING or
	// CONFIRMED booking overlapping [startsAt, endsAt).
	HasOverlap(ctx context.Context, lawyerID string, startsAt, endsAt time.Time) (bool, error)

	// ExpirePendingBefore marks PENDING bookings whose start time has
	// passed as EXPIRED and returns them so callers can notify.
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)

	CountBookings(ctx context.Context) (total, pending, completed int64, err error)
}

type Reviews interface {
	// CreateReview inserts a review. The bookings.id unique constraint
	// surfaces as ErrAlreadyExists for a second review of the same booking.
	CreateReview(ctx context.Context, r domain.Review) error

	GetReviewByBookingID(ctx context.Context, bookingID string) (domain.Review, error)

	// ListReviewsForLawyer returns reviews newest first.
	ListReviewsForLawyer(ctx context.Context, lawyerID string, limit, offset int) ([]domain.Review, error)

	CountReviews(ctx context.Context) (int64, error)
}

type Notifications interface {
	CreateNotification(ctx context.Context, n domain.Notification) error

	// ListForUser returns the user's notifications newest first.
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)

	// MarkRead flips the read flag; scoped by user so one user can't touch
	// another's notifications.
	MarkRead(ctx context.Context, userID, notificationID string) error

	// ListUnsent returns undispatched notifications oldest first, for the
	// dispatcher worker.
	ListUnsent(ctx context.Context, limit int) ([]domain.Notification, error)

	// MarkSent stamps sent_at after successful dispatch.
	MarkSent(ctx context.Context, notificationID string, at time.Time) error

	// PurgeRead deletes read notifications created before the cutoff.
	PurgeRead(ctx context.Context, cutoff time.Time) (int64, error)
}
