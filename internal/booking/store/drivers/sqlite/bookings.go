package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
)

type bookingsRepo struct {
	q querier
}

const bookingColumns = `id, user_id, lawyer_id, status, starts_at, ends_at, subject, notes, fee_cents, paid, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var status string
	err := row.Scan(&b.ID, &b.UserID, &b.LawyerID, &status, &b.StartsAt, &b.EndsAt,
		&b.Subject, &b.Notes, &b.FeeCents, &b.Paid, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *bookingsRepo) CreateBooking(ctx context.Context, b domain.Booking) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO bookings (id, user_id, lawyer_id, status, starts_at, ends_at, subject, notes, fee_cents, paid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.LawyerID, string(b.Status), b.StartsAt.UTC(), b.EndsAt.UTC(),
		b.Subject, b.Notes, b.FeeCents, b.Paid, now, now,
	)
	return mapConstraint(err)
}

func (r *bookingsRepo) GetBookingByID(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.q.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return domain.Booking{}, mapNotFound(err)
	}
	return b, nil
}

func (r *bookingsRepo) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.LawyerID != "" {
		conds = append(conds, "lawyer_id = ?")
		args = append(args, f.LawyerID)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingsRepo) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), bookingID,
	))
}

func (r *bookingsRepo) HasOverlap(ctx context.Context, lawyerID string, startsAt, endsAt time.Time) (bool, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE lawyer_id = ?
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND starts_at < ?
		  AND ends_at > ?`,
		lawyerID, endsAt.UTC(), startsAt.UTC(),
	).Scan(&count)
	return count > 0, err
}

func (r *bookingsRepo) ExpirePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = 'PENDING' AND starts_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	_, err = r.q.ExecContext(ctx,
		`UPDATE bookings SET status = 'EXPIRED', updated_at = ? WHERE status = 'PENDING' AND starts_at < ?`,
		time.Now().UTC(), cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}

	for i := range expired {
		expired[i].Status = domain.BookingExpired
	}
	return expired, nil
}

func (r *bookingsRepo) CountBookings(ctx context.Context) (total, pending, completed int64, err error) {
	err = r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'PENDING'), 0),
		       COALESCE(SUM(status = 'COMPLETED'), 0)
		FROM bookings`,
	).Scan(&total, &pending, &completed)
	return total, pending, completed, err
}
