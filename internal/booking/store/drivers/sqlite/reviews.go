package sqlite

import (
	"context"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
)

type reviewsRepo struct {
	q querier
}

const reviewColumns = `id, booking_id, user_id, lawyer_id, rating, comment, created_at`

func scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(&rv.ID, &rv.BookingID, &rv.UserID, &rv.LawyerID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}

func (r *reviewsRepo) CreateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO reviews (id, booking_id, user_id, lawyer_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rv.ID, rv.BookingID, rv.UserID, rv.LawyerID, rv.Rating, rv.Comment, time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *reviewsRepo) GetReviewByBookingID(ctx context.Context, bookingID string) (domain.Review, error) {
	rv, err := scanReview(r.q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE booking_id = ?`, bookingID))
	if err != nil {
		return domain.Review{}, mapNotFound(err)
	}
	return rv, nil
}

func (r *reviewsRepo) ListReviewsForLawyer(ctx context.Context, lawyerID string, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE lawyer_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		lawyerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *reviewsRepo) CountReviews(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count)
	return count, err
}
