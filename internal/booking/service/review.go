package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/idx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

type ReviewService struct {
	Store store.Store
}

type ReviewParams struct {
	UserID    string
	BookingID string
	Rating    int
	Comment   string
}

// Review rates a completed booking. Only the booking's client may review,
// only after completion, and only once; the review and the lawyer's rating
// aggregate commit atomically.
func (s *ReviewService) Review(ctx context.Context, p ReviewParams) (domain.Review, error) {
	if p.Rating < 1 || p.Rating > 5 {
		return domain.Review{}, invalid("rating must be between 1 and 5")
	}

	var out domain.Review
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.Bookings().GetBookingByID(ctx, p.BookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if b.UserID != p.UserID {
			return ErrNotFound
		}
		if b.Status != domain.BookingCompleted {
			return ErrNotReviewable
		}

		out = domain.Review{
			ID:        idx.New().String(),
			BookingID: b.ID,
			UserID:    p.UserID,
			LawyerID:  b.LawyerID,
			Rating:    p.Rating,
			Comment:   strings.TrimSpace(p.Comment),
		}
		if err := tx.Reviews().CreateReview(ctx, out); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyReviewed
			}
			return err
		}

		return tx.Lawyers().UpdateRating(ctx, b.LawyerID)
	})
	if err != nil {
		return domain.Review{}, err
	}

	slogx.FromContext(ctx).Info("review submitted",
		"review_id", out.ID, "booking_id", out.BookingID, "rating", out.Rating)
	return out, nil
}
