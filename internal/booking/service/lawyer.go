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

type LawyerService struct {
	Store store.Store
}

type ApplyParams struct {
	UserID         string
	Specialization string
	BarCouncilID   string
	YearsExp       int
	City           string
	FeePerHour     int64
	Bio            string
}

// Apply files a lawyer application for the calling user. The profile stays
// out of public listings until an admin verifies it.
func (s *LawyerService) Apply(ctx context.Context, p ApplyParams) (domain.Lawyer, error) {
	if strings.TrimSpace(p.Specialization) == "" {
		return domain.Lawyer{}, invalid("specialization is required")
	}
	if strings.TrimSpace(p.BarCouncilID) == "" {
		return domain.Lawyer{}, invalid("bar council id is required")
	}
	if strings.TrimSpace(p.City) == "" {
		return domain.Lawyer{}, invalid("city is required")
	}
	if p.YearsExp < 0 {
		return domain.Lawyer{}, invalid("years of experience cannot be negative")
	}
	if p.FeePerHour < 0 {
		return domain.Lawyer{}, invalid("fee cannot be negative")
	}

	if _, err := s.Store.Lawyers().GetLawyerByUserID(ctx, p.UserID); err == nil {
		return domain.Lawyer{}, ErrAlreadyApplied
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Lawyer{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Lawyer{}, ErrNotFound
		}
		return domain.Lawyer{}, err
	}

	l := domain.Lawyer{
		ID:             idx.New().String(),
		UserID:         u.ID,
		FullName:       u.FullName,
		Specialization: strings.TrimSpace(p.Specialization),
		BarCouncilID:   strings.TrimSpace(p.BarCouncilID),
		YearsExp:       p.YearsExp,
		City:           strings.TrimSpace(p.City),
		FeePerHour:     p.FeePerHour,
		Bio:            strings.TrimSpace(p.Bio),
	}
	if err := s.Store.Lawyers().CreateLawyer(ctx, l); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Lawyer{}, ErrAlreadyApplied
		}
		return domain.Lawyer{}, err
	}

	slogx.FromContext(ctx).Info("lawyer application filed", "lawyer_id", l.ID, "user_id", u.ID)
	return l, nil
}

// List returns verified lawyers matching the filter.
func (s *LawyerService) List(ctx context.Context, f domain.LawyerFilter) ([]domain.Lawyer, error) {
	return s.Store.Lawyers().ListLawyers(ctx, f)
}

// Get returns one verified lawyer profile. Unverified profiles are hidden
// from everyone except their owner.
func (s *LawyerService) Get(ctx context.Context, lawyerID, callerUserID string) (domain.Lawyer, error) {
	l, err := s.Store.Lawyers().GetLawyerByID(ctx, lawyerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Lawyer{}, ErrNotFound
		}
		return domain.Lawyer{}, err
	}
	if !l.Verified && l.UserID != callerUserID {
		return domain.Lawyer{}, ErrNotFound
	}
	return l, nil
}

// Reviews lists reviews for a lawyer, newest first, along with the stored
// rating aggregate.
func (s *LawyerService) Reviews(ctx context.Context, lawyerID string, limit, offset int) (domain.ReviewPage, error) {
	l, err := s.Store.Lawyers().GetLawyerByID(ctx, lawyerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ReviewPage{}, ErrNotFound
		}
		return domain.ReviewPage{}, err
	}

	reviews, err := s.Store.Reviews().ListReviewsForLawyer(ctx, lawyerID, limit, offset)
	if err != nil {
		return domain.ReviewPage{}, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	return domain.ReviewPage{
		Reviews:       reviews,
		AverageRating: l.Rating,
		ReviewCount:   l.ReviewCount,
	}, nil
}
