package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
)

type lawyersRepo struct {
	q querier
}

const lawyerColumns = `id, user_id, full_name, specialization, bar_council_id, years_exp,
	city, fee_per_hour, bio, verified, rating, review_count, created_at, updated_at`

func scanLawyer(row interface{ Scan(...any) error }) (domain.Lawyer, error) {
	var l domain.Lawyer
	err := row.Scan(&l.ID, &l.UserID, &l.FullName, &l.Specialization, &l.BarCouncilID,
		&l.YearsExp, &l.City, &l.FeePerHour, &l.Bio, &l.Verified, &l.Rating,
		&l.ReviewCount, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *lawyersRepo) CreateLawyer(ctx context.Context, l domain.Lawyer) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO lawyers (id, user_id, full_name, specialization, bar_council_id,
			years_exp, city, fee_per_hour, bio, verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?, ?)`,
		l.ID, l.UserID, l.FullName, l.Specialization, l.BarCouncilID,
		l.YearsExp, l.City, l.FeePerHour, l.Bio, now, now,
	)
	return mapConstraint(err)
}

func (r *lawyersRepo) GetLawyerByID(ctx context.Context, id string) (domain.Lawyer, error) {
	l, err := scanLawyer(r.q.QueryRowContext(ctx,
		`SELECT `+lawyerColumns+` FROM lawyers WHERE id = ?`, id))
	if err != nil {
		return domain.Lawyer{}, mapNotFound(err)
	}
	return l, nil
}

func (r *lawyersRepo) GetLawyerByUserID(ctx context.Context, userID string) (domain.Lawyer, error) {
	l, err := scanLawyer(r.q.QueryRowContext(ctx,
		`SELECT `+lawyerColumns+` FROM lawyers WHERE user_id = ?`, userID))
	if err != nil {
		return domain.Lawyer{}, mapNotFound(err)
	}
	return l, nil
}

func (r *lawyersRepo) ListLawyers(ctx context.Context, f domain.LawyerFilter) ([]domain.Lawyer, error) {
	var (
		conds = []string{"verified = TRUE"}
		args  []any
	)
	if f.Specialization != "" {
		conds = append(conds, "specialization = ?")
		args = append(args, f.Specialization)
	}
	if f.City != "" {
		conds = append(conds, "city = ?")
		args = append(args, f.City)
	}
	if f.MaxFeePerHour > 0 {
		conds = append(conds, "fee_per_hour <= ?")
		args = append(args, f.MaxFeePerHour)
	}
	if f.MinRating > 0 {
		conds = append(conds, "rating >= ?")
		args = append(args, f.MinRating)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+lawyerColumns+` FROM lawyers WHERE `+strings.Join(conds, " AND ")+`
		 ORDER BY rating DESC, review_count DESC, created_at ASC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lawyers []domain.Lawyer
	for rows.Next() {
		l, err := scanLawyer(rows)
		if err != nil {
			return nil, err
		}
		lawyers = append(lawyers, l)
	}
	return lawyers, rows.Err()
}

func (r *lawyersRepo) SetVerified(ctx context.Context, lawyerID string, verified bool) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE lawyers SET verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC(), lawyerID,
	))
}

func (r *lawyersRepo) UpdateRating(ctx context.Context, lawyerID string) error {
	return affectedOrNotFound(r.q.ExecContext(ctx, `
		UPDATE lawyers SET
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE lawyer_id = ?), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE lawyer_id = ?),
			updated_at = ?
		WHERE id = ?`,
		lawyerID, lawyerID, time.Now().UTC(), lawyerID,
	))
}

func (r *lawyersRepo) CountLawyers(ctx context.Context) (total int64, verified int64, err error) {
	err = r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(verified), 0) FROM lawyers`,
	).Scan(&total, &verified)
	return total, verified, err
}
