package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
)

type notificationsRepo struct {
	q querier
}

const notificationColumns = `id, user_id, kind, body, read, sent_at, created_at`

func scanNotification(row interface{ Scan(...any) error }) (domain.Notification, error) {
	var n domain.Notification
	var kind string
	var sentAt sql.NullTime
	err := row.Scan(&n.ID, &n.UserID, &kind, &n.Body, &n.Read, &sentAt, &n.CreatedAt)
	if err != nil {
		return domain.Notification{}, err
	}
	n.Kind = domain.NotificationKind(kind)
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	return n, nil
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, body, read, created_at)
		VALUES (?, ?, ?, ?, FALSE, ?)`,
		n.ID, n.UserID, string(n.Kind), n.Body, time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *notificationsRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *notificationsRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = ? AND user_id = ?`,
		notificationID, userID,
	))
}

func (r *notificationsRepo) ListUnsent(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE sent_at IS NULL
		 ORDER BY created_at ASC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *notificationsRepo) MarkSent(ctx context.Context, notificationID string, at time.Time) error {
	return affectedOrNotFound(r.q.ExecContext(ctx,
		`UPDATE notifications SET sent_at = ? WHERE id = ?`,
		at.UTC(), notificationID,
	))
}

func (r *notificationsRepo) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM notifications WHERE read = TRUE AND created_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectNotifications(rows *sql.Rows) ([]domain.Notification, error) {
	var notifications []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
