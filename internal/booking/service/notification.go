package service

import (
	"context"
	"errors"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
)

type NotificationService struct {
	Store store.Store
}

// ListForUser returns the caller's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	return s.Store.Notifications().ListForUser(ctx, userID, limit, offset)
}

// MarkRead flags one of the caller's notifications as read. Another user's
// notification looks like it doesn't exist.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	err := s.Store.Notifications().MarkRead(ctx, userID, notificationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
