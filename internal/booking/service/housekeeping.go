package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"github.com/nyaybooker/nyaybooker/pkg/idx"
)

// readRetention is how long read notifications are kept before purging.
const readRetention = 30 * 24 * time.Hour

// HousekeepingService periodically expires stale PENDING bookings and purges
// old read notifications so the tables don't grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. If interval is 0 or negative,
// defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to
// gracefully shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one housekeeping pass. Each task is independent; a
// failure in one doesn't stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	if err := s.expireStaleBookings(ctx); err != nil {
		s.Logger.Error("failed to expire stale bookings", "error", err)
	}

	purged, err := s.Store.Notifications().PurgeRead(ctx, time.Now().UTC().Add(-readRetention))
	if err != nil {
		s.Logger.Error("failed to purge read notifications", "error", err)
	} else if purged > 0 {
		s.Logger.Info("purged read notifications", "count", purged)
	}
}

// expireStaleBookings marks PENDING bookings whose start time has passed as
// EXPIRED and notifies both parties.
func (s *HousekeepingService) expireStaleBookings(ctx context.Context) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		expired, err := tx.Bookings().ExpirePendingBefore(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		for _, b := range expired {
			l, err := tx.Lawyers().GetLawyerByID(ctx, b.LawyerID)
			if err != nil {
				return err
			}
			body := fmt.Sprintf("Booking %q expired before confirmation", b.Subject)
			for _, userID := range []string{b.UserID, l.UserID} {
				if err := tx.Notifications().CreateNotification(ctx, domain.Notification{
					ID:     idx.New().String(),
					UserID: userID,
					Kind:   domain.NotifyBookingExpired,
					Body:   body,
				}); err != nil {
					return err
				}
			}
		}

		s.Logger.Info("expired stale bookings", "count", len(expired))
		return nil
	})
}
