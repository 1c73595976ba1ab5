package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/store"
	"golang.org/x/time/rate"
)

// Sender delivers one notification out of process (push, email, SMS).
type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// LogSender is the default Sender: it just records the delivery. Real
// channels plug in behind the same interface.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, n domain.Notification) error {
	s.Logger.Info("notification delivered",
		"notification_id", n.ID, "user_id", n.UserID, "kind", n.Kind)
	return nil
}

// DispatcherService drains the unsent notification queue in the background.
// Deliveries are throttled so a burst of bookings can't flood the outbound
// channel.
type DispatcherService struct {
	Store    store.Store
	Sender   Sender
	Logger   *slog.Logger
	Interval time.Duration
	Batch    int

	limiter *rate.Limiter
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDispatcherService creates the dispatcher. sendsPerSec bounds outbound
// delivery rate; interval is how often the queue is polled.
func NewDispatcherService(st store.Store, sender Sender, logger *slog.Logger, interval time.Duration, sendsPerSec float64) *DispatcherService {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if sendsPerSec <= 0 {
		sendsPerSec = 10
	}

	return &DispatcherService{
		Store:    st,
		Sender:   sender,
		Logger:   logger,
		Interval: interval,
		Batch:    100,
		limiter:  rate.NewLimiter(rate.Limit(sendsPerSec), 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *DispatcherService) Start() {
	go s.run()
	s.Logger.Info("notification dispatcher started", "interval", s.Interval)
}

// Stop gracefully shuts down the worker, waiting for an in-flight batch.
func (s *DispatcherService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("notification dispatcher stopped")
}

func (s *DispatcherService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Drain anything queued before we started.
	s.Drain(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Drain(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Drain sends every queued notification once, marking successes. A failed
// delivery stays queued and is retried next tick.
func (s *DispatcherService) Drain(ctx context.Context) {
	pending, err := s.Store.Notifications().ListUnsent(ctx, s.Batch)
	if err != nil {
		s.Logger.Error("failed to list unsent notifications", "error", err)
		return
	}

	for _, n := range pending {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		if err := s.Sender.Send(ctx, n); err != nil {
			s.Logger.Error("failed to deliver notification", "notification_id", n.ID, "error", err)
			continue
		}
		if err := s.Store.Notifications().MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
			s.Logger.Error("failed to mark notification sent", "notification_id", n.ID, "error", err)
		}
	}
}
