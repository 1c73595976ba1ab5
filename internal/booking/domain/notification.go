package domain

import "time"

type NotificationKind string

const (
	NotifyBookingCreated   NotificationKind = "BOOKING_CREATED"
	NotifyBookingConfirmed NotificationKind = "BOOKING_CONFIRMED"
	NotifyBookingRejected  NotificationKind = "BOOKING_REJECTED"
	NotifyBookingCancelled NotificationKind = "BOOKING_CANCELLED"
	NotifyBookingCompleted NotificationKind = "BOOKING_COMPLETED"
	NotifyBookingExpired   NotificationKind = "BOOKING_EXPIRED"
	NotifyLawyerVerified   NotificationKind = "LAWYER_VERIFIED"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Body      string           `json:"body"`
	Read      bool             `json:"read"`
	SentAt    *time.Time       `json:"sent_at,omitempty"` // nil until dispatched
	CreatedAt time.Time        `json:"created_at"`
}
