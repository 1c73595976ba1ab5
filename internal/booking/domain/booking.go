package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingExpired   BookingStatus = "EXPIRED"
)

// transitions holds the allowed status moves. Terminal statuses have no
// entry: nothing leaves COMPLETED, CANCELLED, REJECTED or EXPIRED.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled, BookingExpired},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch s := BookingStatus(raw); s {
	case BookingPending, BookingConfirmed, BookingCompleted,
		BookingCancelled, BookingRejected, BookingExpired:
		return s, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

type Booking struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	LawyerID  string        `json:"lawyer_id"`
	Status    BookingStatus `json:"status"`
	StartsAt  time.Time     `json:"starts_at"`
	EndsAt    time.Time     `json:"ends_at"`
	Subject   string        `json:"subject"`
	Notes     string        `json:"notes,omitempty"`
	FeeCents  int64         `json:"fee_cents"`
	Paid      bool          `json:"paid"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BookingFilter scopes booking listings to one party and optionally one
// status.
type BookingFilter struct {
	UserID   string
	LawyerID string
	Status   BookingStatus
	Limit    int
	Offset   int
}
