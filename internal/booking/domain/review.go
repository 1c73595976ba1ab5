package domain

import "time"

// Review is a client's rating of a completed booking. One review per
// booking, enforced by the store.
type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	LawyerID  string    `json:"lawyer_id"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewPage is one page of a lawyer's reviews plus the rating aggregate
// maintained on the lawyer row.
type ReviewPage struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
}
