package domain

import "time"

// Lawyer is the professional profile attached to a user account. A user
// becomes a lawyer by applying; the profile only appears in public listings
// once an admin verifies it.
type Lawyer struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	Specialization string    `json:"specialization"`
	BarCouncilID   string    `json:"bar_council_id"`
	YearsExp       int       `json:"years_experience"`
	City           string    `json:"city"`
	FeePerHour     int64     `json:"fee_per_hour"` // smallest currency unit
	Bio            string    `json:"bio,omitempty"`
	Verified       bool      `json:"verified"`
	Rating         float64   `json:"rating"`       // average, 0 when unrated
	ReviewCount    int       `json:"review_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

// LawyerFilter narrows the public listing. Zero values mean "any".
type LawyerFilter struct {
	Specialization string
	City           string
	MaxFeePerHour  int64
	MinRating      float64
	Limit          int
	Offset         int
}
