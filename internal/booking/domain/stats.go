package domain

// Stats is the admin dashboard snapshot.
type Stats struct {
	Users             int64 `json:"users"`
	Lawyers           int64 `json:"lawyers"`
	VerifiedLawyers   int64 `json:"verified_lawyers"`
	Bookings          int64 `json:"bookings"`
	PendingBookings   int64 `json:"pending_bookings"`
	CompletedBookings int64 `json:"completed_bookings"`
	Reviews           int64 `json:"reviews"`
}
