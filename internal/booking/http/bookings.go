package http

import (
	"net/http"
	"time"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
)

type BookingsHandler struct {
	BookingService *service.BookingService
	ReviewService  *service.ReviewService
}

type createBookingRequest struct {
	LawyerID string    `json:"lawyer_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Subject  string    `json:"subject"`
	Notes    string    `json:"notes"`
}

// HandleCreate books a consultation slot with a lawyer.
func (h *BookingsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	var req createBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	b, err := h.BookingService.Book(r.Context(), service.BookParams{
		UserID:   id.Subject,
		LawyerID: req.LawyerID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Subject:  req.Subject,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, b)
}

// HandleList returns the caller's bookings, optionally filtered by status.
func (h *BookingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())
	q := r.URL.Query()

	var status domain.BookingStatus
	if raw := q.Get("status"); raw != "" {
		parsed, err := domain.ParseBookingStatus(raw)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		status = parsed
	}
	limit, offset := pagination(q.Get("limit"), q.Get("offset"))

	bookings, err := h.BookingService.ListForCaller(r.Context(), id, status, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}

	httpx.WriteData(w, http.StatusOK, bookings)
}

// HandleCancel cancels a booking as either party.
func (h *BookingsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	b, err := h.BookingService.Cancel(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, b)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus applies a lawyer-driven status change (confirm, reject,
// complete).
func (h *BookingsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	b, err := h.BookingService.SetStatus(r.Context(), id, r.PathValue("id"), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, b)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// HandleReview rates a completed booking.
func (h *BookingsHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	var req reviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	review, err := h.ReviewService.Review(r.Context(), service.ReviewParams{
		UserID:    id.Subject,
		BookingID: r.PathValue("id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, review)
}
