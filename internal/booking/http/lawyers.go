package http

import (
	"net/http"
	"strconv"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
)

type LawyersHandler struct {
	LawyerService *service.LawyerService
}

// HandleList returns verified lawyers, filterable via query parameters.
func (h *LawyersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := domain.LawyerFilter{
		Specialization: q.Get("specialization"),
		City:           q.Get("city"),
	}
	if v := q.Get("max_fee"); v != "" {
		if fee, err := strconv.ParseInt(v, 10, 64); err == nil && fee > 0 {
			f.MaxFeePerHour = fee
		}
	}
	if v := q.Get("min_rating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil && rating > 0 {
			f.MinRating = rating
		}
	}
	f.Limit, f.Offset = pagination(q.Get("limit"), q.Get("offset"))

	lawyers, err := h.LawyerService.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if lawyers == nil {
		lawyers = []domain.Lawyer{}
	}

	httpx.WriteData(w, http.StatusOK, lawyers)
}

// HandleGet returns one lawyer profile.
func (h *LawyersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID := ""
	if id, ok := httpx.IdentityFromContext(r.Context()); ok {
		callerID = id.Subject
	}

	l, err := h.LawyerService.Get(r.Context(), r.PathValue("id"), callerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, l)
}

type applyRequest struct {
	Specialization string `json:"specialization"`
	BarCouncilID   string `json:"bar_council_id"`
	YearsExp       int    `json:"years_experience"`
	City           string `json:"city"`
	FeePerHour     int64  `json:"fee_per_hour"`
	Bio            string `json:"bio"`
}

// HandleApply files a lawyer application for the calling user.
func (h *LawyersHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	var req applyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	l, err := h.LawyerService.Apply(r.Context(), service.ApplyParams{
		UserID:         id.Subject,
		Specialization: req.Specialization,
		BarCouncilID:   req.BarCouncilID,
		YearsExp:       req.YearsExp,
		City:           req.City,
		FeePerHour:     req.FeePerHour,
		Bio:            req.Bio,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusCreated, l)
}

// HandleReviews lists a lawyer's reviews with the rating aggregate.
func (h *LawyersHandler) HandleReviews(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))

	page, err := h.LawyerService.Reviews(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, page)
}

// pagination parses limit/offset query values, clamping to sane bounds.
func pagination(limitRaw, offsetRaw string) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(limitRaw); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(offsetRaw); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
