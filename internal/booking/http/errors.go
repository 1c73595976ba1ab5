package http

import (
	"errors"
	"net/http"

	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
	"github.com/nyaybooker/nyaybooker/pkg/slogx"
)

// writeServiceError maps service-layer sentinels onto the response envelope.
// Anything unmapped is a 500 and gets logged; the client only ever sees a
// generic message for those.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrAlreadyApplied):
		httpx.WriteError(w, http.StatusConflict, "lawyer application already exists")
	case errors.Is(err, service.ErrAlreadyReviewed):
		httpx.WriteError(w, http.StatusConflict, "booking already reviewed")
	case errors.Is(err, service.ErrSlotTaken):
		httpx.WriteError(w, http.StatusConflict, "the requested slot is no longer available")
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrBadTransition):
		httpx.WriteError(w, http.StatusConflict, "booking cannot change to that status")
	case errors.Is(err, service.ErrNotReviewable):
		httpx.WriteError(w, http.StatusConflict, "only completed bookings can be reviewed")
	case errors.Is(err, service.ErrLawyerNotVerified):
		httpx.WriteError(w, http.StatusBadRequest, "lawyer is not verified")
	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, err.Error())
}
