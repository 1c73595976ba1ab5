package http

import (
	"net/http"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
)

type NotificationsHandler struct {
	NotificationService *service.NotificationService
}

// HandleList returns the caller's notifications, newest first.
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())
	limit, offset := pagination(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))

	notifications, err := h.NotificationService.ListForUser(r.Context(), id.Subject, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, notifications)
}

// HandleMarkRead flags one of the caller's notifications as read.
func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())

	if err := h.NotificationService.MarkRead(r.Context(), id.Subject, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, map[string]bool{"read": true})
}
