package http

import (
	"net/http"

	"github.com/nyaybooker/nyaybooker/internal/booking/domain"
	"github.com/nyaybooker/nyaybooker/internal/booking/service"
	"github.com/nyaybooker/nyaybooker/pkg/httpx"
)

type AdminHandler struct {
	AdminService *service.AdminService
}

// HandleListUsers returns user profiles for the admin console.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))

	users, err := h.AdminService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.Profile{}
	}

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, users)
}

// HandleVerifyLawyer approves a lawyer application.
func (h *AdminHandler) HandleVerifyLawyer(w http.ResponseWriter, r *http.Request) {
	l, err := h.AdminService.VerifyLawyer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteData(w, http.StatusOK, l)
}

// HandleResetPassword issues a temporary password for a locked-out user.
// The plaintext appears in this response only.
func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.AdminService.ResetPassword(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, map[string]string{"password": password})
}

// HandleStats returns the dashboard snapshot.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.AdminService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, stats)
}
