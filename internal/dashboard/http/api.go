package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

// MsgLoginRequired is returned by the JSON API when no usable session exists.
const MsgLoginRequired = "Please log in to view this dashboard."

// RoleMismatchResponse tells the caller which dashboard the session may see.
type RoleMismatchResponse struct {
	Error httpx.ErrorDetail `json:"error"`
	Role  domain.Role       `json:"role" example:"moderator"`
}

type DashboardAPIHandler struct {
	DashboardService *service.DashboardService
	Credentials      CredentialsFunc
}

// ServeHTTP returns the composed dashboard view model as JSON.
//
//	@Summary		Get a role dashboard
//	@Description	Runs the session guard for the browser's stored catalog token and returns the composed dashboard.
//	@Description	Aliased roles (admin, admins, mod) are normalized and unknown roles fall back to member.
//	@Tags			Dashboard
//	@Produce		json
//	@Param			role	path		string						true	"Dashboard role"	Enums(guest, member, critic, moderator, administrator)
//	@Success		200		{object}	domain.ViewModel			"Composed dashboard"
//	@Failure		401		{object}	httpx.ErrorBody				"No session, or the catalog rejected it"
//	@Failure		409		{object}	RoleMismatchResponse		"The session belongs to another role"
//	@Failure		429		{object}	httpx.ErrorBody				"Rate limit exceeded"
//	@Failure		500		{object}	httpx.ErrorBody				"Internal server error"
//	@Failure		503		{object}	httpx.ErrorBody				"Catalog API unavailable"
//	@Router			/api/v1/dashboard/{role} [get].
func (h *DashboardAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())
	role := domain.ParseRouteRole(r.PathValue("role"))

	res, err := h.DashboardService.Load(r.Context(), role, h.Credentials(r))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("dashboard load abandoned by client")
			return
		}
		log.Error("dashboard load failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", service.MsgDashboardUnavailable)
		return
	}

	switch res.Action {
	case service.ActionRenderGuest, service.ActionFetchAndRender:
		httpx.WriteJSON(w, http.StatusOK, res.View)
	case service.ActionRedirectToRole:
		httpx.WriteJSON(w, http.StatusConflict, RoleMismatchResponse{
			Error: httpx.ErrorDetail{
				Code:    "role_mismatch",
				Message: "This session belongs to the " + res.Role.String() + " dashboard.",
			},
			Role: res.Role,
		})
	case service.ActionRenderError:
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog_unavailable", res.Message)
	default:
		msg := res.Message
		if msg == "" {
			msg = MsgLoginRequired
		}
		httpx.WriteError(w, http.StatusUnauthorized, "login_required", msg)
	}
}
