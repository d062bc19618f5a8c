package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

// CredentialsFunc returns the session credentials of the browser making r.
type CredentialsFunc func(r *http.Request) service.Credentials

type DashboardHandler struct {
	DashboardService *service.DashboardService
	Credentials      CredentialsFunc

	pages *pages
}

// HandleDetect serves GET /dashboard and forwards to the dashboard of the
// user's role.
func (h *DashboardHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	d, err := h.DashboardService.Detect(r.Context(), h.Credentials(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch d.Action {
	case service.ActionRedirectToRole:
		http.Redirect(w, r, dashboardURL(d.Role), http.StatusFound)
	case service.ActionRenderError:
		h.pages.render(w, r, http.StatusServiceUnavailable, pageError, pageData{
			Title: "Dashboard", Message: d.Message, Status: "error", Retry: "/dashboard",
		})
	default:
		http.Redirect(w, r, loginURL(d.Message), http.StatusFound)
	}
}

// HandleRole serves GET /dashboard/{role}. Aliased or unknown roles are
// redirected to their canonical path first.
func (h *DashboardHandler) HandleRole(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("role")
	role := domain.ParseRouteRole(raw)
	if raw != role.String() {
		http.Redirect(w, r, dashboardURL(role), http.StatusFound)
		return
	}

	res, err := h.DashboardService.Load(r.Context(), role, h.Credentials(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch res.Action {
	case service.ActionRenderGuest, service.ActionFetchAndRender:
		h.pages.render(w, r, http.StatusOK, pageDashboard, pageData{Title: "Dashboard", View: res.View})
	case service.ActionRedirectToRole:
		http.Redirect(w, r, dashboardURL(res.Role), http.StatusFound)
	case service.ActionRenderError:
		h.pages.render(w, r, http.StatusServiceUnavailable, pageError, pageData{
			Title: "Dashboard", Message: res.Message, Status: "error", Retry: dashboardURL(role),
		})
	default:
		http.Redirect(w, r, loginURL(res.Message), http.StatusFound)
	}
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())
	if errors.Is(err, context.Canceled) {
		log.Debug("dashboard load abandoned by client")
		return
	}

	log.Error("dashboard load failed", slog.Any("error", err))
	h.pages.render(w, r, http.StatusInternalServerError, pageError, pageData{
		Title:   "Dashboard",
		Message: service.MsgDashboardUnavailable,
		Status:  "error",
		Retry:   r.URL.Path,
	})
}
