package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Credentials CredentialsFunc

	pages *pages
}

// HandleGet serves the login form. Browsers that already hold a token are
// sent to their dashboard.
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, ok, err := h.Credentials(r).Token(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Warn("failed to read token", slog.Any("error", err))
	}
	if ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	data := pageData{Title: "Log in", Message: r.URL.Query().Get("message")}
	if data.Message != "" {
		data.Status = "error"
	}
	h.pages.render(w, r, http.StatusOK, pageLogin, data)
}

// HandlePost exchanges the submitted credentials for a catalog token.
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, r, http.StatusBadRequest, pageLogin, pageData{
			Title: "Log in", Message: service.MsgLoginFailed, Status: "error",
		})
		return
	}

	form := service.LoginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}

	err := h.AuthService.Login(r.Context(), form, h.Credentials(r))
	if err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	var le *service.LoginError
	if !errors.As(err, &le) {
		slogx.FromContext(r.Context()).Error("login failed", slog.Any("error", err))
		h.pages.render(w, r, http.StatusInternalServerError, pageLogin, pageData{
			Title: "Log in", Message: service.MsgLoginFailed, Status: "error", Username: form.Username,
		})
		return
	}

	status := http.StatusUnauthorized
	switch le.Reason {
	case service.LoginInvalid:
		status = http.StatusBadRequest
	case service.LoginUnreachable:
		status = http.StatusBadGateway
	}

	h.pages.render(w, r, status, pageLogin, pageData{
		Title: "Log in", Message: le.Message, Status: "error", Username: form.Username,
	})
}

type LogoutHandler struct {
	AuthService *service.AuthService
	Credentials CredentialsFunc
}

// ServeHTTP serves POST /logout. The browser always ends up on the login
// page, whether or not the catalog API acknowledged the logout.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), h.Credentials(r)); err != nil {
		slogx.FromContext(r.Context()).Error("failed to clear token on logout", slog.Any("error", err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
