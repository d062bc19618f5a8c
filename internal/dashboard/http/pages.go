package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin     = "login"
	pageDashboard = "dashboard"
	pageError     = "error"
)

// pageData is the single data shape handed to every template.
type pageData struct {
	Title    string
	Message  string
	Status   string // alert style: "error" or "success"
	Username string
	View     domain.ViewModel
	Retry    string
}

type pages struct {
	tmpl map[string]*template.Template
}

// loadPages parses each page together with the shared layout. Every page
// defines its own "content" block so they cannot share one template set.
func loadPages() (*pages, error) {
	p := &pages{tmpl: make(map[string]*template.Template)}
	for _, name := range []string{pageLogin, pageDashboard, pageError} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		p.tmpl[name] = t
	}
	return p, nil
}

// render buffers the page so a template error never leaves a half written
// response behind.
func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render page", slog.String("page", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func loginURL(message string) string {
	if message == "" {
		return "/login"
	}
	return "/login?" + url.Values{"message": {message}}.Encode()
}

func dashboardURL(role domain.Role) string {
	return "/dashboard/" + url.PathEscape(role.String())
}
