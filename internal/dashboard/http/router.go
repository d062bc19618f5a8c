package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/metrics"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/service"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/httpx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/cinedash/api/dashboard" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookie       httpx.ClientCookieConfig
	pages        *pages

	storage          store.ClientStorage
	sealer           *cryptox.Sealer
	DashboardService *service.DashboardService
	AuthService      *service.AuthService

	// TrustedProxies may set X-Forwarded-For for rate limit keys.
	TrustedProxies httpx.TrustedProxies
}

func NewRouter(
	buildVersion string,
	storage store.ClientStorage,
	sealer *cryptox.Sealer,
	cookie httpx.ClientCookieConfig,
	logger *slog.Logger,
) (*Router, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		cookie:       cookie,
		pages:        p,
		storage:      storage,
		sealer:       sealer,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r, nil
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAPI()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpx.Chain(httpSwagger.Handler(), r.limitByIP(httpx.PublicLimit)))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Cinedash Dashboard API
//	@version		0.1.0
//	@description	Role based dashboards for the movie-catalog service. The browser session is carried by the
//	@description	cinedash_client cookie; the catalog bearer token never leaves the server.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/cinedash
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// credentials binds the request's client id to client storage.
func (r *Router) credentials(req *http.Request) service.Credentials {
	id, _ := httpx.ClientIDFromContext(req.Context())
	return &service.ClientCredentials{
		Storage:  r.storage,
		Sealer:   r.sealer,
		ClientID: id,
	}
}

// browser wraps h for routes that need a client id. The cookie middleware
// runs first so per-client rate limits can key on it.
func (r *Router) browser(h http.Handler, mws ...httpx.Middleware) http.Handler {
	return httpx.Chain(h, append([]httpx.Middleware{httpx.ClientCookie(r.cookie)}, mws...)...)
}

// onLimited counts rejected requests per limit profile.
var onLimited = httpx.OnLimited(func(_ *http.Request, l httpx.Limit) {
	metrics.RateLimitedTotal.WithLabelValues(l.Name).Inc()
})

func (r *Router) limitOpts() []httpx.RateLimitOption {
	return []httpx.RateLimitOption{onLimited, httpx.WithTrustedProxies(r.TrustedProxies)}
}

func (r *Router) limitByIP(l httpx.Limit) httpx.Middleware {
	return httpx.ByIP(l, r.limitOpts()...)
}

func (r *Router) registerPages() {
	login := &LoginHandler{AuthService: r.AuthService, Credentials: r.credentials, pages: r.pages}
	logout := &LogoutHandler{AuthService: r.AuthService, Credentials: r.credentials}
	dash := &DashboardHandler{DashboardService: r.DashboardService, Credentials: r.credentials, pages: r.pages}

	r.Mux.Handle("GET /{$}", http.RedirectHandler("/dashboard", http.StatusFound))

	r.Mux.Handle("GET /login",
		r.browser(http.HandlerFunc(login.HandleGet), r.limitByIP(httpx.LenientLimit)),
	)

	// POST /login - strict rate limit by IP + username to slow down guessing
	r.Mux.Handle("POST /login",
		r.browser(http.HandlerFunc(login.HandlePost),
			httpx.ByIPAndField(httpx.StrictLimit, "username", r.limitOpts()...),
		),
	)

	r.Mux.Handle("POST /logout",
		r.browser(logout, httpx.ByClient(httpx.ModerateLimit, r.limitOpts()...)),
	)

	// Dashboard pages call the catalog API on every load
	r.Mux.Handle("GET /dashboard",
		r.browser(http.HandlerFunc(dash.HandleDetect), httpx.ByClient(httpx.ModerateLimit, r.limitOpts()...)),
	)
	r.Mux.Handle("GET /dashboard/{role}",
		r.browser(http.HandlerFunc(dash.HandleRole), httpx.ByClient(httpx.ModerateLimit, r.limitOpts()...)),
	)
}

func (r *Router) registerAPI() {
	h := &DashboardAPIHandler{DashboardService: r.DashboardService, Credentials: r.credentials}

	r.Mux.Handle("GET /api/v1/dashboard/{role}",
		r.browser(h, httpx.ByClient(httpx.ModerateLimit, r.limitOpts()...)),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.storage),
			r.limitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(promhttp.Handler(), r.limitByIP(httpx.PublicLimit)),
	)
}
