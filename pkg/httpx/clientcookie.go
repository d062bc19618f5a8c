package httpx

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/idx"
)

// DefaultClientCookie is the cookie holding the opaque browser client id.
const DefaultClientCookie = "cinedash_client"

// ClientCookieConfig controls the client id cookie.
type ClientCookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ClientCookie makes sure every request carries a browser client id. A
// missing or malformed cookie is replaced with a fresh ULID. The id is only a
// lookup key into client storage, it carries no credentials itself.
func ClientCookie(cfg ClientCookieConfig) Middleware {
	if cfg.Name == "" {
		cfg.Name = DefaultClientCookie
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id idx.ID
			if c, err := r.Cookie(cfg.Name); err == nil {
				id, _ = idx.Parse(c.Value)
			}

			if id.IsZero() {
				id = idx.New()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.Name,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), id)))
		})
	}
}
