// Package apitest provides an in-process stand-in for the movie-catalog API.
// It implements the login, profile, dashboard and logout endpoints with HS256
// bearer tokens, and lets tests inject failures per path. The same handler
// backs the `cinedash devapi` command for local development.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL matches the catalog API's access token lifetime.
const TokenTTL = time.Hour

// User is an account known to the fake catalog.
type User struct {
	ID       string
	Username string
	Email    string
	Password string
	Role     string
	Status   string
}

// Failure is a canned response returned instead of the real handler.
type Failure struct {
	Status int
	Body   string
}

var roleActions = map[string][]string{
	"guest":         {"Browse public reviews", "Preview trending movies"},
	"member":        {"Manage your watchlist", "Log and rate movies", "Write reviews"},
	"critic":        {"Publish critic-grade reviews", "Highlight featured picks", "Collaborate on reports"},
	"moderator":     {"Review reports and flags", "Manage penalties for users", "Oversee community content"},
	"administrator": {"Manage users and roles", "Oversee reports and system settings", "Audit penalties and escalations"},
}

var serverAliases = map[string]string{
	"admin":  "administrator",
	"admins": "administrator",
}

type claims struct {
	Role   string `json:"role"`
	Status string `json:"status"`
	jwt.RegisteredClaims
}

// Catalog is the fake API. The zero value is not usable; use NewCatalog.
type Catalog struct {
	secret []byte
	mux    *http.ServeMux

	mu       sync.Mutex
	users    map[string]User // by id
	revoked  map[string]struct{}
	failures map[string]Failure
	requests []string
}

// NewCatalog returns a catalog holding users. Users without an ID or Status
// get a ULID and "active".
func NewCatalog(secret []byte, users ...User) *Catalog {
	c := &Catalog{
		secret:   secret,
		mux:      http.NewServeMux(),
		users:    make(map[string]User),
		revoked:  make(map[string]struct{}),
		failures: make(map[string]Failure),
	}
	for _, u := range users {
		c.AddUser(u)
	}

	c.mux.HandleFunc("POST /auth/login", c.handleLogin)
	c.mux.HandleFunc("GET /auth/me", c.handleMe)
	c.mux.HandleFunc("POST /auth/logout", c.handleLogout)
	c.mux.HandleFunc("GET /dashboard/{role}", c.handleDashboard)

	return c
}

// AddUser registers or replaces u and returns the stored copy.
func (c *Catalog) AddUser(u User) User {
	if u.ID == "" {
		u.ID = idx.New().String()
	}
	if u.Status == "" {
		u.Status = "active"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID] = u
	return u
}

// Fail makes every request to path return f until Recover is called.
func (c *Catalog) Fail(path string, f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[path] = f
}

// Recover removes an injected failure.
func (c *Catalog) Recover(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failures, path)
}

// Requests returns "METHOD /path" for every request served so far.
func (c *Catalog) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.requests))
	copy(out, c.requests)
	return out
}

// IssueToken mints an access token for the user with the given username
// without going through /auth/login.
func (c *Catalog) IssueToken(username string) (string, error) {
	u, ok := c.lookup(username)
	if !ok {
		return "", fmt.Errorf("apitest: unknown user %q", username)
	}
	return c.sign(u)
}

func (c *Catalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.requests = append(c.requests, r.Method+" "+r.URL.Path)
	f, failing := c.failures[r.URL.Path]
	c.mu.Unlock()

	if failing {
		w.WriteHeader(f.Status)
		_, _ = w.Write([]byte(f.Body))
		return
	}

	c.mux.ServeHTTP(w, r)
}

func (c *Catalog) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid form body")
		return
	}

	u, ok := c.lookup(r.PostForm.Get("username"))
	if !ok || u.Password != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, "Invalid username/email or password")
		return
	}
	if u.Status != "active" {
		writeDetail(w, http.StatusForbidden, "Account is deactivated")
		return
	}

	token, err := c.sign(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (c *Catalog) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := c.authenticate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id":  u.ID,
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
		"status":   u.Status,
	})
}

func (c *Catalog) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := c.authenticate(w, r); !ok {
		return
	}

	c.mu.Lock()
	c.revoked[bearer(r)] = struct{}{}
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

func (c *Catalog) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := c.authenticate(w, r)
	if !ok {
		return
	}

	required := r.PathValue("role")
	if _, known := roleActions[required]; !known {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	if normalize(u.Role) != required {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]string{
				"code":    "forbidden",
				"message": fmt.Sprintf("Access denied: requires role '%s'.", required),
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"user_id":  u.ID,
			"username": u.Username,
			"email":    u.Email,
			"role":     required,
			"status":   u.Status,
		},
		"actions": roleActions[required],
		"links": []map[string]string{
			{"label": "Home", "href": "/"},
			{"label": "Watchlist", "href": "/movies/watch-later"},
			{"label": "Reviews", "href": "/reviews"},
		},
	})
}

// authenticate validates the bearer token and writes the error response
// itself when it fails.
func (c *Catalog) authenticate(w http.ResponseWriter, r *http.Request) (User, bool) {
	raw := bearer(r)
	if raw == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return User{}, false
	}

	c.mu.Lock()
	_, revoked := c.revoked[raw]
	c.mu.Unlock()
	if revoked {
		writeDetail(w, http.StatusUnauthorized, "Token has been revoked.")
		return User{}, false
	}

	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid authentication credentials.")
		return User{}, false
	}
	if cl.Status != "active" {
		writeDetail(w, http.StatusForbidden, "Account is deactivated.")
		return User{}, false
	}

	c.mu.Lock()
	u, ok := c.users[cl.Subject]
	c.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid authentication credentials.")
		return User{}, false
	}
	return u, true
}

func (c *Catalog) lookup(usernameOrEmail string) (User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.Username == usernameOrEmail || (u.Email != "" && u.Email == usernameOrEmail) {
			return u, true
		}
	}
	return User{}, false
}

func (c *Catalog) sign(u User) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:   u.Role,
		Status: u.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        idx.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	s, err := t.SignedString(c.secret)
	if err != nil {
		return "", errors.Join(errors.New("apitest: sign token"), err)
	}
	return s, nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func normalize(role string) string {
	if r, ok := serverAliases[role]; ok {
		return r
	}
	return role
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
