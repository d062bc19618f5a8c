package apitest

import (
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
)

// Default accounts seeded by NewServer and the devapi command. Every
// password satisfies the login form rules.
var DefaultUsers = []User{
	{Username: "alice", Email: "alice@example.com", Password: "Member123!", Role: "member"},
	{Username: "carol", Email: "carol@example.com", Password: "Critic123!", Role: "critic"},
	{Username: "mo", Email: "mo@example.com", Password: "Moderator123!", Role: "moderator"},
	{Username: "root", Email: "root@example.com", Password: "Admin123!", Role: "admin"},
	{Username: "dora", Email: "dora@example.com", Password: "Dormant123!", Role: "member", Status: "inactive"},
}

// Server is a Catalog listening on a local httptest server.
type Server struct {
	*Catalog
	URL string
}

// NewServer starts a catalog seeded with DefaultUsers and closes it when
// the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	c := NewCatalog([]byte("apitest-secret"), DefaultUsers...)
	srv := httptest.NewServer(c)
	t.Cleanup(srv.Close)

	return &Server{Catalog: c, URL: srv.URL}
}

// Client returns a moviesdk client pointed at the server.
func (s *Server) Client() *moviesdk.Client {
	return moviesdk.NewClient(s.URL)
}
