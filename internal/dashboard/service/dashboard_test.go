package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/apitest"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/stretchr/testify/require"
)

func TestDashboardLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("renders after profile then dashboard", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		res, err := svc.Load(ctx, domain.RoleMember, loggedIn(t, srv, "alice"))
		require.NoError(t, err)
		require.Equal(t, ActionFetchAndRender, res.Action)
		require.Equal(t, "alice", res.View.Profile.Username)
		require.Equal(t, "alice@example.com", res.View.Profile.Email)
		require.Equal(t, "active", res.View.Profile.Status)
		require.Equal(t, []string{"Manage your watchlist", "Log and rate movies", "Write reviews"}, res.View.Actions)
		require.Len(t, res.View.Links, 3)
		require.Len(t, res.View.Sections, 5)

		require.Equal(t, []string{"GET /auth/me", "GET /dashboard/member"}, srv.Requests())
	})

	t.Run("guest renders without requests", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		res, err := svc.Load(ctx, domain.RoleGuest, newCreds(t))
		require.NoError(t, err)
		require.Equal(t, ActionRenderGuest, res.Action)
		require.Equal(t, GuestView(), res.View)
		require.Empty(t, srv.Requests())
	})

	t.Run("mismatch never fetches the dashboard", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		res, err := svc.Load(ctx, domain.RoleMember, loggedIn(t, srv, "root"))
		require.NoError(t, err)
		require.Equal(t, ActionRedirectToRole, res.Action)
		require.Equal(t, domain.RoleAdministrator, res.Role)
		require.Equal(t, []string{"GET /auth/me"}, srv.Requests())
	})

	t.Run("dashboard failure clears token", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}
		creds := loggedIn(t, srv, "alice")
		srv.Fail("/dashboard/member", apitest.Failure{Status: http.StatusServiceUnavailable, Body: `[]`})

		res, err := svc.Load(ctx, domain.RoleMember, creds)
		require.NoError(t, err)
		require.Equal(t, ActionRedirectLogin, res.Action)
		require.Equal(t, MsgDashboardUnavailable, res.Message)
		require.False(t, hasToken(t, creds))
	})

	t.Run("dashboard failure surfaces server message", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}
		creds := loggedIn(t, srv, "alice")
		srv.Fail("/dashboard/member", apitest.Failure{Status: http.StatusUnauthorized, Body: `{"detail":"Token has been revoked."}`})

		res, err := svc.Load(ctx, domain.RoleMember, creds)
		require.NoError(t, err)
		require.Equal(t, ActionRedirectLogin, res.Action)
		require.Equal(t, "Token has been revoked.", res.Message)
	})
}

func TestDashboardDetect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		d, err := svc.Detect(ctx, newCreds(t))
		require.NoError(t, err)
		require.Equal(t, ActionRedirectLogin, d.Action)
	})

	t.Run("profile role", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		d, err := svc.Detect(ctx, loggedIn(t, srv, "root"))
		require.NoError(t, err)
		require.Equal(t, ActionRedirectToRole, d.Action)
		require.Equal(t, domain.RoleAdministrator, d.Role)
	})

	t.Run("empty role defaults to member", func(t *testing.T) {
		srv := apitest.NewServer(t)
		srv.AddUser(apitest.User{Username: "nobody", Password: "Nobody123!"})
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}

		d, err := svc.Detect(ctx, loggedIn(t, srv, "nobody"))
		require.NoError(t, err)
		require.Equal(t, ActionRedirectToRole, d.Action)
		require.Equal(t, domain.RoleMember, d.Role)
	})

	t.Run("failure clears token", func(t *testing.T) {
		srv := apitest.NewServer(t)
		svc := &DashboardService{Guard: &Guard{Client: srv.Client()}}
		creds := loggedIn(t, srv, "alice")
		srv.Fail("/auth/me", apitest.Failure{Status: http.StatusUnauthorized})

		d, err := svc.Detect(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, ActionRedirectLogin, d.Action)
		require.False(t, hasToken(t, creds))
	})
}
