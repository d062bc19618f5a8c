package service

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/apitest"
	"github.com/aussiebroadwan/cinedash/internal/dashboard/store/drivers/memory"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/stretchr/testify/require"
)

func newCreds(t *testing.T) *ClientCredentials {
	t.Helper()

	sealer, err := cryptox.NewEphemeralSealer()
	require.NoError(t, err)

	return &ClientCredentials{
		Storage:  memory.NewStore(0),
		Sealer:   sealer,
		ClientID: idx.New(),
	}
}

// loggedIn returns credentials holding a valid token for username.
func loggedIn(t *testing.T, srv *apitest.Server, username string) *ClientCredentials {
	t.Helper()

	token, err := srv.IssueToken(username)
	require.NoError(t, err)

	creds := newCreds(t)
	require.NoError(t, creds.SetToken(context.Background(), token))
	return creds
}

func hasToken(t *testing.T, creds Credentials) bool {
	t.Helper()

	_, ok, err := creds.Token(context.Background())
	require.NoError(t, err)
	return ok
}

// unreachableClient points at a server that has already been shut down.
func unreachableClient() *moviesdk.Client {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return moviesdk.NewClient(url)
}

func strPtr(s string) *string { return &s }
