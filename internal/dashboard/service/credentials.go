package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/cryptox"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/aussiebroadwan/cinedash/pkg/slogx"
)

// TokenKey is the client storage key holding the catalog bearer token.
const TokenKey = "access_token"

// Credentials is the session state shared by every page a browser visits.
// It is injected into each load so tests can substitute a fake.
type Credentials interface {
	// Token returns the stored bearer token. ok is false when none is stored.
	Token(ctx context.Context) (token string, ok bool, err error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// ClientCredentials stores the bearer token in client storage under the
// browser's client id. Tokens are sealed at rest.
type ClientCredentials struct {
	Storage  store.ClientStorage
	Sealer   *cryptox.Sealer
	ClientID idx.ID
}

var _ Credentials = (*ClientCredentials)(nil)

func (c *ClientCredentials) Token(ctx context.Context) (string, bool, error) {
	sealed, err := c.Storage.Get(ctx, c.ClientID, TokenKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}

	token, err := c.Sealer.Open(sealed, c.aad())
	if errors.Is(err, cryptox.ErrSealedValue) {
		// Sealed under another master key. Treat the browser as logged out.
		slogx.FromContext(ctx).Warn("discarding unreadable stored token", slog.String("client_id", c.ClientID.String()))
		if err := c.Storage.Delete(ctx, c.ClientID, TokenKey); err != nil {
			return "", false, fmt.Errorf("discard token: %w", err)
		}
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return token, token != "", nil
}

func (c *ClientCredentials) SetToken(ctx context.Context, token string) error {
	sealed, err := c.Sealer.Seal(token, c.aad())
	if err != nil {
		return err
	}
	if err := c.Storage.Set(ctx, c.ClientID, TokenKey, sealed); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (c *ClientCredentials) ClearToken(ctx context.Context) error {
	if err := c.Storage.Delete(ctx, c.ClientID, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (c *ClientCredentials) aad() string {
	return c.ClientID.String() + "/" + TokenKey
}
