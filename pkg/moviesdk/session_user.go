package moviesdk

import (
	"context"
	"net/http"
	"time"
)

// Me retrieves the profile of the user the token belongs to.
func (s *Session) Me(ctx context.Context) (_ *Profile, err error) {
	defer func(start time.Time) { s.client.observe(OpMe, start, err) }(time.Now())

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := decodeJSON(resp, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Logout revokes the token server side. Callers treat failures as
// informational; the token should be forgotten locally regardless.
func (s *Session) Logout(ctx context.Context) (err error) {
	defer func(start time.Time) { s.client.observe(OpLogout, start, err) }(time.Now())

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}

	return checkStatus(resp)
}
