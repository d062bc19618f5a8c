package moviesdk

import (
	"context"
	"io"
	"net/http"
)

// Session performs requests authenticated with a single bearer token.
// It is immutable and safe for concurrent use.
type Session struct {
	client      *Client
	accessToken string
}

// AccessToken returns the bearer token this session sends.
func (s *Session) AccessToken() string {
	return s.accessToken
}

// doAuthRequest performs an HTTP request with the session's bearer token.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + s.accessToken,
		"Accept":        "application/json",
	}
	return s.client.doRequest(ctx, method, path, body, headers)
}
