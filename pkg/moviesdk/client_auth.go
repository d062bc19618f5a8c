package moviesdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Login exchanges a username (or email) and password for an access token.
// The credentials are sent form-encoded as the API expects.
func (c *Client) Login(ctx context.Context, username, password string) (_ *TokenResponse, err error) {
	defer func(start time.Time) { c.observe(OpLogin, start, err) }(time.Now())

	data := url.Values{
		"username": {username},
		"password": {password},
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", strings.NewReader(data.Encode()), headers)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
