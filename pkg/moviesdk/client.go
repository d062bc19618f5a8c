package moviesdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every API call made with a client from NewClient.
const DefaultTimeout = 10 * time.Second

// ObserveFunc receives the outcome of every API call.
type ObserveFunc func(op string, took time.Duration, err error)

// Client is a client for the movie-catalog API.
// It provides access to unauthenticated operations and creates Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Observe is optional. It must be safe for concurrent use.
	Observe ObserveFunc
}

// NewClient creates a new catalog API client with a bounded timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewSession wraps an existing bearer token. No request is made; an invalid
// token only shows up as an error from the first authenticated call.
func (c *Client) NewSession(accessToken string) *Session {
	return &Session{client: c, accessToken: accessToken}
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.Observe != nil {
		c.Observe(op, time.Since(start), err)
	}
}
