package moviesdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Dashboard retrieves the role specific dashboard payload. The API rejects the
// call when role does not match the token's role of record.
func (s *Session) Dashboard(ctx context.Context, role string) (_ *DashboardResponse, err error) {
	defer func(start time.Time) { s.client.observe(OpDashboard, start, err) }(time.Now())

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(role), nil)
	if err != nil {
		return nil, err
	}

	var dash DashboardResponse
	if err := decodeJSON(resp, &dash); err != nil {
		return nil, err
	}

	return &dash, nil
}
