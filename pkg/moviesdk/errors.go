package moviesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why an API call failed so callers can apply a
// different policy per kind.
type ErrorKind int

const (
	// KindNetwork means no HTTP response was received.
	KindNetwork ErrorKind = iota + 1
	// KindUnauthorized means the API answered 401 or 403.
	KindUnauthorized
	// KindStatus means the API answered with any other non-2xx status.
	KindStatus
	// KindMalformed means a 2xx response carried an unusable body.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Operation names passed to Client.Observe.
const (
	OpLogin     = "login"
	OpMe        = "me"
	OpDashboard = "dashboard"
	OpLogout    = "logout"
)

// APIError is returned by every Client and Session method on failure.
type APIError struct {
	Kind ErrorKind

	// StatusCode is zero for KindNetwork.
	StatusCode int

	// Message is the server supplied error text, empty when none was given.
	Message string

	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("moviesdk: %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("moviesdk: %s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("moviesdk: %s error (status %d)", e.Kind, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf reports the ErrorKind of err, or zero if err is not an *APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// MessageOf returns the server supplied message carried by err, or fallback
// when there is none.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorEnvelope covers the two error shapes the API produces:
// {"error": {"message": "..."}} from its exception handlers and
// {"detail": "..."} from framework level validation.
type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// extractMessage pulls the human readable message out of an error body.
// Anything that is not one of the known shapes yields "".
func extractMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	if len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}

	if len(env.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(env.Detail, &detail); err == nil {
			return detail
		}
	}

	return ""
}

// parseErrorResponse converts a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	kind := KindStatus
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = KindUnauthorized
	}

	return &APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    extractMessage(body),
	}
}
