package moviesdk

import (
	"bytes"
	"encoding/json"
)

// TokenResponse is returned by POST /auth/login.
type TokenResponse struct {
	// AccessToken may be empty if the API chose not to issue one.
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Profile is returned by GET /auth/me. Every field is optional.
type Profile struct {
	UserID   *string `json:"user_id,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// DashboardUser is the nested user object of a dashboard payload.
type DashboardUser struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// Link is a quick link rendered in the dashboard sidebar.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// DashboardResponse is returned by GET /dashboard/{role}.
//
// User is nil when absent or not an object; its fields are decoded one by
// one and a field of the wrong type is left nil. Actions and Links are nil
// when absent or not arrays; array elements of the wrong shape (including
// null) are dropped.
type DashboardResponse struct {
	User    *DashboardUser `json:"user,omitempty"`
	Actions []string       `json:"actions,omitempty"`
	Links   []Link         `json:"links,omitempty"`
}

// UnmarshalJSON implements the lenient decoding described on the type.
func (d *DashboardResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		User    json.RawMessage `json:"user"`
		Actions json.RawMessage `json:"actions"`
		Links   json.RawMessage `json:"links"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*d = DashboardResponse{}

	if isObject(raw.User) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw.User, &fields); err == nil {
			d.User = &DashboardUser{
				Username: stringField(fields, "username"),
				Email:    stringField(fields, "email"),
				Role:     stringField(fields, "role"),
				Status:   stringField(fields, "status"),
			}
		}
	}

	for _, el := range arrayElements(raw.Actions) {
		if action := decodeString(el); action != nil {
			d.Actions = append(d.Actions, *action)
		}
	}
	if d.Actions == nil && isArray(raw.Actions) {
		d.Actions = []string{}
	}

	for _, el := range arrayElements(raw.Links) {
		if !isObject(el) {
			continue
		}
		var link Link
		if err := json.Unmarshal(el, &link); err == nil {
			d.Links = append(d.Links, link)
		}
	}
	if d.Links == nil && isArray(raw.Links) {
		d.Links = []Link{}
	}

	return nil
}

// stringField returns fields[name] when it is a JSON string.
func stringField(fields map[string]json.RawMessage, name string) *string {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	return decodeString(raw)
}

// decodeString returns nil for null and for anything that is not a string.
func decodeString(raw json.RawMessage) *string {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func arrayElements(raw json.RawMessage) []json.RawMessage {
	if !isArray(raw) {
		return nil
	}
	var els []json.RawMessage
	if err := json.Unmarshal(raw, &els); err != nil {
		return nil
	}
	return els
}
