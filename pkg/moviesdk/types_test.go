package moviesdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDashboardResponseLenientDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		user    bool
		actions []string
		links   []Link
	}{
		{"absent fields", `{}`, false, nil, nil},
		{"actions not an array", `{"actions":"Write reviews","links":{"label":"x"}}`, false, nil, nil},
		{"empty arrays stay empty", `{"actions":[],"links":[]}`, false, []string{}, []Link{}},
		{"wrong element shapes dropped", `{"actions":["a",1,null,"b"],"links":["/",{"label":"Home","href":"/"}]}`, false, []string{"a", "b"}, []Link{{Label: "Home", Href: "/"}}},
		{"user not an object", `{"user":"alice"}`, false, nil, nil},
		{"user object", `{"user":{"username":"alice"}}`, true, nil, nil},
		{"null elements dropped", `{"actions":[null],"links":[null]}`, false, []string{}, []Link{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DashboardResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &d))
			require.Equal(t, tt.user, d.User != nil)
			require.Equal(t, tt.actions, d.Actions)
			require.Equal(t, tt.links, d.Links)
		})
	}
}

func TestDashboardUserFieldsDecodedIndependently(t *testing.T) {
	t.Parallel()

	var d DashboardResponse
	body := `{"user":{"username":"alice","email":null,"role":7,"status":["active"]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	require.NotNil(t, d.User)
	require.NotNil(t, d.User.Username)
	require.Equal(t, "alice", *d.User.Username)
	require.Nil(t, d.User.Email)
	require.Nil(t, d.User.Role)
	require.Nil(t, d.User.Status)
}

func TestProfileOptionalFields(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.com","status":"active"}`), &p))
	require.Nil(t, p.Username)
	require.Nil(t, p.Role)
	require.Equal(t, "a@b.com", *p.Email)
	require.Equal(t, "active", *p.Status)
}
