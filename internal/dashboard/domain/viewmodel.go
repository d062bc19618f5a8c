package domain

// Profile is the fully resolved user card shown on a dashboard. Every field
// holds a value; missing upstream data has already been defaulted.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Status   string `json:"status"`
}

// Link is a quick link returned by the catalog API.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// ViewModel is everything the dashboard templates need. It is rebuilt on
// every page load and never stored.
type ViewModel struct {
	Profile     Profile   `json:"profile"`
	Description string    `json:"description"`
	Actions     []string  `json:"actions"`
	Links       []Link    `json:"links"`
	Sections    []Section `json:"sections"`
}

// StatusActive is the profile status the catalog reports for enabled accounts.
const StatusActive = "active"
