package domain

// Role is the capability tier a user holds in the movie catalog. Values
// arriving from the catalog API or a route parameter are raw strings and
// must go through Normalize before they are compared.
type Role string

const (
	RoleGuest         Role = "guest"
	RoleMember        Role = "member"
	RoleCritic        Role = "critic"
	RoleModerator     Role = "moderator"
	RoleAdministrator Role = "administrator"
)

// DefaultRouteRole is used when a dashboard route names an unknown role.
const DefaultRouteRole = RoleMember

var roleAliases = map[string]Role{
	"admin":  RoleAdministrator,
	"admins": RoleAdministrator,
	"mod":    RoleModerator,
}

// Roles returns the canonical roles in display order.
func Roles() []Role {
	return []Role{RoleGuest, RoleMember, RoleCritic, RoleModerator, RoleAdministrator}
}

// Normalize maps known aliases onto their canonical role and passes every
// other value through unchanged. Matching is case-sensitive. The result is
// not guaranteed to be Valid.
func Normalize(raw string) Role {
	if r, ok := roleAliases[raw]; ok {
		return r
	}
	return Role(raw)
}

// Valid reports whether r is one of the five canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleMember, RoleCritic, RoleModerator, RoleAdministrator:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRouteRole resolves the {role} segment of a dashboard URL.
func ParseRouteRole(raw string) Role {
	r := Normalize(raw)
	if !r.Valid() {
		return DefaultRouteRole
	}
	return r
}
