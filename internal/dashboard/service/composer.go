package service

import (
	"github.com/aussiebroadwan/cinedash/internal/dashboard/domain"
	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
)

// Compose merges the /auth/me and /dashboard/{role} payloads with the
// static section table for target. Either payload may be nil. Every field
// of the result is populated and Actions, Links and Sections are never nil.
//
// Profile fields prefer the dashboard's nested user, then the profile, then
// a default. Sections never come from the network.
func Compose(profile *moviesdk.Profile, dash *moviesdk.DashboardResponse, target domain.Role) domain.ViewModel {
	var user moviesdk.DashboardUser
	if dash != nil && dash.User != nil {
		user = *dash.User
	}
	var me moviesdk.Profile
	if profile != nil {
		me = *profile
	}

	vm := domain.ViewModel{
		Profile: domain.Profile{
			Username: firstOf(user.Username, me.Username, ""),
			Email:    firstOf(user.Email, me.Email, ""),
			Role:     domain.Normalize(firstOf(user.Role, me.Role, string(target))),
			Status:   firstOf(user.Status, me.Status, ""),
		},
		Description: domain.DescriptionFor(target),
		Actions:     []string{},
		Links:       []domain.Link{},
		Sections:    domain.SectionsFor(target),
	}

	if dash != nil {
		vm.Actions = append(vm.Actions, dash.Actions...)
		for _, l := range dash.Links {
			vm.Links = append(vm.Links, domain.Link{Label: l.Label, Href: l.Href})
		}
	}
	if vm.Sections == nil {
		vm.Sections = []domain.Section{}
	}

	return vm
}

// GuestView is the dashboard shown to visitors without a session.
func GuestView() domain.ViewModel {
	return domain.ViewModel{
		Profile: domain.Profile{
			Username: "Guest",
			Email:    "N/A",
			Role:     domain.RoleGuest,
			Status:   domain.StatusActive,
		},
		Description: domain.DescriptionFor(domain.RoleGuest),
		Actions:     []string{},
		Links:       []domain.Link{},
		Sections:    domain.SectionsFor(domain.RoleGuest),
	}
}

// firstOf returns the first non-nil value, or def. An explicit empty string
// from the API wins over later sources.
func firstOf(a, b *string, def string) string {
	switch {
	case a != nil:
		return *a
	case b != nil:
		return *b
	default:
		return def
	}
}
