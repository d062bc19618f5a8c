package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSectionsFor(t *testing.T) {
	t.Parallel()

	t.Run("guest has two sections", func(t *testing.T) {
		sections := SectionsFor(RoleGuest)
		require.Len(t, sections, 2)
		require.Equal(t, "Movies", sections[0].Title)
		require.Equal(t, "Reviews", sections[1].Title)
	})

	t.Run("administrator has six sections with export", func(t *testing.T) {
		sections := SectionsFor(RoleAdministrator)
		require.Len(t, sections, 6)

		titles := make([]string, 0, len(sections))
		for _, s := range sections {
			titles = append(titles, s.Title)
		}
		require.Contains(t, titles, "Movies export")
		require.Equal(t, "/movies/download", sections[5].Href)
	})

	t.Run("moderator adds queue management", func(t *testing.T) {
		sections := SectionsFor(RoleModerator)
		require.Len(t, sections, 5)
		require.Equal(t, "Reports queue", sections[2].Title)
		require.Equal(t, "Penalties", sections[3].Title)
	})

	t.Run("every role has sections and a description", func(t *testing.T) {
		for _, r := range Roles() {
			require.NotEmpty(t, SectionsFor(r), "role %s", r)
			require.NotEmpty(t, DescriptionFor(r), "role %s", r)
			for _, s := range SectionsFor(r) {
				require.NotEmpty(t, s.Title)
				require.NotEmpty(t, s.Href)
				require.NotEmpty(t, s.CTA)
			}
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		require.Nil(t, SectionsFor("admin"))
		require.Empty(t, DescriptionFor("admin"))
	})

	t.Run("returns a copy", func(t *testing.T) {
		s := SectionsFor(RoleMember)
		s[0].Title = "changed"
		require.Equal(t, "Recommendations", SectionsFor(RoleMember)[0].Title)
	})
}

func TestLoadLayoutsRejectsIncompleteTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"not yaml", "{{{"},
		{"unknown role", "owner:\n  description: x\n  sections: [{title: a, href: /a, cta: go}]\n"},
		{"missing roles", "guest:\n  description: x\n  sections: [{title: a, href: /a, cta: go}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadLayouts([]byte(tt.raw))
			require.Error(t, err)
		})
	}

	t.Run("embedded table loads", func(t *testing.T) {
		l, err := loadLayouts(sectionsYAML)
		require.NoError(t, err)
		require.Len(t, l, 5)
	})
}
