package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Section is a static dashboard card pointing at a feature area.
type Section struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Href        string `yaml:"href" json:"href"`
	CTA         string `yaml:"cta" json:"cta"`
}

type roleLayout struct {
	Description string    `yaml:"description"`
	Sections    []Section `yaml:"sections"`
}

//go:embed sections.yaml
var sectionsYAML []byte

var layouts = mustLoadLayouts(sectionsYAML)

// mustLoadLayouts parses the embedded table. The table ships with the binary
// so any gap in it is a programming error.
func mustLoadLayouts(raw []byte) map[Role]roleLayout {
	l, err := loadLayouts(raw)
	if err != nil {
		panic(err)
	}
	return l
}

func loadLayouts(raw []byte) (map[Role]roleLayout, error) {
	var parsed map[string]roleLayout
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("domain: parse sections: %w", err)
	}

	out := make(map[Role]roleLayout, len(parsed))
	for name, layout := range parsed {
		r := Role(name)
		if !r.Valid() {
			return nil, fmt.Errorf("domain: sections: unknown role %q", name)
		}
		out[r] = layout
	}

	for _, r := range Roles() {
		layout, ok := out[r]
		if !ok {
			return nil, fmt.Errorf("domain: sections: missing role %q", r)
		}
		if layout.Description == "" {
			return nil, fmt.Errorf("domain: sections: role %q has no description", r)
		}
		if len(layout.Sections) == 0 {
			return nil, fmt.Errorf("domain: sections: role %q has no sections", r)
		}
	}

	return out, nil
}

// SectionsFor returns the ordered dashboard sections for r. The slice is a
// copy and may be modified by the caller. Unknown roles yield nil.
func SectionsFor(r Role) []Section {
	layout, ok := layouts[r]
	if !ok {
		return nil
	}
	out := make([]Section, len(layout.Sections))
	copy(out, layout.Sections)
	return out
}

// DescriptionFor returns the capability summary for r, or "" when r is not
// a canonical role.
func DescriptionFor(r Role) string {
	return layouts[r].Description
}
