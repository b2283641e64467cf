package models

import "sort"

// SectionKind identifies the section variant.
type SectionKind string

const (
	SectionPlain     SectionKind = "plain"
	SectionGrouping  SectionKind = "grouping"
	SectionComposite SectionKind = "composite"
)

// Section is a horizontal band of a sheet. Fields after Template apply to
// grouping and composite sections only.
type Section struct {
	ID          string      `json:"id"`
	Kind        SectionKind `json:"kind"`
	Collapsible bool        `json:"collapsible"`
	Collapsed   bool        `json:"collapsed"`
	Hidden      bool        `json:"hidden"`
	Rendered    bool        `json:"rendered"`
	// ProviderID references Report.Providers; empty when the section has no
	// data source of its own.
	ProviderID string `json:"provider,omitempty"`
	// Template is the section's own rows (plain sections).
	Template Area `json:"template"`

	SectionListeners []Listener `json:"section_listeners,omitempty"`
	CellListeners    []Listener `json:"cell_listeners,omitempty"`

	IndentColumns []string      `json:"indent_columns,omitempty"`
	Groups        []*GroupModel `json:"groups,omitempty"`
	// RowTemplate is the trailing detail row of a grouping section.
	RowTemplate *Area `json:"row_template,omitempty"`
	// ProviderUsage is the upper-cased provider-usage mode of a composite.
	ProviderUsage string     `json:"provider_usage,omitempty"`
	Sections      []*Section `json:"sections,omitempty"`
}

// TemplateRowsCount returns the number of template rows the section
// consumes.
func (s *Section) TemplateRowsCount() int {
	switch s.Kind {
	case SectionGrouping:
		n := groupsHeight(s.Groups)
		if s.RowTemplate != nil {
			n += s.RowTemplate.Height
		}
		return n
	case SectionComposite:
		n := groupsHeight(s.Groups)
		for _, child := range s.Sections {
			n += child.TemplateRowsCount()
		}
		return n
	default:
		return s.Template.Height
	}
}

// FindSection finds a descendant section by id, searching depth-first.
func (s *Section) FindSection(id string) *Section {
	for _, child := range s.Sections {
		if child.ID == id {
			return child
		}
		if found := child.FindSection(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk calls fn for the section and every descendant in document order.
func (s *Section) Walk(fn func(*Section)) {
	fn(s)
	for _, child := range s.Sections {
		child.Walk(fn)
	}
}

// Areas returns every area of the section subtree in template row order.
func (s *Section) Areas() []*Area {
	var out []*Area
	if s.Kind == SectionPlain {
		out = append(out, &s.Template)
	}
	type ordered struct {
		row   int
		areas []*Area
	}
	var parts []ordered
	for _, g := range s.Groups {
		var areas []*Area
		for _, st := range g.Styles {
			areas = append(areas, &st.Template)
		}
		if len(areas) > 0 {
			parts = append(parts, ordered{row: areas[0].Row, areas: areas})
		}
	}
	for _, child := range s.Sections {
		areas := child.Areas()
		if len(areas) > 0 {
			parts = append(parts, ordered{row: areas[0].Row, areas: areas})
		}
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].row < parts[j].row })
	for _, p := range parts {
		out = append(out, p.areas...)
	}
	if s.RowTemplate != nil {
		out = append(out, s.RowTemplate)
	}
	return out
}

func groupsHeight(groups []*GroupModel) int {
	n := 0
	for _, g := range groups {
		n += g.Height()
	}
	return n
}
