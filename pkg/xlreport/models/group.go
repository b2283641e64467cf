package models

// GroupModel describes one grouping level of a grouping or composite
// section.
type GroupModel struct {
	DiscriminatorField string `json:"discriminator_field,omitempty"`
	LevelField         string `json:"level_field,omitempty"`
	Collapsible        bool   `json:"collapsible"`
	Collapsed          bool   `json:"collapsed"`
	Hidden             bool   `json:"hidden"`
	SkipEmptyGroups    bool   `json:"skip_empty_groups"`
	// RowsCount is the number of rows of every style template.
	RowsCount int `json:"rows_count"`
	// Styles is never empty after compilation.
	Styles []*GroupStyle `json:"styles"`
}

// GroupStyle is the template used for one nesting level of a group.
type GroupStyle struct {
	Level    int  `json:"level"`
	Default  bool `json:"default"`
	Template Area `json:"template"`
}

// StylesCount returns the number of styles.
func (g *GroupModel) StylesCount() int {
	return len(g.Styles)
}

// Height returns the number of template rows the group consumes.
func (g *GroupModel) Height() int {
	return g.StylesCount() * g.RowsCount
}

// StyleForLevel returns the style declared for level, else the default
// style, else the first style.
func (g *GroupModel) StyleForLevel(level int) *GroupStyle {
	var fallback *GroupStyle
	for _, s := range g.Styles {
		if s.Level == level {
			return s
		}
		if s.Default && fallback == nil {
			fallback = s
		}
	}
	if fallback != nil {
		return fallback
	}
	if len(g.Styles) > 0 {
		return g.Styles[0]
	}
	return nil
}
