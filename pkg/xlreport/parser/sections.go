package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

func isSection(name string) bool {
	switch name {
	case "plain-section", "grouping-section", "composite-section":
		return true
	}
	return false
}

// sectionScope tracks the section ids declared directly in one container.
type sectionScope struct {
	owner string
	seen  map[string]bool
}

func newSectionScope(owner string) *sectionScope {
	return &sectionScope{owner: owner, seen: make(map[string]bool)}
}

func (s *sectionScope) add(id string) error {
	if s.seen[id] {
		return fmt.Errorf("%w: section %s already exists in %s", ErrDuplicateSection, id, s.owner)
	}
	s.seen[id] = true
	return nil
}

// parseSheetSections lays out the top-level sections of a sheet from row 0.
func (b *builder) parseSheetSections(children []*Node, res *Resolver) ([]*models.Section, error) {
	scope := newSectionScope("sheet " + res.sheet.Name)
	var sections []*models.Section
	offset := 0
	for _, c := range children {
		if !isSection(c.Name) {
			return nil, elementError(c, fmt.Errorf("%w: %s", ErrUnknownElement, c.Name))
		}
		s, err := b.parseSection(c, res, offset)
		if err != nil {
			return nil, elementError(c, err)
		}
		if err := scope.add(s.ID); err != nil {
			return nil, elementError(c, err)
		}
		sections = append(sections, s)
		offset += s.TemplateRowsCount()
	}
	return sections, nil
}

func (b *builder) parseSection(n *Node, res *Resolver, offset int) (*models.Section, error) {
	var attrs sectionAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	s := &models.Section{
		ID:          attrs.ID,
		Collapsible: boolOr(attrs.Collapsible, false),
		Collapsed:   boolOr(attrs.Collapsed, false),
		Hidden:      boolOr(attrs.Hidden, false),
		Rendered:    boolOr(attrs.Rendered, true),
		ProviderID:  attrs.Provider,
	}

	var err error
	switch n.Name {
	case "plain-section":
		err = b.parsePlain(n, s, attrs, res, offset)
	case "grouping-section":
		err = b.parseGrouping(n, s, attrs, res, offset)
	case "composite-section":
		err = b.parseComposite(n, s, attrs, res, offset)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownElement, n.Name)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *builder) parsePlain(n *Node, s *models.Section, attrs sectionAttrs, res *Resolver, offset int) error {
	s.Kind = models.SectionPlain
	height, err := intOr(attrs.Height, 1)
	if err != nil {
		return err
	}
	area, err := res.Allocate(offset, height)
	if err != nil {
		return err
	}
	area.Hidden = s.Hidden
	s.Template = area

	for _, c := range n.Children {
		if err := parseSectionListener(c, s); err != nil {
			return elementError(c, err)
		}
	}
	return nil
}

func (b *builder) parseGrouping(n *Node, s *models.Section, attrs sectionAttrs, res *Resolver, offset int) error {
	s.Kind = models.SectionGrouping
	s.IndentColumns = splitList(attrs.IndentColumns)
	rowHeight, err := intOr(attrs.RowHeight, 1)
	if err != nil {
		return err
	}

	height := 0
	for _, c := range n.Children {
		if c.Name == "group" {
			g, err := b.parseGroup(c, res, offset+height)
			if err != nil {
				return elementError(c, err)
			}
			s.Groups = append(s.Groups, g)
			height += g.Height()
			continue
		}
		if err := parseSectionListener(c, s); err != nil {
			return elementError(c, err)
		}
	}

	row, err := res.Allocate(offset+height, rowHeight)
	if err != nil {
		return err
	}
	s.RowTemplate = &row
	s.Template = extent(res, offset, height+rowHeight, s.Hidden)
	return nil
}

func (b *builder) parseComposite(n *Node, s *models.Section, attrs sectionAttrs, res *Resolver, offset int) error {
	s.Kind = models.SectionComposite
	s.IndentColumns = splitList(attrs.IndentColumns)
	s.ProviderUsage = strings.ToUpper(attrs.ProviderUsage)

	scope := newSectionScope("section " + s.ID)
	height := 0
	for _, c := range n.Children {
		switch {
		case c.Name == "group":
			g, err := b.parseGroup(c, res, offset+height)
			if err != nil {
				return elementError(c, err)
			}
			s.Groups = append(s.Groups, g)
			height += g.Height()
		case isSection(c.Name):
			child, err := b.parseSection(c, res, offset+height)
			if err != nil {
				return elementError(c, err)
			}
			if err := scope.add(child.ID); err != nil {
				return elementError(c, err)
			}
			s.Sections = append(s.Sections, child)
			height += child.TemplateRowsCount()
		default:
			if err := parseSectionListener(c, s); err != nil {
				return elementError(c, err)
			}
		}
	}
	s.Template = extent(res, offset, height, s.Hidden)
	return nil
}

func (b *builder) parseGroup(n *Node, res *Resolver, offset int) (*models.GroupModel, error) {
	var attrs groupAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	height, err := intOr(attrs.Height, 1)
	if err != nil {
		return nil, err
	}
	g := &models.GroupModel{
		DiscriminatorField: attrs.DiscriminatorField,
		LevelField:         attrs.LevelField,
		Collapsible:        boolOr(attrs.Collapsible, true),
		Collapsed:          boolOr(attrs.Collapsed, false),
		Hidden:             boolOr(attrs.Hidden, false),
		SkipEmptyGroups:    boolOr(attrs.SkipEmptyGroups, false),
		RowsCount:          height,
	}

	for _, c := range n.Children {
		if c.Name != "group-style" {
			return nil, elementError(c, fmt.Errorf("%w: %s", ErrUnknownElement, c.Name))
		}
		var sa groupStyleAttrs
		if err := bindAttrs(c, &sa); err != nil {
			return nil, elementError(c, err)
		}
		level, err := intOr(sa.Level, 0)
		if err != nil {
			return nil, elementError(c, err)
		}
		style, err := allocateStyle(res, offset, height, g.Hidden)
		if err != nil {
			return nil, elementError(c, err)
		}
		style.Level = level
		style.Default = boolOr(sa.Default, false)
		g.Styles = append(g.Styles, style)
		offset += height
	}

	if len(g.Styles) == 0 {
		style, err := allocateStyle(res, offset, height, g.Hidden)
		if err != nil {
			return nil, err
		}
		style.Default = true
		g.Styles = append(g.Styles, style)
	}
	return g, nil
}

func allocateStyle(res *Resolver, offset, height int, hidden bool) (*models.GroupStyle, error) {
	area, err := res.Allocate(offset, height)
	if err != nil {
		return nil, err
	}
	area.Hidden = hidden
	return &models.GroupStyle{Template: area}, nil
}

// extent is the row range of a grouping or composite section. Its rows are
// captured by the nested areas.
func extent(res *Resolver, offset, height int, hidden bool) models.Area {
	return models.Area{
		Sheet:   res.sheet.Name,
		Row:     offset,
		Height:  height,
		Columns: res.columns,
		Hidden:  hidden,
	}
}

func parseSectionListener(n *Node, s *models.Section) error {
	switch n.Name {
	case "section-listener":
		l, err := parseListener(n)
		if err != nil {
			return err
		}
		s.SectionListeners = append(s.SectionListeners, l)
	case "cell-listener":
		l, err := parseListener(n)
		if err != nil {
			return err
		}
		s.CellListeners = append(s.CellListeners, l)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownElement, n.Name)
	}
	return nil
}
