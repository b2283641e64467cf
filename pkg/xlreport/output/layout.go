package output

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

// PaletteSheet is the name of the layout sheet sampling every palette style.
const PaletteSheet = "Palette"

var layoutHeader = []any{"Section", "Kind", "Area", "Provider", "First Row", "Rows", "Range", "Hidden"}

// LayoutRow is one area of a report sheet as listed in the layout workbook.
type LayoutRow struct {
	// Path is the slash-separated chain of section ids.
	Path string
	Kind models.SectionKind
	// Label names the area within its section.
	Label    string
	Provider string
	Area     *models.Area
}

// SheetLayout lists every area of a sheet ordered by template row.
func SheetLayout(s *models.Sheet) []LayoutRow {
	var rows []LayoutRow
	var walk func(prefix string, sec *models.Section)
	walk = func(prefix string, sec *models.Section) {
		path := sec.ID
		if prefix != "" {
			path = prefix + "/" + sec.ID
		}
		add := func(label string, a *models.Area) {
			rows = append(rows, LayoutRow{Path: path, Kind: sec.Kind, Label: label, Provider: sec.ProviderID, Area: a})
		}
		if sec.Kind == models.SectionPlain {
			add("template", &sec.Template)
		}
		for i, g := range sec.Groups {
			for _, st := range g.Styles {
				label := fmt.Sprintf("group %d level %d", i, st.Level)
				if st.Default {
					label += " (default)"
				}
				add(label, &st.Template)
			}
		}
		if sec.RowTemplate != nil {
			add("row", sec.RowTemplate)
		}
		for _, child := range sec.Sections {
			walk(path, child)
		}
	}
	for _, sec := range s.Sections {
		walk("", sec)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Area.Row < rows[j].Area.Row })
	return rows
}

// LayoutWorkbook renders the row layout of a report: one sheet per report
// sheet listing its areas, plus a sheet sampling the style palette.
func LayoutWorkbook(r *models.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	first := true
	newSheet := func(name string) error {
		if first {
			first = false
			return f.SetSheetName("Sheet1", name)
		}
		_, err := f.NewSheet(name)
		return err
	}

	for _, s := range r.Sheets {
		if err := newSheet(s.ID); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.ID, err)
		}
		if err := writeLayoutSheet(f, s, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.ID, err)
		}
	}

	name := PaletteSheet
	for r.FindSheet(name) != nil {
		name += "_"
	}
	if err := newSheet(name); err != nil {
		f.Close()
		return nil, err
	}
	if err := writePaletteSheet(f, name, r.Palette, header); err != nil {
		f.Close()
		return nil, fmt.Errorf("palette: %w", err)
	}
	return f, nil
}

func writeLayoutSheet(f *excelize.File, s *models.Sheet, header int) error {
	if err := writeHeader(f, s.ID, layoutHeader, header); err != nil {
		return err
	}
	for i, row := range SheetLayout(s) {
		a := row.Area
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.Path, string(row.Kind), row.Label, row.Provider, a.Row + 1, a.Height, a.Ref(), a.Hidden}
		if err := f.SetSheetRow(s.ID, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(s.ID, "A", "A", 30); err != nil {
		return err
	}
	return f.SetColWidth(s.ID, "C", "C", 24)
}

func writePaletteSheet(f *excelize.File, sheet string, p *models.Palette, header int) error {
	if err := writeHeader(f, sheet, []any{"Style", "Sample"}, header); err != nil {
		return err
	}
	for id := 0; id < p.Len(); id++ {
		st, _ := p.Style(id)
		styleID, err := f.NewStyle(&st)
		if err != nil {
			return fmt.Errorf("style %d: %w", id, err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", id+2), id); err != nil {
			return err
		}
		sample := fmt.Sprintf("B%d", id+2)
		if err := f.SetCellValue(sheet, sample, 1234.5); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, sample, sample, styleID); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, values []any, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
