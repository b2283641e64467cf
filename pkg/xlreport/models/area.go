package models

import "github.com/xuri/excelize/v2"

// CellKind classifies a template cell.
type CellKind string

const (
	CellBlank   CellKind = "blank"
	CellText    CellKind = "text"
	CellNumber  CellKind = "number"
	CellBool    CellKind = "bool"
	CellError   CellKind = "error"
	CellFormula CellKind = "formula"
)

// AreaCell is one template cell captured in an area.
type AreaCell struct {
	// Column is the zero-based column index.
	Column int `json:"column"`
	// Kind is the template cell type.
	Kind CellKind `json:"kind"`
	// Text is the cell content as text (expressions stay verbatim).
	Text string `json:"text,omitempty"`
	// Style is the palette id of the cell formatting.
	Style int `json:"style"`
}

// AreaRow is one template row captured in an area.
type AreaRow struct {
	// Height is the row height in points.
	Height float64    `json:"height"`
	Hidden bool       `json:"hidden,omitempty"`
	Cells  []AreaCell `json:"cells,omitempty"`
}

// CellRange is an inclusive range of cells; rows are relative to the area.
type CellRange struct {
	FirstRow int `json:"first_row"`
	LastRow  int `json:"last_row"`
	FirstCol int `json:"first_col"`
	LastCol  int `json:"last_col"`
}

// Area is a contiguous block of template rows on one sheet.
type Area struct {
	// Sheet is the template sheet name.
	Sheet string `json:"sheet"`
	// Row is the zero-based first row.
	Row int `json:"row"`
	// Height is the number of rows.
	Height int `json:"height"`
	// Columns is the number of template columns spanned.
	Columns int  `json:"columns"`
	Hidden  bool `json:"hidden,omitempty"`
	// Rows holds one entry per template row of the area.
	Rows []AreaRow `json:"rows,omitempty"`
	// Merged lists merged regions clipped to the area.
	Merged []CellRange `json:"merged,omitempty"`
}

// End returns the row just past the area.
func (a Area) End() int {
	return a.Row + a.Height
}

// Ref returns the A1-style range covered by the area, or "" for an empty
// area.
func (a Area) Ref() string {
	if a.Height <= 0 {
		return ""
	}
	cols := a.Columns
	if cols < 1 {
		cols = 1
	}
	first, err := excelize.CoordinatesToCellName(1, a.Row+1)
	if err != nil {
		return ""
	}
	last, err := excelize.CoordinatesToCellName(cols, a.End())
	if err != nil {
		return ""
	}
	return first + ":" + last
}
