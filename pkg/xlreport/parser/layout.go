package parser

import (
	"fmt"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls"
)

// Resolver allocates template row ranges of one sheet to areas.
type Resolver struct {
	wb      *xls.Workbook
	sheet   *xls.Sheet
	palette *models.Palette
	rows    int
	columns int
}

// NewResolver returns a resolver for a template sheet. Formatting of the
// captured cells is registered in palette.
func NewResolver(wb *xls.Workbook, sheet *xls.Sheet, palette *models.Palette) *Resolver {
	columns := sheet.LastColumn() + 1
	if columns < 1 {
		columns = 1
	}
	return &Resolver{
		wb:      wb,
		sheet:   sheet,
		palette: palette,
		rows:    sheet.RowCount(),
		columns: columns,
	}
}

// Rows returns the number of physical rows of the template sheet.
func (r *Resolver) Rows() int {
	return r.rows
}

// Columns returns the number of template columns holding cells.
func (r *Resolver) Columns() int {
	return r.columns
}

// Allocate returns the area of height rows starting at offset. The next
// sibling starts at offset+height.
func (r *Resolver) Allocate(offset, height int) (models.Area, error) {
	if offset < 0 || height < 0 {
		return models.Area{}, fmt.Errorf("%w: rows %d..%d", ErrLayoutOverflow, offset, offset+height)
	}
	if offset+height > r.rows {
		return models.Area{}, fmt.Errorf("%w: rows %d..%d of sheet %q (%d rows)",
			ErrLayoutOverflow, offset, offset+height-1, r.sheet.Name, r.rows)
	}

	area := models.Area{
		Sheet:   r.sheet.Name,
		Row:     offset,
		Height:  height,
		Columns: r.columns,
	}
	for i := offset; i < offset+height; i++ {
		area.Rows = append(area.Rows, r.captureRow(i))
	}
	area.Merged = r.mergedWithin(offset, offset+height)
	return area, nil
}

// captureRow copies one template row, registering cell formatting in the
// palette.
func (r *Resolver) captureRow(index int) models.AreaRow {
	row := models.AreaRow{Height: TwipsToPoints(r.sheet.DefaultRowHeight)}
	src, ok := r.sheet.Row(index)
	if !ok {
		return row
	}
	if src.Height > 0 {
		row.Height = TwipsToPoints(src.Height)
	}
	row.Hidden = src.Hidden

	for _, c := range src.Cells {
		row.Cells = append(row.Cells, models.AreaCell{
			Column: c.Col,
			Kind:   models.CellKind(c.Kind),
			Text:   c.Text,
			Style:  r.palette.Register(r.wb.Style(c.XF)),
		})
	}
	return row
}

// mergedWithin returns the merged regions intersecting rows [from, to),
// clipped to them, with rows relative to from.
func (r *Resolver) mergedWithin(from, to int) []models.CellRange {
	var out []models.CellRange
	for _, m := range r.sheet.Merged {
		if m.LastRow < from || m.FirstRow >= to {
			continue
		}
		out = append(out, models.CellRange{
			FirstRow: max(m.FirstRow, from) - from,
			LastRow:  min(m.LastRow, to-1) - from,
			FirstCol: m.FirstCol,
			LastCol:  m.LastCol,
		})
	}
	return out
}
