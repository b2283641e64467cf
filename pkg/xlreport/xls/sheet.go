package xls

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Default column width in characters when a sheet has no DEFCOLWIDTH record.
const defaultColumnChars = 8

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

var errorText = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
}

// Cell is one cell record of a worksheet.
type Cell struct {
	Col  int
	XF   int
	Kind CellKind
	Text string
}

// Row is one worksheet row with its cells ordered by column.
type Row struct {
	Index int
	// Height in twips; 0 means the sheet default.
	Height int
	Hidden bool
	XF     int
	Cells  []Cell
}

// ColumnInfo is a COLINFO record.
type ColumnInfo struct {
	First  int
	Last   int
	Width  int // 1/256 of a character
	XF     int
	Hidden bool
}

// CellRange is an inclusive range of cells.
type CellRange struct {
	FirstRow int
	LastRow  int
	FirstCol int
	LastCol  int
}

// HeaderFooter holds the three sections of a page header or footer.
type HeaderFooter struct {
	Raw    string
	Left   string
	Center string
	Right  string
}

// PrintSetup is the content of a SETUP record.
type PrintSetup struct {
	PaperSize    int
	Scale        int
	PageStart    int
	FitWidth     int
	FitHeight    int
	Options      int
	HResolution  int
	VResolution  int
	HeaderMargin float64
	FooterMargin float64
	Copies       int
}

// SETUP option bits.
const (
	SetupLeftToRight   = 0x0001
	SetupPortrait      = 0x0002
	SetupNoPrinterData = 0x0004
	SetupNoColor       = 0x0008
	SetupDraft         = 0x0010
	SetupNotes         = 0x0020
	SetupNoOrientation = 0x0040
	SetupUsePage       = 0x0080
)

// Sheet is the structural view of one worksheet.
type Sheet struct {
	Name       string
	Visibility int
	// DefaultColumnWidth is in characters.
	DefaultColumnWidth int
	// DefaultRowHeight is in twips.
	DefaultRowHeight int
	Columns          []ColumnInfo
	Header           HeaderFooter
	Footer           HeaderFooter
	PrintSetup       PrintSetup
	Merged           []CellRange
	// PrintAreas are the ranges of the sheet's built-in print area name.
	PrintAreas []CellRange

	dimRows int
	maxCol  int
	rows    map[int]*Row
}

func parseSheet(wb *Workbook, bs boundSheet, records []Record) (*Sheet, error) {
	s := &Sheet{
		Name:               bs.name,
		Visibility:         bs.visibility,
		DefaultColumnWidth: defaultColumnChars,
		DefaultRowHeight:   255,
		PrintSetup:         PrintSetup{PaperSize: 1, Scale: 100, PageStart: 1, FitWidth: 1, FitHeight: 1, Options: SetupPortrait, Copies: 1, HeaderMargin: 0.5, FooterMargin: 0.5},
		maxCol:             -1,
		rows:               make(map[int]*Row),
	}

	depth := 0
	for _, rec := range records {
		switch rec.Op {
		case opBOF:
			depth++
			continue
		case opEOF:
			depth--
			continue
		}
		if depth > 1 {
			// embedded chart substream
			continue
		}
		if err := s.handle(wb, rec); err != nil {
			return nil, &RecordError{Op: rec.Op, Err: err}
		}
	}

	for _, row := range s.rows {
		sort.Slice(row.Cells, func(i, j int) bool { return row.Cells[i].Col < row.Cells[j].Col })
	}
	return s, nil
}

func (s *Sheet) handle(wb *Workbook, rec Record) error {
	data := rec.Data
	switch rec.Op {
	case opDimensions:
		if len(data) >= 8 {
			s.dimRows = int(u32(data, 4))
		}
	case opDefColWidth:
		s.DefaultColumnWidth = u16(data, 0)
	case opDefaultRowHigh:
		if len(data) >= 4 {
			s.DefaultRowHeight = u16(data, 2)
		}
	case opColInfo:
		if len(data) < 10 {
			return fmt.Errorf("COLINFO record too short")
		}
		s.Columns = append(s.Columns, ColumnInfo{
			First:  u16(data, 0),
			Last:   u16(data, 2),
			Width:  u16(data, 4),
			XF:     u16(data, 6),
			Hidden: u16(data, 8)&0x0001 != 0,
		})
	case opHeader, opFooter:
		hf, err := readHeaderFooter(data)
		if err != nil {
			return err
		}
		if rec.Op == opHeader {
			s.Header = hf
		} else {
			s.Footer = hf
		}
	case opSetup:
		s.PrintSetup = readSetup(data)
	case opMergedCells:
		n := u16(data, 0)
		for i := 0; i < n && 2+i*8+8 <= len(data); i++ {
			p := 2 + i*8
			s.Merged = append(s.Merged, CellRange{
				FirstRow: u16(data, p),
				LastRow:  u16(data, p+2),
				FirstCol: u16(data, p+4),
				LastCol:  u16(data, p+6),
			})
		}
	case opRow:
		if len(data) < 16 {
			return fmt.Errorf("ROW record too short")
		}
		row := s.row(u16(data, 0))
		flags := u16(data, 12)
		row.Height = u16(data, 6) & 0x7FFF
		row.Hidden = flags&0x0020 != 0
		if flags&0x0080 != 0 {
			row.XF = u16(data, 14) & 0x0FFF
		}
	case opLabelSST:
		if len(data) < 10 {
			return fmt.Errorf("LABELSST record too short")
		}
		idx := int(u32(data, 6))
		if idx >= len(wb.SST) {
			return fmt.Errorf("shared string %d out of range", idx)
		}
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellText, Text: wb.SST[idx]})
	case opLabel:
		text, _, err := unicodeString(data, 6, 2)
		if err != nil {
			return err
		}
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellText, Text: text})
	case opNumber:
		if len(data) < 14 {
			return fmt.Errorf("NUMBER record too short")
		}
		v := math.Float64frombits(binary.LittleEndian.Uint64(data[6:]))
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellNumber, Text: formatNumber(v)})
	case opRK:
		if len(data) < 10 {
			return fmt.Errorf("RK record too short")
		}
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellNumber, Text: formatNumber(decodeRK(u32(data, 6)))})
	case opMulRK:
		row, first := u16(data, 0), u16(data, 2)
		for i := 0; 4+i*6+6 <= len(data)-2; i++ {
			p := 4 + i*6
			s.addCell(row, Cell{Col: first + i, XF: u16(data, p), Kind: CellNumber, Text: formatNumber(decodeRK(u32(data, p+2)))})
		}
	case opBlank:
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellBlank})
	case opMulBlank:
		row, first := u16(data, 0), u16(data, 2)
		for i := 0; 4+i*2+2 <= len(data)-2; i++ {
			s.addCell(row, Cell{Col: first + i, XF: u16(data, 4+i*2), Kind: CellBlank})
		}
	case opBoolErr:
		if len(data) < 8 {
			return fmt.Errorf("BOOLERR record too short")
		}
		cell := Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellBool, Text: "FALSE"}
		if data[7] != 0 {
			cell.Kind = CellError
			cell.Text = errorText[data[6]]
		} else if data[6] != 0 {
			cell.Text = "TRUE"
		}
		s.addCell(u16(data, 0), cell)
	case opFormula:
		if len(data) < 6 {
			return fmt.Errorf("FORMULA record too short")
		}
		s.addCell(u16(data, 0), Cell{Col: u16(data, 2), XF: u16(data, 4), Kind: CellFormula})
	}
	return nil
}

func (s *Sheet) row(index int) *Row {
	r, ok := s.rows[index]
	if !ok {
		r = &Row{Index: index}
		s.rows[index] = r
	}
	return r
}

func (s *Sheet) addCell(row int, c Cell) {
	r := s.row(row)
	r.Cells = append(r.Cells, c)
	if c.Col > s.maxCol {
		s.maxCol = c.Col
	}
}

// RowCount is the number of physical rows: the DIMENSIONS bound or the last
// row that carries a record, whichever is larger.
func (s *Sheet) RowCount() int {
	n := s.dimRows
	for idx := range s.rows {
		if idx+1 > n {
			n = idx + 1
		}
	}
	return n
}

// LastColumn returns the highest column index holding a cell, or -1.
func (s *Sheet) LastColumn() int {
	return s.maxCol
}

// Row returns the row at index, if the sheet has any record for it.
func (s *Sheet) Row(index int) (*Row, bool) {
	r, ok := s.rows[index]
	return r, ok
}

// ColumnWidth returns the width of a column in 1/256 of a character.
func (s *Sheet) ColumnWidth(col int) int {
	for _, ci := range s.Columns {
		if col >= ci.First && col <= ci.Last {
			return ci.Width
		}
	}
	return s.DefaultColumnWidth * 256
}

// ColumnHidden reports whether a column is hidden.
func (s *Sheet) ColumnHidden(col int) bool {
	for _, ci := range s.Columns {
		if col >= ci.First && col <= ci.Last {
			return ci.Hidden
		}
	}
	return false
}

func readSetup(data []byte) PrintSetup {
	ps := PrintSetup{
		PaperSize:   u16(data, 0),
		Scale:       u16(data, 2),
		PageStart:   u16(data, 4),
		FitWidth:    u16(data, 6),
		FitHeight:   u16(data, 8),
		Options:     u16(data, 10),
		HResolution: u16(data, 12),
		VResolution: u16(data, 14),
		Copies:      u16(data, 32),
	}
	if len(data) >= 32 {
		ps.HeaderMargin = math.Float64frombits(binary.LittleEndian.Uint64(data[16:]))
		ps.FooterMargin = math.Float64frombits(binary.LittleEndian.Uint64(data[24:]))
	}
	return ps
}

// decodeRK decodes the packed RK number format.
func decodeRK(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&0xFFFFFFFC) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
