package xls

import (
	"fmt"
	"strings"
)

// Font is a FONT record.
type Font struct {
	Name      string
	Height    int // twips
	Italic    bool
	Strike    bool
	Color     int
	Weight    int
	Underline int
	Family    int
	Charset   int
}

// Bold reports whether the font weight is bold.
func (f Font) Bold() bool {
	return f.Weight >= 700
}

// XF is an extended format record.
type XF struct {
	Font        int
	Format      int
	Locked      bool
	Hidden      bool
	HAlign      int
	Wrap        bool
	VAlign      int
	Rotation    int
	Indent      int
	Shrink      bool
	BorderLeft  int
	BorderRight int
	BorderTop   int
	BorderBot   int
	ColorLeft   int
	ColorRight  int
	ColorTop    int
	ColorBot    int
	Pattern     int
	PatternFore int
	PatternBack int
}

// Workbook is the structural view of a BIFF8 workbook stream.
type Workbook struct {
	Codepage int
	Fonts    []Font
	Formats  map[int]string
	XFs      []XF
	// Colors maps palette indexes to "RRGGBB" values.
	Colors map[int]string
	SST    []string
	Sheets []*Sheet

	raw     []byte
	globals []Record
	trimmed bool
}

type boundSheet struct {
	name       string
	offset     int
	visibility int
	kind       int
}

// Parse reads a BIFF8 workbook stream.
func Parse(stream []byte) (*Workbook, error) {
	globals, err := readSubstream(stream, 0, streamGlobals)
	if err != nil {
		return nil, fmt.Errorf("workbook globals: %w", err)
	}

	wb := &Workbook{
		Formats: make(map[int]string),
		Colors:  defaultColors(),
		raw:     stream,
		globals: globals,
	}

	var bound []boundSheet
	printAreas := make(map[int][]CellRange)
	for i, rec := range globals {
		var err error
		switch rec.Op {
		case opCodepage:
			wb.Codepage = u16(rec.Data, 0)
		case opFont:
			err = wb.handleFont(rec.Data)
		case opFormat:
			err = wb.handleFormat(rec.Data)
		case opXF:
			wb.handleXF(rec.Data)
		case opPalette:
			wb.handlePalette(rec.Data)
		case opBoundSheet:
			var bs boundSheet
			bs, err = readBoundSheet(rec.Data)
			bound = append(bound, bs)
		case opName:
			if itab, ranges, ok := readPrintArea(rec.Data); ok {
				printAreas[itab] = append(printAreas[itab], ranges...)
			}
		case opSST:
			wb.SST, err = readSST(continued(globals, i))
		}
		if err != nil {
			return nil, &RecordError{Op: rec.Op, Err: err}
		}
	}

	for idx, bs := range bound {
		if bs.kind != 0 {
			continue
		}
		if bs.offset < 0 || bs.offset >= len(stream) {
			return nil, fmt.Errorf("sheet %q: offset %d outside stream: %w", bs.name, bs.offset, ErrTruncated)
		}
		records, err := readSubstream(stream, bs.offset, streamWorksheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", bs.name, err)
		}
		sheet, err := parseSheet(wb, bs, records)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", bs.name, err)
		}
		sheet.PrintAreas = printAreas[idx+1]
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

// Sheet finds a worksheet by name, ignoring case.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range wb.Sheets {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// SheetNames lists the worksheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

func readBoundSheet(data []byte) (boundSheet, error) {
	if len(data) < 8 {
		return boundSheet{}, fmt.Errorf("BOUNDSHEET record too short")
	}
	name, _, err := unicodeString(data, 6, 1)
	if err != nil {
		return boundSheet{}, err
	}
	return boundSheet{
		name:       name,
		offset:     int(int32(u32(data, 0))),
		visibility: int(data[4]),
		kind:       int(data[5]),
	}, nil
}

func (wb *Workbook) handleFont(data []byte) error {
	if len(data) < 14 {
		return fmt.Errorf("FONT record too short")
	}
	options := u16(data, 2)
	font := Font{
		Height:    u16(data, 0),
		Italic:    options&0x0002 != 0,
		Strike:    options&0x0008 != 0,
		Color:     u16(data, 4),
		Weight:    u16(data, 6),
		Underline: int(data[10]),
		Family:    int(data[11]),
		Charset:   int(data[12]),
	}
	if len(data) > 14 {
		name, _, err := unicodeString(data, 14, 1)
		if err != nil {
			return err
		}
		font.Name = name
	}
	wb.Fonts = append(wb.Fonts, font)
	return nil
}

func (wb *Workbook) handleFormat(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("FORMAT record too short")
	}
	code, _, err := unicodeString(data, 2, 2)
	if err != nil {
		return err
	}
	wb.Formats[u16(data, 0)] = code
	return nil
}

func (wb *Workbook) handleXF(data []byte) {
	if len(data) < 20 {
		return
	}
	protection := u16(data, 4)
	align := data[6]
	indent := data[8]
	border1 := u32(data, 10)
	border2 := u32(data, 14)
	colors := u16(data, 18)
	wb.XFs = append(wb.XFs, XF{
		Font:        u16(data, 0),
		Format:      u16(data, 2),
		Locked:      protection&0x0001 != 0,
		Hidden:      protection&0x0002 != 0,
		HAlign:      int(align & 0x07),
		Wrap:        align&0x08 != 0,
		VAlign:      int(align>>4) & 0x07,
		Rotation:    int(data[7]),
		Indent:      int(indent & 0x0F),
		Shrink:      indent&0x10 != 0,
		BorderLeft:  int(border1 & 0x0F),
		BorderRight: int(border1>>4) & 0x0F,
		BorderTop:   int(border1>>8) & 0x0F,
		BorderBot:   int(border1>>12) & 0x0F,
		ColorLeft:   int(border1>>16) & 0x7F,
		ColorRight:  int(border1>>23) & 0x7F,
		ColorTop:    int(border2) & 0x7F,
		ColorBot:    int(border2>>7) & 0x7F,
		Pattern:     int(border2>>26) & 0x3F,
		PatternFore: colors & 0x7F,
		PatternBack: (colors >> 7) & 0x7F,
	})
}

func (wb *Workbook) handlePalette(data []byte) {
	n := u16(data, 0)
	for i := 0; i < n && 2+i*4+3 <= len(data); i++ {
		p := 2 + i*4
		wb.Colors[8+i] = fmt.Sprintf("%02X%02X%02X", data[p], data[p+1], data[p+2])
	}
}
