// Package xlstest builds BIFF8 workbook streams and compound documents for
// tests.
package xlstest

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"unicode/utf16"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/cfb"
)

const maxRecordData = 8224

// Font describes a FONT record. Height is in twips.
type Font struct {
	Name   string
	Height int
	Bold   bool
	Italic bool
	Color  int
}

// XF describes a cell XF record. Font is an index into Book.Fonts.
type XF struct {
	Font    int
	Format  int
	HAlign  int
	Wrap    bool
	Border  int
	Pattern int
	Fore    int
}

// Cell is a template cell. Value may be a string, float64, int, bool or nil
// (blank).
type Cell struct {
	Row   int
	Col   int
	Value any
	XF    int
}

// Column is a COLINFO range. Width is in 1/256 of a character.
type Column struct {
	First  int
	Last   int
	Width  int
	Hidden bool
}

// Setup describes a SETUP record.
type Setup struct {
	PaperSize int
	Scale     int
	Landscape bool
	Copies    int
}

// Sheet describes one worksheet. Rows emits ROW records for rows 0..Rows-1.
type Sheet struct {
	Name       string
	Rows       int
	HiddenRows []int
	Cells      []Cell
	Columns    []Column
	Header     string
	Footer     string
	Setup      *Setup
	// Merged ranges as first row, last row, first column, last column.
	Merged [][4]int
	// PrintAreas are written as the built-in print area name, in the same
	// layout as Merged.
	PrintAreas [][4]int
	// Names are sheet-local NAME records.
	Names []string
}

// Book describes a workbook.
type Book struct {
	Fonts   []Font
	Formats map[int]string
	XFs     []XF
	Sheets  []Sheet
	// GlobalNames are workbook-level NAME records.
	GlobalNames []string
}

// Stream returns the BIFF8 workbook stream.
func (b Book) Stream() []byte {
	sst, sstIndex := b.sharedStrings()

	var sheetStreams [][]byte
	for _, s := range b.Sheets {
		sheetStreams = append(sheetStreams, s.stream(sstIndex))
	}

	globals := func(offsets []int) []byte {
		var buf bytes.Buffer
		record(&buf, 0x0809, bof(0x0005))
		record(&buf, 0x0042, u16(1200))
		fonts := b.Fonts
		if len(fonts) == 0 {
			fonts = []Font{{Name: "Arial", Height: 200}}
		}
		for _, f := range fonts {
			record(&buf, 0x0031, fontData(f))
		}
		for _, f := range sortedFormats(b.Formats) {
			record(&buf, 0x041E, append(u16(f.id), xlString(f.code, 2)...))
		}
		xfs := b.XFs
		if len(xfs) == 0 {
			xfs = []XF{{}}
		}
		for _, xf := range xfs {
			record(&buf, 0x00E0, xfData(xf))
		}
		for i, s := range b.Sheets {
			var data []byte
			data = append(data, u32(uint32(offsets[i]))...)
			data = append(data, 0, 0)
			data = append(data, xlString(s.Name, 1)...)
			record(&buf, 0x0085, data)
		}
		for _, name := range b.GlobalNames {
			record(&buf, 0x0018, nameData(name, 0))
		}
		for i, s := range b.Sheets {
			if len(s.PrintAreas) > 0 {
				record(&buf, 0x0018, printAreaData(s.PrintAreas, i+1))
			}
			for _, name := range s.Names {
				record(&buf, 0x0018, nameData(name, i+1))
			}
		}
		writeSST(&buf, sst)
		record(&buf, 0x00FF, u16(8))
		record(&buf, 0x000A, nil)
		return buf.Bytes()
	}

	offsets := make([]int, len(b.Sheets))
	pos := len(globals(offsets))
	for i, s := range sheetStreams {
		offsets[i] = pos
		pos += len(s)
	}

	out := globals(offsets)
	for _, s := range sheetStreams {
		out = append(out, s...)
	}
	return out
}

// Stream is an extra compound document stream.
type Stream struct {
	Name string
	Data []byte
}

// Container wraps the workbook stream and extra streams into a compound
// document.
func (b Book) Container(extra ...Stream) ([]byte, error) {
	c := cfb.New()
	c.Put("Workbook", b.Stream())
	for _, s := range extra {
		c.Put(s.Name, s.Data)
	}
	return c.Bytes()
}

func (s Sheet) stream(sstIndex map[string]int) []byte {
	var buf bytes.Buffer
	record(&buf, 0x0809, bof(0x0010))
	record(&buf, 0x0055, u16(8))
	for _, c := range s.Columns {
		flags := 0
		if c.Hidden {
			flags = 1
		}
		data := append(u16(c.First), u16(c.Last)...)
		data = append(data, u16(c.Width)...)
		data = append(data, u16(15)...)
		data = append(data, u16(flags)...)
		data = append(data, u16(0)...)
		record(&buf, 0x007D, data)
	}
	if s.Header != "" {
		record(&buf, 0x0014, xlString(s.Header, 2))
	}
	if s.Footer != "" {
		record(&buf, 0x0015, xlString(s.Footer, 2))
	}
	if s.Setup != nil {
		record(&buf, 0x00A1, setupData(*s.Setup))
	}

	maxCol := 0
	for _, c := range s.Cells {
		if c.Col+1 > maxCol {
			maxCol = c.Col + 1
		}
	}
	dim := append(u32(0), u32(uint32(s.Rows))...)
	dim = append(dim, u16(0)...)
	dim = append(dim, u16(maxCol)...)
	dim = append(dim, u16(0)...)
	record(&buf, 0x0200, dim)

	hidden := make(map[int]bool)
	for _, r := range s.HiddenRows {
		hidden[r] = true
	}
	for r := 0; r < s.Rows; r++ {
		flags := 0x0100
		if hidden[r] {
			flags |= 0x0020
		}
		data := append(u16(r), u16(0)...)
		data = append(data, u16(maxCol)...)
		data = append(data, u16(300)...)
		data = append(data, u16(0)...)
		data = append(data, u16(0)...)
		data = append(data, u16(flags)...)
		data = append(data, u16(15)...)
		record(&buf, 0x0208, data)
	}

	for _, c := range s.Cells {
		head := append(u16(c.Row), u16(c.Col)...)
		head = append(head, u16(c.XF)...)
		switch v := c.Value.(type) {
		case string:
			record(&buf, 0x00FD, append(head, u32(uint32(sstIndex[v]))...))
		case float64:
			record(&buf, 0x0203, append(head, f64(v)...))
		case int:
			record(&buf, 0x0203, append(head, f64(float64(v))...))
		case bool:
			b := byte(0)
			if v {
				b = 1
			}
			record(&buf, 0x0205, append(head, b, 0))
		default:
			record(&buf, 0x0201, head)
		}
	}

	if len(s.Merged) > 0 {
		data := u16(len(s.Merged))
		for _, m := range s.Merged {
			data = append(data, u16(m[0])...)
			data = append(data, u16(m[1])...)
			data = append(data, u16(m[2])...)
			data = append(data, u16(m[3])...)
		}
		record(&buf, 0x00E5, data)
	}
	record(&buf, 0x000A, nil)
	return buf.Bytes()
}

func (b Book) sharedStrings() ([]string, map[string]int) {
	var table []string
	index := make(map[string]int)
	for _, s := range b.Sheets {
		for _, c := range s.Cells {
			if v, ok := c.Value.(string); ok {
				if _, seen := index[v]; !seen {
					index[v] = len(table)
					table = append(table, v)
				}
			}
		}
	}
	return table, index
}

// writeSST writes the shared string table, splitting it into CONTINUE
// records; a string split across records restarts with an option byte.
func writeSST(buf *bytes.Buffer, table []string) {
	var segs [][]byte
	cur := append(u32(uint32(len(table))), u32(uint32(len(table)))...)
	flush := func() {
		segs = append(segs, cur)
		cur = nil
	}
	for _, s := range table {
		units := utf16.Encode([]rune(s))
		wide := !compressible(units)
		if len(cur)+3 > maxRecordData {
			flush()
		}
		flags := byte(0)
		if wide {
			flags = 1
		}
		cur = append(cur, u16(len(units))...)
		cur = append(cur, flags)
		for i := 0; i < len(units); {
			width := 1
			if wide {
				width = 2
			}
			if len(cur)+width > maxRecordData {
				flush()
				cur = append(cur, flags)
			}
			if wide {
				cur = append(cur, u16(int(units[i]))...)
			} else {
				cur = append(cur, byte(units[i]))
			}
			i++
		}
	}
	flush()
	record(buf, 0x00FC, segs[0])
	for _, seg := range segs[1:] {
		record(buf, 0x003C, seg)
	}
}

func compressible(units []uint16) bool {
	for _, u := range units {
		if u > 0xFF {
			return false
		}
	}
	return true
}

type format struct {
	id   int
	code string
}

func sortedFormats(m map[int]string) []format {
	var out []format
	for id, code := range m {
		out = append(out, format{id: id, code: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func bof(kind int) []byte {
	data := append(u16(0x0600), u16(kind)...)
	data = append(data, u16(0x0DBB)...)
	data = append(data, u16(0x07CC)...)
	data = append(data, u32(0)...)
	data = append(data, u32(6)...)
	return data
}

func fontData(f Font) []byte {
	weight := 400
	if f.Bold {
		weight = 700
	}
	options := 0
	if f.Italic {
		options |= 0x0002
	}
	color := f.Color
	if color == 0 {
		color = 0x7FFF
	}
	data := append(u16(f.Height), u16(options)...)
	data = append(data, u16(color)...)
	data = append(data, u16(weight)...)
	data = append(data, u16(0)...)
	data = append(data, 0, 0, 0, 0)
	return append(data, xlString(f.Name, 1)...)
}

func xfData(xf XF) []byte {
	font := xf.Font
	if font >= 4 {
		font++
	}
	align := byte(xf.HAlign & 0x07)
	if xf.Wrap {
		align |= 0x08
	}
	align |= 2 << 4 // bottom
	border1 := uint32(xf.Border&0x0F) | uint32(xf.Border&0x0F)<<4 | uint32(xf.Border&0x0F)<<8 | uint32(xf.Border&0x0F)<<12
	border1 |= 8<<16 | 8<<23
	border2 := uint32(8) | uint32(8)<<7 | uint32(xf.Pattern&0x3F)<<26
	data := append(u16(font), u16(xf.Format)...)
	data = append(data, u16(0x0001)...)
	data = append(data, align, 0, 0, 0)
	data = append(data, u32(border1)...)
	data = append(data, u32(border2)...)
	data = append(data, u16(xf.Fore&0x7F|0x41<<7)...)
	return data
}

func setupData(s Setup) []byte {
	options := 0
	if !s.Landscape {
		options |= 0x0002
	}
	data := append(u16(s.PaperSize), u16(s.Scale)...)
	data = append(data, u16(1)...)
	data = append(data, u16(1)...)
	data = append(data, u16(1)...)
	data = append(data, u16(options)...)
	data = append(data, u16(600)...)
	data = append(data, u16(600)...)
	data = append(data, f64(0.3)...)
	data = append(data, f64(0.3)...)
	return append(data, u16(s.Copies)...)
}

func nameData(name string, itab int) []byte {
	data := []byte{0, 0, 0, byte(len(name))}
	data = append(data, u16(0)...)
	data = append(data, u16(0)...)
	data = append(data, u16(itab)...)
	data = append(data, 0, 0, 0, 0)
	data = append(data, 0)
	return append(data, []byte(name)...)
}

// printAreaData encodes a built-in Print_Area NAME record whose formula is a
// union of 3D area references.
func printAreaData(areas [][4]int, itab int) []byte {
	var rgce []byte
	for i, a := range areas {
		rgce = append(rgce, 0x3B)
		rgce = append(rgce, u16(itab-1)...)
		for _, v := range a {
			rgce = append(rgce, u16(v)...)
		}
		if i > 0 {
			rgce = append(rgce, 0x10)
		}
	}
	if len(areas) > 1 {
		rgce = append([]byte{0x29, byte(len(rgce)), byte(len(rgce) >> 8)}, rgce...)
	}

	data := []byte{0x20, 0, 0, 1}
	data = append(data, u16(len(rgce))...)
	data = append(data, u16(0)...)
	data = append(data, u16(itab)...)
	data = append(data, 0, 0, 0, 0)
	data = append(data, 0, 0x06)
	return append(data, rgce...)
}

// xlString encodes an XLUnicodeString with a 1 or 2 byte length prefix.
func xlString(s string, lenSize int) []byte {
	units := utf16.Encode([]rune(s))
	var data []byte
	if lenSize == 1 {
		data = []byte{byte(len(units))}
	} else {
		data = u16(len(units))
	}
	if compressible(units) {
		data = append(data, 0)
		for _, u := range units {
			data = append(data, byte(u))
		}
		return data
	}
	data = append(data, 1)
	for _, u := range units {
		data = append(data, u16(int(u))...)
	}
	return data
}

func record(buf *bytes.Buffer, op int, data []byte) {
	buf.Write(u16(op))
	buf.Write(u16(len(data)))
	buf.Write(data)
}

func u16(v int) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func f64(v float64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}
