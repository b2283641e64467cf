package xls

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/xls/xlstest"
)

func fixtureBook() xlstest.Book {
	return xlstest.Book{
		Fonts: []xlstest.Font{
			{Name: "Arial", Height: 200},
			{Name: "Arial", Height: 240, Bold: true},
			{Name: "Arial", Height: 200},
			{Name: "Arial", Height: 200},
			{Name: "Courier New", Height: 180, Italic: true, Color: 10},
		},
		Formats: map[int]string{164: "0.000"},
		XFs: []xlstest.XF{
			{},
			{Font: 1, HAlign: 2, Border: 1},
			{Font: 4, Format: 164, Wrap: true, Pattern: 1, Fore: 13},
		},
		Sheets: []xlstest.Sheet{
			{
				Name:       "Orders",
				Rows:       6,
				HiddenRows: []int{4},
				PrintAreas: [][4]int{{0, 5, 0, 3}, {8, 9, 0, 1}},
				Cells: []xlstest.Cell{
					{Row: 0, Col: 0, Value: "Order report", XF: 1},
					{Row: 1, Col: 1, Value: 42},
					{Row: 1, Col: 2, Value: 1.5, XF: 2},
					{Row: 2, Col: 0, Value: true},
					{Row: 3, Col: 3, Value: nil},
					{Row: 5, Col: 0, Value: "Ünïcödé ✓"},
				},
				Columns: []xlstest.Column{{First: 0, Last: 1, Width: 4000}, {First: 5, Last: 5, Width: 512, Hidden: true}},
				Header:  "&LLeft&CCenter&RRight &P",
				Footer:  "Page &P of &N",
				Setup:   &xlstest.Setup{PaperSize: 9, Scale: 85, Landscape: true, Copies: 2},
				Merged:  [][4]int{{0, 0, 0, 3}},
				Names:   []string{"Print_Area"},
			},
			{Name: "Summary", Rows: 2},
		},
		GlobalNames: []string{"Totals"},
	}
}

func TestParseFixture(t *testing.T) {
	wb, err := Parse(fixtureBook().Stream())
	require.NoError(t, err)

	require.Equal(t, []string{"Orders", "Summary"}, wb.SheetNames())
	require.Len(t, wb.Fonts, 5)
	require.Len(t, wb.XFs, 3)
	require.Equal(t, "0.000", wb.Formats[164])

	sheet, ok := wb.Sheet("orders")
	require.True(t, ok)
	require.Equal(t, 6, sheet.RowCount())
	require.Equal(t, 3, sheet.LastColumn())

	row, ok := sheet.Row(0)
	require.True(t, ok)
	require.Equal(t, 300, row.Height)
	require.Equal(t, []Cell{{Col: 0, XF: 1, Kind: CellText, Text: "Order report"}}, row.Cells)

	row, _ = sheet.Row(1)
	require.Equal(t, []Cell{
		{Col: 1, Kind: CellNumber, Text: "42"},
		{Col: 2, XF: 2, Kind: CellNumber, Text: "1.5"},
	}, row.Cells)

	row, _ = sheet.Row(2)
	require.Equal(t, CellBool, row.Cells[0].Kind)
	require.Equal(t, "TRUE", row.Cells[0].Text)

	row, _ = sheet.Row(3)
	require.Equal(t, CellBlank, row.Cells[0].Kind)

	row, _ = sheet.Row(4)
	require.True(t, row.Hidden)
	require.Empty(t, row.Cells)

	row, _ = sheet.Row(5)
	require.Equal(t, "Ünïcödé ✓", row.Cells[0].Text)

	require.Equal(t, 4000, sheet.ColumnWidth(1))
	require.Equal(t, 8*256, sheet.ColumnWidth(3))
	require.True(t, sheet.ColumnHidden(5))
	require.False(t, sheet.ColumnHidden(0))

	require.Equal(t, "Left", sheet.Header.Left)
	require.Equal(t, "Center", sheet.Header.Center)
	require.Equal(t, "Right &P", sheet.Header.Right)
	require.Equal(t, "Page &P of &N", sheet.Footer.Center)

	require.Equal(t, 9, sheet.PrintSetup.PaperSize)
	require.Equal(t, 85, sheet.PrintSetup.Scale)
	require.Equal(t, 2, sheet.PrintSetup.Copies)
	require.Zero(t, sheet.PrintSetup.Options&SetupPortrait)
	require.InDelta(t, 0.3, sheet.PrintSetup.HeaderMargin, 1e-9)

	require.Equal(t, []CellRange{{FirstRow: 0, LastRow: 0, FirstCol: 0, LastCol: 3}}, sheet.Merged)

	summary, ok := wb.Sheet("Summary")
	require.True(t, ok)
	require.Equal(t, 2, summary.RowCount())
	require.Equal(t, -1, summary.LastColumn())
	require.Equal(t, PrintSetup{PaperSize: 1, Scale: 100, PageStart: 1, FitWidth: 1, FitHeight: 1, Options: SetupPortrait, Copies: 1, HeaderMargin: 0.5, FooterMargin: 0.5}, summary.PrintSetup)

	_, ok = wb.Sheet("Missing")
	require.False(t, ok)
}

func TestParseLongSharedStringTable(t *testing.T) {
	var cells []xlstest.Cell
	for i := 0; i < 400; i++ {
		text := strings.Repeat(string(rune('a'+i%26)), 40) + strings.Repeat("Ω", i%3)
		cells = append(cells, xlstest.Cell{Row: i, Col: 0, Value: text})
	}
	book := xlstest.Book{Sheets: []xlstest.Sheet{{Name: "Big", Rows: 400, Cells: cells}}}

	wb, err := Parse(book.Stream())
	require.NoError(t, err)
	require.Len(t, wb.SST, 400)

	sheet, _ := wb.Sheet("Big")
	for i, c := range cells {
		row, ok := sheet.Row(i)
		require.True(t, ok)
		require.Equal(t, c.Value, row.Cells[0].Text, "row %d", i)
	}
}

func TestParseRejectsOtherVersions(t *testing.T) {
	stream := fixtureBook().Stream()
	stream[4] = 0x00
	stream[5] = 0x05 // BIFF5

	_, err := Parse(stream)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestParseTruncated(t *testing.T) {
	stream := fixtureBook().Stream()

	_, err := Parse(stream[:len(stream)-3])
	require.ErrorIs(t, err, ErrTruncated)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
}

func TestDecodeRK(t *testing.T) {
	tests := []struct {
		rk       uint32
		expected float64
	}{
		{rk: 0x3FF00000, expected: 1},
		{rk: 0x3FF00001, expected: 0.01},
		{rk: 42<<2 | 0x02, expected: 42},
		{rk: 1234<<2 | 0x03, expected: 12.34},
		{rk: 0xFFFFFFE6, expected: -7},
	}

	for _, tt := range tests {
		result := decodeRK(tt.rk)
		if result != tt.expected {
			t.Errorf("decodeRK(0x%08X) = %v, expected %v", tt.rk, result, tt.expected)
		}
	}
}

func TestSplitHeaderFooter(t *testing.T) {
	tests := []struct {
		raw                 string
		left, center, right string
	}{
		{raw: "", left: "", center: "", right: ""},
		{raw: "Plain", center: "Plain"},
		{raw: "&LA&CB&RC", left: "A", center: "B", right: "C"},
		{raw: "&RPage &P&LDate &D", left: "Date &D", right: "Page &P"},
		{raw: "Fish && Chips", center: "Fish && Chips"},
		{raw: "&\"Arial,Bold\"&CTitle", center: "&\"Arial,Bold\"Title"},
		{raw: "&lA&cB&rC", center: "&lA&cB&rC"},
		{raw: "&LLeft &r&RRight", left: "Left &r", right: "Right"},
	}

	for _, tt := range tests {
		hf := SplitHeaderFooter(tt.raw)
		if hf.Left != tt.left || hf.Center != tt.center || hf.Right != tt.right {
			t.Errorf("SplitHeaderFooter(%q) = (%q, %q, %q), expected (%q, %q, %q)",
				tt.raw, hf.Left, hf.Center, hf.Right, tt.left, tt.center, tt.right)
		}
		if hf.Raw != tt.raw {
			t.Errorf("SplitHeaderFooter(%q).Raw = %q", tt.raw, hf.Raw)
		}
	}
}

func TestStyle(t *testing.T) {
	wb, err := Parse(fixtureBook().Stream())
	require.NoError(t, err)

	heading := wb.Style(1)
	require.Equal(t, "center", heading.Alignment.Horizontal)
	require.Equal(t, "bottom", heading.Alignment.Vertical)
	require.True(t, heading.Protection.Locked)
	require.True(t, heading.Font.Bold)
	require.Equal(t, 12.0, heading.Font.Size)
	require.Len(t, heading.Border, 4)
	require.Equal(t, "left", heading.Border[0].Type)
	require.Equal(t, 1, heading.Border[0].Style)

	// font index 4 in the XF refers to the fifth FONT record
	number := wb.Style(2)
	require.Equal(t, "Courier New", number.Font.Family)
	require.True(t, number.Font.Italic)
	require.Equal(t, "FF0000", number.Font.Color)
	require.NotNil(t, number.CustomNumFmt)
	require.Equal(t, "0.000", *number.CustomNumFmt)
	require.True(t, number.Alignment.WrapText)
	require.Equal(t, "pattern", number.Fill.Type)
	require.Equal(t, []string{"FFFF00"}, number.Fill.Color)

	require.Nil(t, wb.Style(99).Font)
}

func TestWithoutSheets(t *testing.T) {
	wb, err := Parse(fixtureBook().Stream())
	require.NoError(t, err)

	skel := wb.WithoutSheets()
	require.Len(t, wb.Sheets, 2, "original keeps its sheets")

	again, err := Parse(skel.Bytes())
	require.NoError(t, err)
	require.Empty(t, again.Sheets)
	require.Equal(t, wb.Fonts, again.Fonts)
	require.Equal(t, wb.XFs, again.XFs)
	require.Equal(t, wb.Formats, again.Formats)
	require.Equal(t, wb.SST, again.SST)

	var names int
	for _, rec := range again.globals {
		if rec.Op == opName {
			names++
		}
	}
	require.Equal(t, 1, names, "only the workbook-level name survives")
}

func TestBytesUntrimmedIsRaw(t *testing.T) {
	stream := fixtureBook().Stream()
	wb, err := Parse(stream)
	require.NoError(t, err)
	require.Equal(t, stream, wb.Bytes())
}

func TestPrintAreas(t *testing.T) {
	wb, err := Parse(fixtureBook().Stream())
	require.NoError(t, err)

	orders, _ := wb.Sheet("Orders")
	require.Equal(t, []CellRange{
		{FirstRow: 0, LastRow: 5, FirstCol: 0, LastCol: 3},
		{FirstRow: 8, LastRow: 9, FirstCol: 0, LastCol: 1},
	}, orders.PrintAreas)

	summary, _ := wb.Sheet("Summary")
	require.Empty(t, summary.PrintAreas)
}

func TestReadPrintAreaIgnoresOtherNames(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0x20, 0, 0, 1}},
		{"not built-in", []byte{0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0x06}},
		{"workbook scope", []byte{0x20, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x06}},
		{"other built-in", []byte{0x20, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0x07}},
		{"empty formula", []byte{0x20, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0x06}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := readPrintArea(tt.data)
			require.False(t, ok)
		})
	}
}
