package xls

import "github.com/xuri/excelize/v2"

// Built-in number formats occupy ids below this value.
const firstCustomFormat = 164

var hAlign = []string{"", "left", "center", "right", "fill", "justify", "centerContinuous", "distributed"}

var vAlign = []string{"top", "center", "bottom", "justify", "distributed"}

var underline = map[int]string{1: "single", 2: "double", 0x21: "singleAccounting", 0x22: "doubleAccounting"}

// Style converts the XF at index xf into an excelize style definition.
// Unknown indexes yield the zero style.
func (wb *Workbook) Style(xf int) excelize.Style {
	if xf < 0 || xf >= len(wb.XFs) {
		return excelize.Style{}
	}
	x := wb.XFs[xf]

	style := excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal:   pick(hAlign, x.HAlign),
			Vertical:     pick(vAlign, x.VAlign),
			WrapText:     x.Wrap,
			Indent:       x.Indent,
			ShrinkToFit:  x.Shrink,
			TextRotation: x.Rotation,
		},
		Protection: &excelize.Protection{Locked: x.Locked, Hidden: x.Hidden},
	}

	if font, ok := wb.font(x.Font); ok {
		style.Font = &excelize.Font{
			Bold:      font.Bold(),
			Italic:    font.Italic,
			Strike:    font.Strike,
			Underline: underline[font.Underline],
			Family:    font.Name,
			Size:      float64(font.Height) / 20,
			Color:     wb.color(font.Color),
		}
	}

	if code, ok := wb.Formats[x.Format]; ok && x.Format >= firstCustomFormat {
		style.CustomNumFmt = &code
	} else {
		style.NumFmt = x.Format
	}

	borders := []struct {
		side  string
		style int
		color int
	}{
		{"left", x.BorderLeft, x.ColorLeft},
		{"right", x.BorderRight, x.ColorRight},
		{"top", x.BorderTop, x.ColorTop},
		{"bottom", x.BorderBot, x.ColorBot},
	}
	for _, b := range borders {
		if b.style == 0 {
			continue
		}
		style.Border = append(style.Border, excelize.Border{Type: b.side, Style: b.style, Color: wb.color(b.color)})
	}

	if x.Pattern != 0 {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: x.Pattern}
		if c := wb.color(x.PatternFore); c != "" {
			style.Fill.Color = []string{c}
		}
	}
	return style
}

// font resolves an XF font index; index 4 is never written by Excel, so
// indexes above it are shifted by one.
func (wb *Workbook) font(idx int) (Font, bool) {
	if idx > 4 {
		idx--
	}
	if idx < 0 || idx >= len(wb.Fonts) {
		return Font{}, false
	}
	return wb.Fonts[idx], true
}

func (wb *Workbook) color(idx int) string {
	return wb.Colors[idx]
}

func pick(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

// defaultColors is the BIFF8 default colour palette.
func defaultColors() map[int]string {
	colors := []string{
		"000000", "FFFFFF", "FF0000", "00FF00", "0000FF", "FFFF00", "FF00FF", "00FFFF",
		"800000", "008000", "000080", "808000", "800080", "008080", "C0C0C0", "808080",
		"9999FF", "993366", "FFFFCC", "CCFFFF", "660066", "FF8080", "0066CC", "CCCCFF",
		"000080", "FF00FF", "FFFF00", "00FFFF", "800080", "800000", "008080", "0000FF",
		"00CCFF", "CCFFFF", "CCFFCC", "FFFF99", "99CCFF", "FF99CC", "CC99FF", "FFCC99",
		"3366FF", "33CCCC", "99CC00", "FFCC00", "FF9900", "FF6600", "666699", "969696",
		"003366", "339966", "003300", "333300", "993300", "993366", "333399", "333333",
	}
	m := make(map[int]string, len(colors)+8)
	for i, c := range colors {
		m[8+i] = c
	}
	for i := 0; i < 8; i++ {
		m[i] = colors[i]
	}
	return m
}
