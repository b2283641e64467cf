package xls

import "strings"

func readHeaderFooter(data []byte) (HeaderFooter, error) {
	if len(data) == 0 {
		return HeaderFooter{}, nil
	}
	raw, _, err := unicodeString(data, 0, 2)
	if err != nil {
		return HeaderFooter{}, err
	}
	return SplitHeaderFooter(raw), nil
}

// SplitHeaderFooter splits header/footer text into its left, center and
// right sections (&L, &C, &R). Text before the first section code belongs to
// the center; other codes (&P, &D, &"font", &&) stay in the text.
func SplitHeaderFooter(raw string) HeaderFooter {
	hf := HeaderFooter{Raw: raw}
	var parts [3]strings.Builder
	current := 1
	for i := 0; i < len(raw); i++ {
		if raw[i] == '&' && i+1 < len(raw) {
			switch raw[i+1] {
			case 'L':
				current = 0
				i++
				continue
			case 'C':
				current = 1
				i++
				continue
			case 'R':
				current = 2
				i++
				continue
			case '&':
				parts[current].WriteString("&&")
				i++
				continue
			}
		}
		parts[current].WriteByte(raw[i])
	}
	hf.Left = parts[0].String()
	hf.Center = parts[1].String()
	hf.Right = parts[2].String()
	return hf
}
