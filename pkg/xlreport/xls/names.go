package xls

// Built-in name code of the print area (a NAME record with the built-in flag
// and this single character as its name).
const builtinPrintArea = 0x06

const nameBuiltin = 0x0020

// Parsed-expression tokens understood in print area names.
const (
	ptgUnion   = 0x10
	ptgParen   = 0x15
	ptgArea3d  = 0x3B
	ptgArea3dV = 0x5B
	ptgArea3dA = 0x7B
	ptgMemFunc = 0x29
)

// readPrintArea returns the 1-based sheet index and ranges of a print area
// NAME record. ok is false for every other name.
func readPrintArea(data []byte) (itab int, ranges []CellRange, ok bool) {
	if len(data) < 15 {
		return 0, nil, false
	}
	grbit := u16(data, 0)
	cch := int(data[3])
	cce := u16(data, 4)
	itab = u16(data, 8)
	if grbit&nameBuiltin == 0 || cch != 1 || itab == 0 {
		return 0, nil, false
	}

	pos := 14
	wide := data[pos]&0x01 != 0
	pos++
	if pos >= len(data) || data[pos] != builtinPrintArea {
		return 0, nil, false
	}
	if wide {
		pos += 2
	} else {
		pos++
	}
	if pos+cce > len(data) {
		return 0, nil, false
	}
	ranges = areaRanges(data[pos : pos+cce])
	return itab, ranges, len(ranges) > 0
}

// areaRanges collects the 3D area references of a name formula. Parsing
// stops at the first token it does not know.
func areaRanges(rgce []byte) []CellRange {
	var ranges []CellRange
	for i := 0; i < len(rgce); {
		switch rgce[i] {
		case ptgArea3d, ptgArea3dV, ptgArea3dA:
			if i+11 > len(rgce) {
				return ranges
			}
			ranges = append(ranges, CellRange{
				FirstRow: u16(rgce, i+3),
				LastRow:  u16(rgce, i+5),
				FirstCol: u16(rgce, i+7) & 0x3FFF,
				LastCol:  u16(rgce, i+9) & 0x3FFF,
			})
			i += 11
		case ptgMemFunc:
			i += 3
		case ptgUnion, ptgParen:
			i++
		default:
			return ranges
		}
	}
	return ranges
}
