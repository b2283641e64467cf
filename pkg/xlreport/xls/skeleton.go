package xls

import "bytes"

// WithoutSheets returns a copy of the workbook with every sheet removed.
// Fonts, number formats, XF/STYLE records, the palette and the shared string
// table are retained.
func (wb *Workbook) WithoutSheets() *Workbook {
	skel := *wb
	skel.Sheets = nil
	skel.trimmed = true
	return &skel
}

// Bytes serialises the workbook stream. A workbook without sheets is written
// as its globals substream minus the records that describe or index sheets:
// BOUNDSHEET, TABID, EXTSST and sheet-local NAME records.
func (wb *Workbook) Bytes() []byte {
	if !wb.trimmed {
		return wb.raw
	}

	var buf bytes.Buffer
	dropping := false
	for _, rec := range wb.globals {
		if rec.Op == opContinue {
			if !dropping {
				appendRecord(&buf, rec)
			}
			continue
		}
		dropping = sheetBound(rec)
		if !dropping {
			appendRecord(&buf, rec)
		}
	}
	return buf.Bytes()
}

func sheetBound(rec Record) bool {
	switch rec.Op {
	case opBoundSheet, opTabID, opExtSST:
		return true
	case opName:
		// itab: 1-based index of the sheet owning a local name. Local names
		// are dropped, not promoted to workbook scope.
		return u16(rec.Data, 8) != 0
	}
	return false
}
