// Package xls reads the structure of BIFF8 workbook streams: sheets, rows,
// cells, column widths, print setup, header/footer text and the formatting
// tables (fonts, number formats, XF records, colour palette).
package xls

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// BIFF8 record opcodes.
const (
	opFormula        = 0x0006
	opEOF            = 0x000A
	opHeader         = 0x0014
	opFooter         = 0x0015
	opName           = 0x0018
	opContinue       = 0x003C
	opCodepage       = 0x0042
	opDefColWidth    = 0x0055
	opColInfo        = 0x007D
	opBoundSheet     = 0x0085
	opPalette        = 0x0092
	opSetup          = 0x00A1
	opMulRK          = 0x00BD
	opMulBlank       = 0x00BE
	opXF             = 0x00E0
	opMergedCells    = 0x00E5
	opSST            = 0x00FC
	opLabelSST       = 0x00FD
	opExtSST         = 0x00FF
	opTabID          = 0x013D
	opDimensions     = 0x0200
	opBlank          = 0x0201
	opNumber         = 0x0203
	opLabel          = 0x0204
	opBoolErr        = 0x0205
	opRow            = 0x0208
	opDefaultRowHigh = 0x0225
	opRK             = 0x027E
	opFont           = 0x0031
	opFormat         = 0x041E
	opBOF            = 0x0809
)

// BOF substream types.
const (
	streamGlobals   = 0x0005
	streamWorksheet = 0x0010
	biff8Version    = 0x0600
)

// Record is one raw BIFF record.
type Record struct {
	Op   uint16
	Data []byte
}

// readSubstream reads the records of one BOF..EOF substream starting at pos.
// Nested substreams (embedded charts) are kept inline.
func readSubstream(stream []byte, pos int, want uint16) ([]Record, error) {
	var records []Record
	depth := 0
	for {
		if pos+4 > len(stream) {
			return nil, &RecordError{Offset: pos, Err: ErrTruncated}
		}
		op := binary.LittleEndian.Uint16(stream[pos:])
		size := int(binary.LittleEndian.Uint16(stream[pos+2:]))
		if pos+4+size > len(stream) {
			return nil, &RecordError{Op: op, Offset: pos, Err: ErrTruncated}
		}
		data := stream[pos+4 : pos+4+size]

		if len(records) == 0 {
			if err := checkBOF(op, data, want); err != nil {
				return nil, &RecordError{Op: op, Offset: pos, Err: err}
			}
		}
		records = append(records, Record{Op: op, Data: data})
		pos += 4 + size

		switch op {
		case opBOF:
			depth++
		case opEOF:
			depth--
			if depth == 0 {
				return records, nil
			}
		}
	}
}

func checkBOF(op uint16, data []byte, want uint16) error {
	if op != opBOF {
		return fmt.Errorf("expected BOF record, found 0x%04X", op)
	}
	if len(data) < 4 {
		return fmt.Errorf("BOF record too short")
	}
	version := binary.LittleEndian.Uint16(data[0:])
	if version != biff8Version {
		return fmt.Errorf("%w: 0x%04X", ErrUnsupportedVersion, version)
	}
	if kind := binary.LittleEndian.Uint16(data[2:]); kind != want {
		return fmt.Errorf("unexpected substream type 0x%04X (want 0x%04X)", kind, want)
	}
	return nil
}

// continued returns the data of records[i] followed by the data of every
// CONTINUE record directly after it.
func continued(records []Record, i int) [][]byte {
	segs := [][]byte{records[i].Data}
	for j := i + 1; j < len(records) && records[j].Op == opContinue; j++ {
		segs = append(segs, records[j].Data)
	}
	return segs
}

func appendRecord(buf *bytes.Buffer, rec Record) {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:], rec.Op)
	binary.LittleEndian.PutUint16(hdr[2:], uint16(len(rec.Data)))
	buf.Write(hdr[:])
	buf.Write(rec.Data)
}

func u16(data []byte, pos int) int {
	if pos+2 > len(data) {
		return 0
	}
	return int(binary.LittleEndian.Uint16(data[pos:]))
}

func u32(data []byte, pos int) uint32 {
	if pos+4 > len(data) {
		return 0
	}
	return binary.LittleEndian.Uint32(data[pos:])
}
