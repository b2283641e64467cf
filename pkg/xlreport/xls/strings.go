package xls

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

var errShortString = errors.New("insufficient data for string")

// Unicode string option flags.
const (
	strHighByte = 0x01
	strExt      = 0x04
	strRich     = 0x08
)

// decodeChars decodes characters stored either as UTF-16LE or as the
// compressed single-byte form.
func decodeChars(b []byte, wide bool) string {
	if wide {
		words := make([]uint16, len(b)/2)
		for i := range words {
			words[i] = binary.LittleEndian.Uint16(b[i*2:])
		}
		return string(utf16.Decode(words))
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// unicodeString reads an XLUnicodeString whose character count takes
// lenSize bytes (1 or 2). It returns the string and the position after it.
func unicodeString(data []byte, pos, lenSize int) (string, int, error) {
	if pos+lenSize > len(data) {
		return "", pos, errShortString
	}
	var n int
	if lenSize == 1 {
		n = int(data[pos])
	} else {
		n = int(binary.LittleEndian.Uint16(data[pos:]))
	}
	pos += lenSize
	if pos >= len(data) {
		if n == 0 {
			return "", pos, nil
		}
		return "", pos, errShortString
	}

	flags := data[pos]
	pos++
	runs, ext := 0, 0
	if flags&strRich != 0 {
		runs = u16(data, pos)
		pos += 2
	}
	if flags&strExt != 0 {
		ext = int(u32(data, pos))
		pos += 4
	}

	width := 1
	if flags&strHighByte != 0 {
		width = 2
	}
	end := pos + n*width
	if end > len(data) {
		return "", pos, errShortString
	}
	s := decodeChars(data[pos:end], width == 2)
	return s, end + runs*4 + ext, nil
}

// segmentReader reads across a record and its CONTINUE records. Character
// data split by a record boundary restarts with a fresh option byte.
type segmentReader struct {
	segs [][]byte
	seg  int
	pos  int
}

func (r *segmentReader) advance() error {
	for r.pos >= len(r.segs[r.seg]) {
		if r.seg+1 >= len(r.segs) {
			return errShortString
		}
		r.seg++
		r.pos = 0
	}
	return nil
}

func (r *segmentReader) readByte() (byte, error) {
	if err := r.advance(); err != nil {
		return 0, err
	}
	b := r.segs[r.seg][r.pos]
	r.pos++
	return b, nil
}

func (r *segmentReader) readUint(size int) (int, error) {
	v := 0
	for i := 0; i < size; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v |= int(b) << (8 * i)
	}
	return v, nil
}

func (r *segmentReader) skip(n int) error {
	for n > 0 {
		if err := r.advance(); err != nil {
			return err
		}
		k := len(r.segs[r.seg]) - r.pos
		if k > n {
			k = n
		}
		r.pos += k
		n -= k
	}
	return nil
}

func (r *segmentReader) chars(n int, wide bool) (string, error) {
	var out []rune
	for n > 0 {
		if r.pos >= len(r.segs[r.seg]) {
			if err := r.advance(); err != nil {
				return "", err
			}
			flags := r.segs[r.seg][r.pos]
			r.pos++
			wide = flags&strHighByte != 0
		}
		width := 1
		if wide {
			width = 2
		}
		k := (len(r.segs[r.seg]) - r.pos) / width
		if k > n {
			k = n
		}
		if k == 0 {
			return "", errShortString
		}
		chunk := r.segs[r.seg][r.pos : r.pos+k*width]
		out = append(out, []rune(decodeChars(chunk, wide))...)
		r.pos += k * width
		n -= k
	}
	return string(out), nil
}

// readSST decodes the shared string table from the SST record and its
// CONTINUE records.
func readSST(segs [][]byte) ([]string, error) {
	r := &segmentReader{segs: segs}
	if err := r.skip(4); err != nil {
		return nil, err
	}
	unique, err := r.readUint(4)
	if err != nil {
		return nil, err
	}

	table := make([]string, 0, unique)
	for i := 0; i < unique; i++ {
		n, err := r.readUint(2)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		flags, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		runs, ext := 0, 0
		if flags&strRich != 0 {
			if runs, err = r.readUint(2); err != nil {
				return nil, err
			}
		}
		if flags&strExt != 0 {
			if ext, err = r.readUint(4); err != nil {
				return nil, err
			}
		}
		s, err := r.chars(n, flags&strHighByte != 0)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		if err := r.skip(runs*4 + ext); err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		table = append(table, s)
	}
	return table, nil
}
