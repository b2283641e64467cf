package xls

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion indicates the stream is not a BIFF8 workbook.
var ErrUnsupportedVersion = errors.New("unsupported BIFF version")

// ErrTruncated indicates a record extends past the end of the stream.
var ErrTruncated = errors.New("truncated BIFF stream")

// RecordError reports a malformed record.
type RecordError struct {
	Op     uint16
	Offset int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record 0x%04X at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
