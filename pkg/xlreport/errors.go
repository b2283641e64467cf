package xlreport

import (
	"errors"
	"fmt"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/parser"
)

// Structural errors; test with errors.Is.
var (
	ErrUnknownElement     = parser.ErrUnknownElement
	ErrMissingAttribute   = parser.ErrMissingAttribute
	ErrInvalidAttribute   = parser.ErrInvalidAttribute
	ErrDuplicateSheet     = parser.ErrDuplicateSheet
	ErrDuplicateSection   = parser.ErrDuplicateSection
	ErrDuplicateProvider  = parser.ErrDuplicateProvider
	ErrInvalidColumnGroup = parser.ErrInvalidColumnGroup
	ErrSheetNotFound      = parser.ErrSheetNotFound
	ErrUnknownProvider    = parser.ErrUnknownProvider
	ErrLayoutOverflow     = parser.ErrLayoutOverflow
	ErrInvalidExpression  = parser.ErrInvalidExpression
	ErrMalformedStructure = parser.ErrMalformedStructure
)

// ErrMalformedTemplate indicates the template is not a readable BIFF8
// workbook inside a compound document.
var ErrMalformedTemplate = errors.New("malformed template")

// CompileError is returned for every failed compilation.
type CompileError struct {
	// ReportID is the report id, when the structure document declares one.
	ReportID string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("unable to compile report [%s] model: %v", e.ReportID, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// NewCompileError creates a new CompileError.
func NewCompileError(reportID string, err error) *CompileError {
	return &CompileError{
		ReportID: reportID,
		Err:      err,
	}
}
