package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownElement indicates an element not allowed at its position.
	ErrUnknownElement = errors.New("unknown element")
	// ErrMissingAttribute indicates a mandatory attribute is absent or empty.
	ErrMissingAttribute = errors.New("mandatory attributes not specified")
	// ErrInvalidAttribute indicates a malformed boolean or integer attribute.
	ErrInvalidAttribute = errors.New("invalid attribute value")
	// ErrDuplicateSheet indicates two sheets with the same id.
	ErrDuplicateSheet = errors.New("duplicate sheet")
	// ErrDuplicateSection indicates two sections with the same id in one scope.
	ErrDuplicateSection = errors.New("duplicate section")
	// ErrDuplicateProvider indicates two providers with the same id.
	ErrDuplicateProvider = errors.New("duplicate data provider")
	// ErrInvalidColumnGroup indicates a malformed group-columns token.
	ErrInvalidColumnGroup = errors.New("incorrect value for attribute 'group-columns'")
	// ErrSheetNotFound indicates a sheet id absent from the template.
	ErrSheetNotFound = errors.New("template doesn't contain sheet")
	// ErrUnknownProvider indicates a reference to an undeclared provider.
	ErrUnknownProvider = errors.New("unknown data provider")
	// ErrLayoutOverflow indicates an area extends past the template rows.
	ErrLayoutOverflow = errors.New("area exceeds template rows")
	// ErrInvalidExpression indicates an expression that does not compile.
	ErrInvalidExpression = errors.New("invalid expression")
	// ErrMalformedStructure indicates the structure document is not valid XML.
	ErrMalformedStructure = errors.New("malformed structure document")
)

// ElementError locates an error in the structure document.
type ElementError struct {
	Element string
	Line    int
	Err     error
}

func (e *ElementError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("<%s> at line %d: %v", e.Element, e.Line, e.Err)
	}
	return fmt.Sprintf("<%s>: %v", e.Element, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

func elementError(n *Node, err error) error {
	var ee *ElementError
	if errors.As(err, &ee) {
		return err
	}
	return &ElementError{Element: n.Name, Line: n.Line, Err: err}
}
