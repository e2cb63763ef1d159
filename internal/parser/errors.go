package parser

import (
	"fmt"
)

// ErrParse indicates the input could not be read past a given line
type ErrParse struct {
	Line int
	Err  error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// ErrUnknownCharset indicates an unsupported TEGNSETT value
type ErrUnknownCharset struct {
	Name string
}

func (e *ErrUnknownCharset) Error() string {
	return fmt.Sprintf("unknown SOSI character set: %q", e.Name)
}

// ErrDanglingReference indicates a REF serial that no element carries
type ErrDanglingReference struct {
	Serial    string // element holding the REF
	Reference string
}

func (e *ErrDanglingReference) Error() string {
	return fmt.Sprintf("element %s references missing element %s", e.Serial, e.Reference)
}

// ErrEmptyGeometry indicates a geometry element without coordinates
type ErrEmptyGeometry struct {
	Serial string
	Name   string
}

func (e *ErrEmptyGeometry) Error() string {
	return fmt.Sprintf("%s %s has no coordinates", e.Name, e.Serial)
}
