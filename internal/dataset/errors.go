package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputNotFound is matched by every InputNotFoundError.
	ErrInputNotFound = errors.New("input not found")

	// ErrDataFormat is matched by every DataFormatError.
	ErrDataFormat = errors.New("data format error")
)

// InputNotFoundError reports a required source file that does not exist.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input file %s not found", e.Path)
}

// Is makes errors.Is(err, ErrInputNotFound) hold.
func (e *InputNotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}

// DataFormatError reports a missing column, an unparseable value or a
// malformed series identifier. Path, Row and Column are filled in when known;
// Row is the 1-based line of the source file, header included.
type DataFormatError struct {
	Path   string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("data format error")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrDataFormat) hold.
func (e *DataFormatError) Is(target error) bool {
	return target == ErrDataFormat
}

func formatError(value, reason string) *DataFormatError {
	return &DataFormatError{Value: value, Reason: reason}
}

// locate fills in the position of a DataFormatError raised by a value parser.
// Errors of any other kind are wrapped as a DataFormatError at that position.
func locate(err error, path string, row int, column string) error {
	if err == nil {
		return nil
	}
	var dfe *DataFormatError
	if errors.As(err, &dfe) {
		located := *dfe
		if located.Path == "" {
			located.Path = path
		}
		if located.Row == 0 {
			located.Row = row
		}
		if located.Column == "" {
			located.Column = column
		}
		return &located
	}
	return &DataFormatError{Path: path, Row: row, Column: column, Reason: err.Error()}
}
