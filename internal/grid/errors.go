package grid

import "fmt"

// ParseError reports a row or column index that is not an integer.
type ParseError struct {
	Field string // "row" or "column"
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: not an integer", e.Field, e.Input)
}

// Unwrap returns the underlying strconv error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// OutOfRangeError reports a coordinate outside the grid.
type OutOfRangeError struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("cell (%d, %d) out of range for %dx%d grid", e.Row, e.Col, e.Rows, e.Cols)
}

// NotFoundError reports a missing backing file.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("grid file not found: %s", e.Path)
}

// Unwrap returns the underlying filesystem error.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// MalformedDataError reports a backing file that is not a rectangular
// integer grid.
type MalformedDataError struct {
	Path   string
	Line   int // 1-based; 0 when not tied to a line
	Reason string
	Err    error
}

func (e *MalformedDataError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed grid file %s: line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed grid file %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying parse error, if any.
func (e *MalformedDataError) Unwrap() error {
	return e.Err
}
