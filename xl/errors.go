package xl

import "fmt"

// RangeError reports a row/column coordinate outside the worksheet limits, an
// inverted range, or a degenerate range where a rectangle is required.
type RangeError struct {
	Row uint32
	Col uint16
	Msg string
}

func (e *RangeError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("cell (%d,%d) is outside the worksheet limits of %d rows x %d columns",
		e.Row, e.Col, MaxRows, MaxCols)
}

// ConflictError reports a clash with previously registered content, such as an
// overlapping merge range or a reused sheet name.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// NameError reports an identifier that Excel would reject, either a sheet name
// or a defined name.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

// FormatLimitError reports that a style catalog exceeded one of the hard
// ceilings of the xlsx format.
type FormatLimitError struct {
	Kind  string
	Limit int
}

func (e *FormatLimitError) Error() string {
	return fmt.Sprintf("too many %s: the xlsx format allows at most %d", e.Kind, e.Limit)
}
