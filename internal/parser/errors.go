package parser

import (
	"fmt"
)

// FormatError indicates a malformed or truncated NTv2 file.
//
// Offset is the byte position of the record being decoded when the problem
// was found, or -1 when the error is not tied to a position (for example a
// parent name that never resolves).
type FormatError struct {
	Offset  int64
	SubGrid string
	Field   string
	Reason  string
	Err     error
}

func (e *FormatError) Error() string {
	msg := "ntv2 format error"
	if e.SubGrid != "" {
		msg += fmt.Sprintf(" in subgrid %q", e.SubGrid)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" at %s", e.Field)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ErrUnknownParent indicates a PARENT field naming no earlier subgrid
type ErrUnknownParent struct {
	SubGrid string
	Parent  string
}

func (e *ErrUnknownParent) Error() string {
	return fmt.Sprintf("subgrid %q references unknown parent %q", e.SubGrid, e.Parent)
}

// ErrDimensions indicates a subgrid lattice that is empty or disagrees with GS_COUNT
type ErrDimensions struct {
	SubGrid    string
	Rows, Cols int
	Count      int32
}

func (e *ErrDimensions) Error() string {
	return fmt.Sprintf("subgrid %q: %d rows x %d cols does not match GS_COUNT %d",
		e.SubGrid, e.Rows, e.Cols, e.Count)
}

func formatErr(offset int64, field, reason string, err error) *FormatError {
	return &FormatError{Offset: offset, Field: field, Reason: reason, Err: err}
}
