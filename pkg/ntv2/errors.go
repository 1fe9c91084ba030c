package ntv2

import (
	"errors"
	"fmt"

	"github.com/beetlebugorg/ntv2/internal/parser"
)

// FormatError reports a malformed or truncated grid file. Load and Open
// return it (possibly wrapped) and never return a partial GridFile.
type FormatError = parser.FormatError

// ErrUnknownParent is wrapped by a FormatError when a PARENT field names no
// earlier subgrid.
type ErrUnknownParent = parser.ErrUnknownParent

// ErrDimensions is wrapped by a FormatError when a subgrid lattice is empty
// or disagrees with its record count.
type ErrDimensions = parser.ErrDimensions

// NotCoveredError indicates a point outside every top-level subgrid.
type NotCoveredError struct {
	Lon, Lat float64
}

func (e *NotCoveredError) Error() string {
	return fmt.Sprintf("point (%.9f, %.9f) is not covered by the grid", e.Lon, e.Lat)
}

// NonConvergenceWarning is returned by the inverse solver when it reaches
// its iteration cap. The coordinates returned alongside it are the last
// estimate and are usually good to well under a millimetre; callers that
// accept best-effort results can test for it with IsWarning.
type NonConvergenceWarning struct {
	Lon, Lat   float64 // input point
	Iterations int
	Residual   float64 // largest coordinate change in the final step, degrees
}

func (w *NonConvergenceWarning) Error() string {
	return fmt.Sprintf("inverse shift at (%.9f, %.9f) did not converge after %d iterations (residual %.3g deg)",
		w.Lon, w.Lat, w.Iterations, w.Residual)
}

// IsWarning reports whether err is only a NonConvergenceWarning.
func IsWarning(err error) bool {
	var w *NonConvergenceWarning
	return errors.As(err, &w)
}

// IsNotCovered reports whether err is a NotCoveredError.
func IsNotCovered(err error) bool {
	var nc *NotCoveredError
	return errors.As(err, &nc)
}
