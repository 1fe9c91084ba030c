package gridshift

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/beetlebugorg/ntv2/pkg/crs"
	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

// GridTransformation is a chain step that applies a grid shift to
// geographic coordinates. Heights pass through unchanged.
//
// A GridTransformation only holds a reference to its grid, so instances are
// cheap. Transform is safe for concurrent use; Invert is not.
type GridTransformation struct {
	grid    Shifter
	inverse bool
	log     logrus.FieldLogger
}

var _ crs.MathTransform = (*GridTransformation)(nil)

// NewGridTransformation creates a step running grid forward, or backward
// when inverse is set.
func NewGridTransformation(grid Shifter, inverse bool, log logrus.FieldLogger) *GridTransformation {
	if log == nil {
		log = discardLogger
	}
	return &GridTransformation{grid: grid, inverse: inverse, log: log}
}

// Transform shifts (lon, lat).
//
// Points outside the grid fail with *ntv2.NotCoveredError and are returned
// unchanged. An inverse shift that stops at the iteration cap is logged and
// its estimate returned without error.
func (g *GridTransformation) Transform(x, y, z float64) (float64, float64, float64, error) {
	lon, lat, err := g.grid.Transform(x, y, g.inverse)
	if err != nil {
		var w *ntv2.NonConvergenceWarning
		if errors.As(err, &w) {
			g.log.WithFields(logrus.Fields{
				"lon":        x,
				"lat":        y,
				"iterations": w.Iterations,
				"residual":   w.Residual,
			}).Warn("grid shift did not converge, using best estimate")
			return lon, lat, z, nil
		}
		return x, y, z, err
	}
	return lon, lat, z, nil
}

// Inverse returns a new step running the grid the other way.
func (g *GridTransformation) Inverse() crs.MathTransform {
	return &GridTransformation{grid: g.grid, inverse: !g.inverse, log: g.log}
}

// Invert flips the direction of g in place. Only the sole owner of g may
// call it; use Inverse for a step that other goroutines share.
func (g *GridTransformation) Invert() {
	g.inverse = !g.inverse
}

// IsInverse reports whether the grid runs backward.
func (g *GridTransformation) IsInverse() bool { return g.inverse }

// Grid returns the underlying shifter.
func (g *GridTransformation) Grid() Shifter { return g.grid }
