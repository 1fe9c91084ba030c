package crs

import (
	"fmt"
)

// Transformation converts coordinates from Source to Target through a
// chain of steps.
//
// Example:
//
//	t, err := crs.DefaultFactory{}.BuildChain(crs.GaussKrueger(2), crs.UTM(32))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e, n, err := t.TransformPoint(2598417.333, 5930677.980)
type Transformation struct {
	Name   string
	Source CoordinateSystem
	Target CoordinateSystem

	chain *Chain
}

// NewTransformation wraps a chain.
func NewTransformation(name string, source, target CoordinateSystem, chain *Chain) *Transformation {
	if chain == nil {
		chain = NewChain()
	}
	return &Transformation{Name: name, Source: source, Target: target, chain: chain}
}

// Chain returns the underlying chain. Edits to it change the
// transformation.
func (t *Transformation) Chain() *Chain { return t.chain }

// TransformPoint transforms a 2D point; the height is taken as zero and
// dropped from the result.
func (t *Transformation) TransformPoint(x, y float64) (float64, float64, error) {
	x, y, _, err := t.chain.Transform(x, y, 0)
	return x, y, err
}

// TransformPoint3 transforms a 3D point.
func (t *Transformation) TransformPoint3(x, y, z float64) (float64, float64, float64, error) {
	return t.chain.Transform(x, y, z)
}

// TransformPoints transforms points in place. A failing point is left
// unchanged and reported as a *PointError; the rest of the batch is still
// transformed. The result is nil when every point succeeded.
func (t *Transformation) TransformPoints(points []Point) []error {
	var errs []error
	for i := range points {
		p := &points[i]
		x, y, z, err := t.chain.Transform(p.X, p.Y, p.Z)
		if err != nil {
			errs = append(errs, &PointError{Index: i, Err: err})
			continue
		}
		p.X, p.Y, p.Z = x, y, z
	}
	return errs
}

// Inverse returns the transformation from Target to Source. The chain is
// copied, so editing one does not affect the other.
func (t *Transformation) Inverse() *Transformation {
	return &Transformation{
		Name:   "Inverse of " + t.Name,
		Source: t.Target,
		Target: t.Source,
		chain:  t.chain.inverse(),
	}
}

func (t *Transformation) String() string {
	return fmt.Sprintf("%s (%d steps)", t.Name, t.chain.Len())
}

// PointError reports the failure of one point in a batch.
type PointError struct {
	Index int
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %d: %v", e.Index, e.Err)
}

func (e *PointError) Unwrap() error {
	return e.Err
}
