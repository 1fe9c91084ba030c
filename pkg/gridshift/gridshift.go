// Package gridshift splices NTv2 grid shifts into coordinate transformation
// chains.
//
// The default chain between two coordinate systems models the datum change
// with a 7-parameter Helmert transformation, which is accurate to a few
// metres. CreateGridTransform builds that chain and replaces its datum step
// with a grid lookup, keeping any projection steps:
//
//	grid, err := ntv2.Open("BETA2007.gsb", ntv2.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// DHDN Gauss-Krüger zone 2 -> ETRS89 UTM zone 32
//	t, err := gridshift.CreateGridTransform(crs.DefaultFactory{}, crs.GaussKrueger(2), crs.UTM(32), grid, false)
//	e, n, err := t.TransformPoint(2598417.333192, 5930677.980308)
//
// The inverse flag selects the grid direction. Pass true when the requested
// source -> target runs against the grid's native direction, for example
// ETRS89 -> DHDN with BETA2007.
package gridshift

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/beetlebugorg/ntv2/pkg/crs"
	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

// Shifter applies a grid shift to geographic coordinates in degrees.
// *ntv2.GridFile and *ntv2.GridSet implement it.
type Shifter interface {
	Transform(lon, lat float64, inverse bool) (float64, float64, error)
}

var (
	_ Shifter = (*ntv2.GridFile)(nil)
	_ Shifter = (*ntv2.GridSet)(nil)
)

// Options configures grid transformations.
type Options struct {
	// Logger receives a warning whenever an inverse shift stops at the
	// iteration cap. Nil discards them.
	Logger logrus.FieldLogger
}

// DefaultOptions returns options with a discarding logger.
func DefaultOptions() Options {
	return Options{}
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// UnsupportedTransformError reports a source/target combination that has no
// grid splice.
type UnsupportedTransformError struct {
	SourceKind crs.Kind
	TargetKind crs.Kind
	Reason     string
}

func (e *UnsupportedTransformError) Error() string {
	msg := fmt.Sprintf("grid transformation from %s to %s is not supported", e.SourceKind, e.TargetKind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// CreateGridTransform builds the factory's chain from source to target and
// replaces its datum step with grid:
//
//	geographic -> geographic  both steps become one grid step
//	projected  -> projected   the middle of exactly three steps
//	geographic -> projected   the first step
//	projected  -> geographic  the last step
//
// Other combinations fail with *UnsupportedTransformError. The chain is
// edited in place, so the returned Transformation keeps the factory's name
// and inversion behaviour.
func CreateGridTransform(factory crs.Factory, source, target crs.CoordinateSystem, grid Shifter, inverse bool) (*crs.Transformation, error) {
	return CreateGridTransformWithOptions(factory, source, target, grid, inverse, DefaultOptions())
}

// CreateGridTransformWithOptions is CreateGridTransform with options.
func CreateGridTransformWithOptions(factory crs.Factory, source, target crs.CoordinateSystem, grid Shifter, inverse bool, opts Options) (*crs.Transformation, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("create grid transform: nil coordinate system")
	}
	if grid == nil {
		return nil, fmt.Errorf("create grid transform: nil grid")
	}

	srcKind, tgtKind := source.Kind(), target.Kind()
	if !spliceable(srcKind) || !spliceable(tgtKind) {
		return nil, &UnsupportedTransformError{SourceKind: srcKind, TargetKind: tgtKind}
	}

	t, err := factory.BuildChain(source, target)
	if err != nil {
		return nil, fmt.Errorf("create grid transform: %w", err)
	}

	step := NewGridTransformation(grid, inverse, opts.Logger)
	if err := splice(t.Chain(), srcKind, tgtKind, step); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateGridTransformFromFile opens the grid at path and calls
// CreateGridTransform.
func CreateGridTransformFromFile(factory crs.Factory, source, target crs.CoordinateSystem, path string, inverse bool) (*crs.Transformation, error) {
	grid, err := ntv2.Open(path, ntv2.DefaultParseOptions())
	if err != nil {
		return nil, err
	}
	return CreateGridTransform(factory, source, target, grid, inverse)
}

func spliceable(k crs.Kind) bool {
	return k == crs.KindGeographic || k == crs.KindProjected
}

func splice(chain *crs.Chain, srcKind, tgtKind crs.Kind, step *GridTransformation) error {
	unsupported := func(reason string) error {
		return &UnsupportedTransformError{SourceKind: srcKind, TargetKind: tgtKind, Reason: reason}
	}
	gridStep := func(at crs.Step) crs.Step {
		return crs.Step{Source: at.Source, Target: at.Target, Transform: step}
	}

	n := chain.Len()
	switch {
	case srcKind == crs.KindGeographic && tgtKind == crs.KindGeographic:
		if n != 2 {
			return unsupported(fmt.Sprintf("expected 2 steps through geocentric space, got %d", n))
		}
		first, last := chain.At(0), chain.At(1)
		if err := chain.ReplaceAt(0, crs.Step{Source: first.Source, Target: last.Target, Transform: step}); err != nil {
			return err
		}
		return chain.RemoveAt(1)

	case srcKind == crs.KindProjected && tgtKind == crs.KindProjected:
		if n != 3 {
			return unsupported(fmt.Sprintf("expected 3 steps, got %d", n))
		}
		return chain.ReplaceAt(1, gridStep(chain.At(1)))

	case srcKind == crs.KindGeographic && tgtKind == crs.KindProjected:
		if n < 1 {
			return unsupported("empty chain")
		}
		return chain.ReplaceAt(0, gridStep(chain.At(0)))

	case srcKind == crs.KindProjected && tgtKind == crs.KindGeographic:
		if n < 1 {
			return unsupported("empty chain")
		}
		return chain.ReplaceAt(n-1, gridStep(chain.At(n-1)))
	}

	return unsupported("")
}
