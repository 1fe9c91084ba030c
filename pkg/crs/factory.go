package crs

import (
	"fmt"
)

// Factory builds the default transformation between two coordinate systems.
type Factory interface {
	BuildChain(source, target CoordinateSystem) (*Transformation, error)
}

// DefaultFactory builds chains from transverse Mercator projections and
// Helmert datum shifts through WGS84 geocentric coordinates.
//
// The chain shapes are fixed so that callers can edit them by position:
//
//	geographic -> geographic  [source -> WGS84 geocentric, WGS84 geocentric -> target]
//	projected  -> projected   [unproject, datum shift, project]
//	geographic -> projected   [datum shift, project]
//	projected  -> geographic  [unproject, datum shift]
//	geographic -> geocentric  [source -> WGS84 geocentric, WGS84 geocentric -> target]
//	geocentric -> geographic  [source -> WGS84 geocentric, WGS84 geocentric -> target]
//
// The datum shift step is present even when both sides share a datum.
type DefaultFactory struct{}

// BuildChain implements Factory.
func (DefaultFactory) BuildChain(source, target CoordinateSystem) (*Transformation, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("build chain: nil coordinate system")
	}
	name := fmt.Sprintf("%s to %s", source.Name(), target.Name())

	steps, err := buildSteps(source, target)
	if err != nil {
		return nil, fmt.Errorf("build chain %s: %w", name, err)
	}
	return NewTransformation(name, source, target, NewChain(steps...)), nil
}

func buildSteps(source, target CoordinateSystem) ([]Step, error) {
	switch src := source.(type) {
	case *Geographic:
		switch tgt := target.(type) {
		case *Geographic:
			return geocentricSteps(src, tgt)
		case *Projected:
			shift, err := datumStep(src, tgt.Geographic())
			if err != nil {
				return nil, err
			}
			return []Step{shift, projectStep(tgt)}, nil
		case *Geocentric:
			return geocentricSteps(src, tgt)
		}

	case *Projected:
		switch tgt := target.(type) {
		case *Projected:
			shift, err := datumStep(src.Geographic(), tgt.Geographic())
			if err != nil {
				return nil, err
			}
			return []Step{projectStep(src).Inverse(), shift, projectStep(tgt)}, nil
		case *Geographic:
			shift, err := datumStep(src.Geographic(), tgt)
			if err != nil {
				return nil, err
			}
			return []Step{projectStep(src).Inverse(), shift}, nil
		}

	case *Geocentric:
		if _, ok := target.(*Geographic); ok {
			return geocentricSteps(src, target)
		}
	}

	return nil, fmt.Errorf("no default chain from %s to %s", source.Kind(), target.Kind())
}

// geocentricSteps builds the two legs through WGS84 geocentric space.
// Geocentric endpoints skip the geodetic conversion on their side.
func geocentricSteps(source, target CoordinateSystem) ([]Step, error) {
	toWGS, err := toWGS84Geocentric(source)
	if err != nil {
		return nil, err
	}
	fromWGS, err := toWGS84Geocentric(target)
	if err != nil {
		return nil, err
	}
	return []Step{
		{Source: source, Target: GeocentricWGS84, Transform: toWGS},
		{Source: GeocentricWGS84, Target: target, Transform: fromWGS.Inverse()},
	}, nil
}

func toWGS84Geocentric(cs CoordinateSystem) (MathTransform, error) {
	d := cs.Datum()
	if cs.Kind() != KindGeocentric {
		return geographicToWGS84(d)
	}
	h, err := newHelmert(d.ToWGS84)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	return h, nil
}

func datumStep(source, target *Geographic) (Step, error) {
	t, err := datumShift(source.Datum(), target.Datum())
	if err != nil {
		return Step{}, err
	}
	return Step{Source: source, Target: target, Transform: t}, nil
}

func projectStep(p *Projected) Step {
	return Step{Source: p.Geographic(), Target: p, Transform: newProjection(p)}
}
