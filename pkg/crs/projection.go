package crs

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// coordFunc matches the functions returned by wgs84.Transform.
type coordFunc = func(a, b, c float64) (float64, float64, float64)

// Newton refinement of the inverse projection.
const (
	unprojectIterations = 8
	unprojectTolerance  = 1e-6 // metres
	jacobianStep        = 1e-6 // degrees
)

// projection runs the transverse Mercator formulas of github.com/wroge/wgs84
// for one Projected system. Both directions stay on the projection's own
// datum, so no datum shift is applied here.
//
// The forward series is used as is. The closed-form inverse only seeds a
// Newton iteration on the forward series, which brings the round trip below
// a micrometre.
type projection struct {
	name             string
	project, inverse coordFunc
	unproject        bool
}

func newProjection(p *Projected) *projection {
	d := wgs84.Datum{
		Spheroid: p.Datum().Spheroid,
		Area: wgs84.AreaFunc(func(lon, lat float64) bool {
			return true
		}),
	}
	tm := p.projection
	proj := d.TransverseMercator(tm.CentralMeridian, tm.LatitudeOfOrigin, tm.ScaleFactor, tm.FalseEasting, tm.FalseNorthing)
	lonLat := d.LonLat()

	return &projection{
		name:    p.Name(),
		project: wgs84.Transform(lonLat, proj),
		inverse: wgs84.Transform(proj, lonLat),
	}
}

func (p *projection) Transform(x, y, z float64) (float64, float64, float64, error) {
	var nx, ny, nz float64
	if p.unproject {
		nx, ny, nz = p.unprojectPoint(x, y, z)
	} else {
		nx, ny, nz = p.project(x, y, z)
	}
	if math.IsNaN(nx) || math.IsNaN(ny) || math.IsInf(nx, 0) || math.IsInf(ny, 0) {
		return x, y, z, fmt.Errorf("%s: cannot project (%g, %g)", p.name, x, y)
	}
	return nx, ny, nz, nil
}

// unprojectPoint solves project(lon, lat) = (east, north) for lon and lat.
// The height passes through unchanged.
func (p *projection) unprojectPoint(east, north, h float64) (float64, float64, float64) {
	lon, lat, _ := p.inverse(east, north, h)
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return lon, lat, h
	}

	forward := func(y, x []float64) {
		y[0], y[1], _ = p.project(x[0], x[1], h)
	}
	settings := &fd.JacobianSettings{Formula: fd.Central, Step: jacobianStep}
	jac := mat.NewDense(2, 2, nil)
	var step mat.VecDense

	for i := 0; i < unprojectIterations; i++ {
		e, n, _ := p.project(lon, lat, h)
		de, dn := east-e, north-n
		if math.Abs(de) < unprojectTolerance && math.Abs(dn) < unprojectTolerance {
			break
		}
		fd.Jacobian(jac, forward, []float64{lon, lat}, settings)
		if err := step.SolveVec(jac, mat.NewVecDense(2, []float64{de, dn})); err != nil {
			break
		}
		lon += step.AtVec(0)
		lat += step.AtVec(1)
	}
	return lon, lat, h
}

func (p *projection) Inverse() MathTransform {
	inv := *p
	inv.unproject = !p.unproject
	return &inv
}
