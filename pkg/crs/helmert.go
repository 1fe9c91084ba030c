package crs

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// helmertTransform applies a Helmert transformation to geocentric
// coordinates:
//
//	X' = T + (1+s) R X
//
// where R is the small-angle position vector rotation matrix. The inverse
// uses the exact matrix inverse rather than negated parameters, so a round
// trip reproduces the input to rounding error.
type helmertTransform struct {
	t       *mat.VecDense
	r, rInv *mat.Dense
	inverse bool
}

func newHelmert(h Helmert) (MathTransform, error) {
	if h.IsZero() {
		return identity{}, nil
	}

	rx, ry, rz := h.rotation()
	r := mat.NewDense(3, 3, []float64{
		1, -rz, ry,
		rz, 1, -rx,
		-ry, rx, 1,
	})
	r.Scale(1+h.Scale*1e-6, r)

	var rInv mat.Dense
	if err := rInv.Inverse(r); err != nil {
		return nil, fmt.Errorf("helmert rotation is singular: %w", err)
	}

	return &helmertTransform{
		t:    mat.NewVecDense(3, []float64{h.TX, h.TY, h.TZ}),
		r:    r,
		rInv: &rInv,
	}, nil
}

func (h *helmertTransform) Transform(x, y, z float64) (float64, float64, float64, error) {
	in := mat.NewVecDense(3, []float64{x, y, z})
	var out mat.VecDense
	if h.inverse {
		var d mat.VecDense
		d.SubVec(in, h.t)
		out.MulVec(h.rInv, &d)
	} else {
		out.MulVec(h.r, in)
		out.AddVec(&out, h.t)
	}
	return out.AtVec(0), out.AtVec(1), out.AtVec(2), nil
}

func (h *helmertTransform) Inverse() MathTransform {
	inv := *h
	inv.inverse = !h.inverse
	return &inv
}

// datumShift converts geographic coordinates on from to geographic
// coordinates on to through WGS84 geocentric space.
func datumShift(from, to Datum) (MathTransform, error) {
	toWGS, err := geographicToWGS84(from)
	if err != nil {
		return nil, err
	}
	fromWGS, err := geographicToWGS84(to)
	if err != nil {
		return nil, err
	}
	return concat{toWGS, fromWGS.Inverse()}, nil
}

// geographicToWGS84 converts geographic coordinates on d to WGS84
// geocentric coordinates.
func geographicToWGS84(d Datum) (MathTransform, error) {
	h, err := newHelmert(d.ToWGS84)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}
	return concat{geodeticConversion{spheroid: d.Spheroid}, h}, nil
}
