package ntv2

import (
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// Transform shifts a point between the grid's two datums.
//
// The forward direction (inverse == false) goes from SystemFrom to SystemTo
// by adding the shift found at the input point. The inverse direction
// solves for the point whose forward shift lands on the input.
//
// A *NotCoveredError is returned for points outside the grid, with the input
// coordinates unchanged. A *NonConvergenceWarning comes with the best
// estimate the solver reached.
func (g *GridFile) Transform(lon, lat float64, inverse bool) (float64, float64, error) {
	if inverse {
		return g.Inverse(lon, lat)
	}
	return g.Forward(lon, lat)
}

// Forward applies the shift in the grid's native direction.
func (g *GridFile) Forward(lon, lat float64) (float64, float64, error) {
	s, err := g.Shift(lon, lat)
	if err != nil {
		return lon, lat, err
	}
	return lon + s.DLon, lat + s.DLat, nil
}

// Inverse undoes Forward by fixed-point iteration.
func (g *GridFile) Inverse(lon, lat float64) (float64, float64, error) {
	outLon, outLat, err := solveInverse(g.Shift, lon, lat, g.solver)
	if w, ok := err.(*NonConvergenceWarning); ok {
		g.log.WithFields(logrus.Fields{
			"grid":       g.name,
			"lon":        lon,
			"lat":        lat,
			"iterations": w.Iterations,
			"residual":   w.Residual,
		}).Debug("inverse shift did not converge")
	}
	return outLon, outLat, err
}

// TransformPoint transforms p in place.
//
// p is left untouched on NotCoveredError and updated to the best estimate
// on NonConvergenceWarning.
func (g *GridFile) TransformPoint(p *orb.Point, inverse bool) error {
	lon, lat, err := g.Transform(p.Lon(), p.Lat(), inverse)
	if err != nil && !IsWarning(err) {
		return err
	}
	p[0], p[1] = lon, lat
	return err
}
