package ntv2

import (
	"fmt"
	"math"
)

// SolverOptions bounds the inverse shift iteration.
type SolverOptions struct {
	// MaxIterations caps the number of fixed-point steps.
	MaxIterations int

	// Tolerance is the relative epsilon passed to AlmostEqual when comparing
	// successive estimates.
	Tolerance float64
}

// DefaultSolverOptions returns 10 iterations at a relative tolerance of 1e-12.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: 10,
		Tolerance:     1e-12,
	}
}

// Validate rejects non-positive limits.
func (o SolverOptions) Validate() error {
	if o.MaxIterations <= 0 {
		return fmt.Errorf("solver: max iterations must be positive, got %d", o.MaxIterations)
	}
	if !(o.Tolerance > 0) {
		return fmt.Errorf("solver: tolerance must be positive, got %g", o.Tolerance)
	}
	return nil
}

// shiftFunc evaluates the forward shift at a point.
type shiftFunc func(lon, lat float64) (ShiftVector, error)

// solveInverse finds p such that p + shift(p) = (lon, lat).
//
// Each step computes candidate = target - shift(guess), starting from the
// target itself, and stops when candidate and guess agree in both
// components. The shift field varies slowly, so the iteration contracts
// quickly and usually settles in two or three steps.
func solveInverse(shift shiftFunc, lon, lat float64, opts SolverOptions) (float64, float64, error) {
	guessLon, guessLat := lon, lat
	residual := math.Inf(1)

	for i := 0; i < opts.MaxIterations; i++ {
		s, err := shift(guessLon, guessLat)
		if err != nil {
			return lon, lat, err
		}

		candLon := lon - s.DLon
		candLat := lat - s.DLat

		if AlmostEqual(candLon, guessLon, opts.Tolerance) && AlmostEqual(candLat, guessLat, opts.Tolerance) {
			return candLon, candLat, nil
		}

		residual = math.Max(math.Abs(candLon-guessLon), math.Abs(candLat-guessLat))
		guessLon, guessLat = candLon, candLat
	}

	return guessLon, guessLat, &NonConvergenceWarning{
		Lon:        lon,
		Lat:        lat,
		Iterations: opts.MaxIterations,
		Residual:   residual,
	}
}
