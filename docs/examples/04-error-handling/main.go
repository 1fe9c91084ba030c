package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/ntv2/pkg/crs"
	"github.com/beetlebugorg/ntv2/pkg/gridshift"
	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

func safeOpenGrid(path string) (*ntv2.GridFile, error) {
	grid, err := ntv2.Open(path, ntv2.DefaultParseOptions())
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("grid file not found: %s", path)
		}

		var fe *ntv2.FormatError
		if errors.As(err, &fe) {
			log.Printf("Malformed grid %s at offset %d: %s", path, fe.Offset, fe.Reason)
		}
		return nil, err
	}
	return grid, nil
}

func main() {
	grid, err := safeOpenGrid("BETA2007.gsb")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	// Points outside the grid are reported, not guessed
	_, _, err = grid.Transform(2.35, 48.85, false)
	if ntv2.IsNotCovered(err) {
		log.Printf("Expected error: %v", err)
	}

	// A tight iteration cap makes the inverse stop early; the estimate is
	// still returned
	opts := ntv2.DefaultParseOptions()
	opts.Solver.MaxIterations = 1
	strict, err := ntv2.Open("BETA2007.gsb", opts)
	if err != nil {
		log.Fatal(err)
	}
	lon, lat, err := strict.Transform(7.482506019176, 53.498461143331, true)
	if ntv2.IsWarning(err) {
		log.Printf("Warning: %v", err)
	}
	fmt.Printf("Estimate: %.9f, %.9f\n", lon, lat)

	// Geocentric systems have no grid splice
	_, err = gridshift.CreateGridTransform(crs.DefaultFactory{}, crs.GeocentricWGS84, crs.GeographicDHDN, grid, false)
	var ue *gridshift.UnsupportedTransformError
	if errors.As(err, &ue) {
		log.Printf("Expected error: %v", ue)
	}

	// Try to open a non-existent grid
	_, err = safeOpenGrid("NONEXISTENT.gsb")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
