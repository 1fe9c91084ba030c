package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntv2/pkg/crs"
	"github.com/beetlebugorg/ntv2/pkg/gridshift"
	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

func main() {
	grid, err := ntv2.Open("BETA2007.gsb", ntv2.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	gk2 := crs.GaussKrueger(2) // EPSG:31466
	utm32 := crs.UTM(32)       // EPSG:25832

	// Helmert only, for comparison
	helmert, err := crs.DefaultFactory{}.BuildChain(gk2, utm32)
	if err != nil {
		log.Fatal(err)
	}

	// Same chain with the datum step replaced by the grid
	t, err := gridshift.CreateGridTransform(crs.DefaultFactory{}, gk2, utm32, grid, false)
	if err != nil {
		log.Fatal(err)
	}

	for i, s := range t.Chain().Steps() {
		fmt.Printf("Step %d: %s\n", i, s)
	}

	x, y := 2598417.333192, 5930677.980308

	he, hn, err := helmert.TransformPoint(x, y)
	if err != nil {
		log.Fatal(err)
	}
	e, n, err := t.TransformPoint(x, y)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Helmert: %.3f, %.3f\n", he, hn)
	fmt.Printf("Grid:    %.3f, %.3f\n", e, n)
	fmt.Printf("Difference: %.3f m, %.3f m\n", e-he, n-hn)

	// UTM -> Gauss-Krüger runs the grid backwards
	back, err := gridshift.CreateGridTransform(crs.DefaultFactory{}, utm32, gk2, grid, true)
	if err != nil {
		log.Fatal(err)
	}
	bx, by, err := back.TransformPoint(e, n)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Round trip: %.6f, %.6f\n", bx, by)

	// Batch, with one point outside Germany
	points := []crs.Point{
		{X: 2598417.333192, Y: 5930677.980308},
		{X: 2500000, Y: 1000000},
	}
	for _, err := range t.TransformPoints(points) {
		fmt.Printf("Skipped: %v\n", err)
	}
	fmt.Printf("Batch: %.3f, %.3f\n", points[0].X, points[0].Y)
}
