package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

func main() {
	// Load grid file
	grid, err := ntv2.Open("BETA2007.gsb", ntv2.DefaultParseOptions())
	if err != nil {
		log.Fatal(err)
	}

	// Print grid info
	h := grid.Header()
	fmt.Printf("Grid: %s (%s)\n", grid.Name(), h.Version)
	fmt.Printf("Datums: %s -> %s\n", h.SystemFrom, h.SystemTo)
	fmt.Printf("Subgrids: %d, nodes: %d\n", len(grid.SubGrids()), grid.NodeCount())

	bounds := grid.Bounds()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.Min.Lon(), bounds.Min.Lat(),
		bounds.Max.Lon(), bounds.Max.Lat())

	// DHDN -> ETRS89
	lon, lat, err := grid.Transform(7.483333333333, 53.5, false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Forward: %.9f, %.9f\n", lon, lat)

	// ETRS89 -> DHDN
	lon, lat, err = grid.Transform(lon, lat, true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Inverse: %.9f, %.9f\n", lon, lat)
}
