package main

import (
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/ntv2/pkg/ntv2"
)

// catalog.yaml:
//
//	grids:
//	  - name: BETA2007
//	    path: BETA2007.gsb
//	    source: DHDN
//	    target: ETRS89
//	  - name: NTV2_0
//	    path: ntv2_0.gsb
//	    source: NAD27
//	    target: NAD83
func main() {
	catalog, err := ntv2.LoadCatalog("catalog.yaml")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Catalog contains %d grids\n\n", len(catalog.Grids))
	for _, e := range catalog.Grids {
		fmt.Printf("Grid: %s\n", e.Name)
		fmt.Printf("  Path: %s\n", catalog.ResolvePath(e))
		fmt.Printf("  Datums: %s -> %s\n", e.Source, e.Target)
	}

	// Cached access by name
	cache := ntv2.NewGridCache(256 * 1024 * 1024) // 256MB
	for i := 0; i < 3; i++ {
		if _, err := catalog.Open("BETA2007", cache, ntv2.DefaultParseOptions()); err != nil {
			log.Fatal(err)
		}
	}
	stats := cache.Stats()
	fmt.Printf("\nCache: %d grids, %d bytes, hit rate %.0f%%\n",
		stats.GridCount, stats.UsedMemory, stats.HitRate()*100)

	// Every grid for a datum pair, loaded concurrently
	opts := ntv2.DefaultLoadOptions()
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\rLoading: %d/%d", loaded, total)
	}
	set, errs := catalog.OpenSet("DHDN", "ETRS89", opts)
	fmt.Println()
	for _, err := range errs {
		log.Printf("Skipped: %v", err)
	}

	lon, lat := 7.483333333333, 53.5
	if f, err := set.Select(lon, lat); err == nil {
		fmt.Printf("Location %.4f, %.4f is served by %s\n", lon, lat, f.Name())
	}

	// Coverage map
	data, err := set.Coverage().MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("coverage.geojson", data, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote coverage.geojson")
}
