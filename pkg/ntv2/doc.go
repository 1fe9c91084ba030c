// Package ntv2 loads NTv2 grid shift files and applies them to coordinates.
//
// An NTv2 file holds one or more regular lattices ("subgrids") of latitude
// and longitude corrections between two geodetic datums. Subgrids may nest:
// a child covers part of its parent at a finer spacing and takes precedence
// wherever it applies.
//
// # Basic Usage
//
//	grid, err := ntv2.Open("BETA2007.gsb", ntv2.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// DHDN -> ETRS89
//	lon, lat, err := grid.Transform(7.483333333333, 53.5, false)
//
//	// ETRS89 -> DHDN
//	lon, lat, err = grid.Transform(lon, lat, true)
//
// # Lookup
//
// LocateCell picks the finest subgrid containing a point and the lattice
// square around it; Interpolate evaluates the bilinear shift there:
//
//	cell, err := grid.LocateCell(lon, lat)
//	shift := ntv2.Interpolate(cell) // degrees, longitude positive east
//
// Longitudes are positive east throughout this package even though NTv2
// files store them positive west.
//
// # Errors
//
// Load and Open fail with *FormatError for malformed files. Transform
// returns *NotCoveredError for points outside the grid and
// *NonConvergenceWarning when the inverse solver hits its iteration cap;
// the latter carries a usable estimate, see IsWarning.
//
// # Many Files
//
// GridSet combines several files with first-covering-file-wins precedence,
// LoadGridFilesParallel builds one concurrently, GridCache keeps loaded
// grids under a memory budget and Catalog maps names and datum pairs to
// files through a YAML index.
package ntv2
