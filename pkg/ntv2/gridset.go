package ntv2

import (
	"github.com/paulmach/orb"
)

// GridSet is an ordered list of grid files treated as one coverage.
//
// When files overlap, the first file in the list that covers a point serves
// it, the same rule that applies to top-level subgrids inside one file.
// A GridSet is immutable and safe for concurrent use.
//
// Example:
//
//	set, errs := ntv2.LoadGridFilesParallel(paths, ntv2.DefaultLoadOptions())
//	if len(errs) > 0 {
//	    log.Printf("skipped %d grids", len(errs))
//	}
//	lon, lat, err := set.Transform(-79.378243, 43.664087, false)
type GridSet struct {
	files []*GridFile
	index *coverageIndex
}

// NewGridSet builds a set from files in priority order. Nil entries are
// ignored.
func NewGridSet(files ...*GridFile) *GridSet {
	set := &GridSet{}
	var bounds []orb.Bound
	for _, f := range files {
		if f == nil {
			continue
		}
		set.files = append(set.files, f)
		bounds = append(bounds, f.Bounds())
	}
	set.index = newCoverageIndex(bounds)
	return set
}

// Files returns the grid files in priority order.
func (s *GridSet) Files() []*GridFile { return s.files }

// Len returns the number of grid files.
func (s *GridSet) Len() int { return len(s.files) }

// Bounds returns the union of all file extents.
func (s *GridSet) Bounds() orb.Bound { return s.index.union() }

// Select returns the first file whose top-level subgrids contain the point.
func (s *GridSet) Select(lon, lat float64) (*GridFile, error) {
	for _, pos := range s.index.covering(lon, lat) {
		// File extents are unions of subgrid extents and may include gaps.
		if f := s.files[pos]; f.Covers(lon, lat) {
			return f, nil
		}
	}
	return nil, &NotCoveredError{Lon: lon, Lat: lat}
}

// FilesIntersecting returns the files whose extent touches b, in priority order.
func (s *GridSet) FilesIntersecting(b orb.Bound) []*GridFile {
	var result []*GridFile
	for _, pos := range s.index.intersecting(b) {
		result = append(result, s.files[pos])
	}
	return result
}

// Covers reports whether any file covers the point.
func (s *GridSet) Covers(lon, lat float64) bool {
	_, err := s.Select(lon, lat)
	return err == nil
}

// LocateCell finds the cell in the first covering file.
func (s *GridSet) LocateCell(lon, lat float64) (Cell, error) {
	f, err := s.Select(lon, lat)
	if err != nil {
		return Cell{}, err
	}
	return f.LocateCell(lon, lat)
}

// Shift returns the forward shift from the first covering file.
func (s *GridSet) Shift(lon, lat float64) (ShiftVector, error) {
	f, err := s.Select(lon, lat)
	if err != nil {
		return ShiftVector{}, err
	}
	return f.Shift(lon, lat)
}

// Transform shifts the point with the first file covering it. For the
// inverse direction the file is chosen by the input point.
func (s *GridSet) Transform(lon, lat float64, inverse bool) (float64, float64, error) {
	f, err := s.Select(lon, lat)
	if err != nil {
		return lon, lat, err
	}
	return f.Transform(lon, lat, inverse)
}

// TransformPoint transforms p in place; see GridFile.TransformPoint.
func (s *GridSet) TransformPoint(p *orb.Point, inverse bool) error {
	f, err := s.Select(p.Lon(), p.Lat())
	if err != nil {
		return err
	}
	return f.TransformPoint(p, inverse)
}
