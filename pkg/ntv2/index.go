package ntv2

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// indexPad widens every rectangle slightly. rtreego treats touching
// rectangles as disjoint, while lattice extents are closed, so points on a
// shared edge must still find both neighbours.
const indexPad = 1e-9

// coverageIndex answers "which extents contain this point" over a fixed,
// ordered list of extents, returning positions in list order.
type coverageIndex struct {
	tree   *rtreego.Rtree
	bounds []orb.Bound
}

// indexEntry implements rtreego.Spatial for one extent.
type indexEntry struct {
	pos  int
	rect rtreego.Rect
}

// Bounds method for rtreego.Spatial interface.
func (e indexEntry) Bounds() rtreego.Rect {
	return e.rect
}

func boundRect(b orb.Bound) rtreego.Rect {
	rect, _ := rtreego.NewRectFromPoints(
		rtreego.Point{b.Min[0] - indexPad, b.Min[1] - indexPad},
		rtreego.Point{b.Max[0] + indexPad, b.Max[1] + indexPad},
	)
	return rect
}

// newCoverageIndex builds an R-tree (2D, min=25 children, max=50 children)
// over the given extents.
func newCoverageIndex(bounds []orb.Bound) *coverageIndex {
	objs := make([]rtreego.Spatial, len(bounds))
	for i, b := range bounds {
		objs[i] = indexEntry{pos: i, rect: boundRect(b)}
	}
	return &coverageIndex{
		tree:   rtreego.NewTree(2, 25, 50, objs...),
		bounds: bounds,
	}
}

// covering returns the positions of all extents containing the point, in
// list order.
func (idx *coverageIndex) covering(lon, lat float64) []int {
	p := orb.Point{lon, lat}
	hits := idx.tree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(indexPad))

	var result []int
	for _, s := range hits {
		e := s.(indexEntry)
		if idx.bounds[e.pos].Contains(p) {
			result = append(result, e.pos)
		}
	}
	sort.Ints(result)
	return result
}

// first returns the earliest extent containing the point.
func (idx *coverageIndex) first(lon, lat float64) (int, bool) {
	hits := idx.covering(lon, lat)
	if len(hits) == 0 {
		return -1, false
	}
	return hits[0], true
}

// intersecting returns the positions of all extents touching b, in list order.
func (idx *coverageIndex) intersecting(b orb.Bound) []int {
	hits := idx.tree.SearchIntersect(boundRect(b))

	var result []int
	for _, s := range hits {
		e := s.(indexEntry)
		if idx.bounds[e.pos].Intersects(b) {
			result = append(result, e.pos)
		}
	}
	sort.Ints(result)
	return result
}

// union returns the combined extent of every indexed bound.
func (idx *coverageIndex) union() orb.Bound {
	if len(idx.bounds) == 0 {
		return orb.Bound{}
	}
	u := idx.bounds[0]
	for _, b := range idx.bounds[1:] {
		u = u.Union(b)
	}
	return u
}
