package ntv2

import "math"

// Cell identifies the lattice square holding a point.
//
// Row and Col address the south-west node of the square. Fx and Fy are the
// fractional offsets of the point inside it, both in [0, 1]. On the east or
// north edge of a subgrid the cell is the last full square with a fraction
// of 1, so interpolation never reads past the lattice.
type Cell struct {
	SubGrid  *SubGrid
	Row, Col int
	Fx, Fy   float64
}

// ShiftVector is an interpolated shift in degrees, longitude positive east.
type ShiftVector struct {
	DLon, DLat float64
}

// LocateCell finds the deepest subgrid containing the point and the cell
// within it.
//
// Every top-level subgrid containing the point (found through the R-tree)
// is searched, along with every containing descendant. The deepest match
// wins; between matches of equal depth the first one reached in file order
// is kept. Containment is inclusive, so a point on a child's boundary belongs
// to the child rather than its parent.
func (g *GridFile) LocateCell(lon, lat float64) (Cell, error) {
	best := -1
	var visit func(i int)
	visit = func(i int) {
		if best < 0 || g.grids[i].depth > g.grids[best].depth {
			best = i
		}
		for _, c := range g.grids[i].children {
			if g.grids[c].Contains(lon, lat) {
				visit(c)
			}
		}
	}
	for _, pos := range g.index.covering(lon, lat) {
		visit(g.roots[pos])
	}

	if best < 0 {
		return Cell{}, &NotCoveredError{Lon: lon, Lat: lat}
	}
	return g.grids[best].cell(lon, lat), nil
}

// cell computes the cell for a point known to lie within the subgrid.
func (g *SubGrid) cell(lon, lat float64) Cell {
	col, fx := split((lon-g.lon0)/g.dx, g.cols)
	row, fy := split((lat-g.lat0)/g.dy, g.rows)
	return Cell{SubGrid: g, Row: row, Col: col, Fx: fx, Fy: fy}
}

// split turns a fractional node coordinate into a base index and an offset,
// clamped so that index+1 stays inside n nodes whenever n > 1.
func split(f float64, n int) (int, float64) {
	i := int(math.Floor(f))
	if i > n-2 {
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	frac := f - float64(i)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return i, frac
}

// Interpolate returns the bilinear shift at the cell position, converted
// from arc-seconds to degrees:
//
//	(1-fx)(1-fy)*v00 + fx(1-fy)*v10 + (1-fx)fy*v01 + fx*fy*v11
//
// where v00 is the south-west node, v10 south-east, v01 north-west and v11
// north-east.
func Interpolate(c Cell) ShiftVector {
	g := c.SubGrid
	c1 := min(c.Col+1, g.cols-1)
	r1 := min(c.Row+1, g.rows-1)

	v00 := g.nodes[c.Row*g.cols+c.Col]
	v10 := g.nodes[c.Row*g.cols+c1]
	v01 := g.nodes[r1*g.cols+c.Col]
	v11 := g.nodes[r1*g.cols+c1]

	w00 := (1 - c.Fx) * (1 - c.Fy)
	w10 := c.Fx * (1 - c.Fy)
	w01 := (1 - c.Fx) * c.Fy
	w11 := c.Fx * c.Fy

	return ShiftVector{
		DLon: (w00*v00.DLon + w10*v10.DLon + w01*v01.DLon + w11*v11.DLon) / 3600,
		DLat: (w00*v00.DLat + w10*v10.DLat + w01*v01.DLat + w11*v11.DLat) / 3600,
	}
}

// Shift returns the interpolated forward shift at the point.
func (g *GridFile) Shift(lon, lat float64) (ShiftVector, error) {
	c, err := g.LocateCell(lon, lat)
	if err != nil {
		return ShiftVector{}, err
	}
	return Interpolate(c), nil
}
