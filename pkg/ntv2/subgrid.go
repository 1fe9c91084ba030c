package ntv2

import (
	"github.com/paulmach/orb"

	"github.com/beetlebugorg/ntv2/internal/parser"
)

// Shift is one grid node. Shifts and accuracies are in arc-seconds and
// DLon is positive east.
type Shift struct {
	DLat        float64
	DLon        float64
	LatAccuracy float64
	LonAccuracy float64
}

// SubGrid is one regular lattice of shift nodes.
//
// The lattice origin is the south-west node; columns run west to east and
// rows run south to north. Nodes are stored row-major, so the node at
// (row, col) is at index row*Cols()+col. The lattice covers
// [lon0, lon0+(cols-1)*dx] x [lat0, lat0+(rows-1)*dy] with both edges
// inclusive.
//
// A SubGrid is immutable once its GridFile is loaded.
type SubGrid struct {
	header parser.SubFileHeader

	index    int
	parent   int // -1 for top-level subgrids
	children []int
	depth    int

	lon0, lat0 float64
	dx, dy     float64
	rows, cols int

	nodes  []Shift
	bounds orb.Bound
}

// newSubGrid converts a decoded subfile into east-positive lattice form.
//
// File records run east to west within each row, so the file index k maps
// to row k/cols and west-to-east column cols-1-k%cols.
func newSubGrid(index int, sub *parser.SubFile, secPerUnit float64) *SubGrid {
	h := sub.Header
	rows, cols := h.Dimensions()

	g := &SubGrid{
		header: h,
		index:  index,
		parent: -1,
		lon0:   -toDegrees(h.WestLong, secPerUnit),
		lat0:   toDegrees(h.SouthLat, secPerUnit),
		dx:     toDegrees(h.LongInc, secPerUnit),
		dy:     toDegrees(h.LatInc, secPerUnit),
		rows:   rows,
		cols:   cols,
		nodes:  make([]Shift, len(sub.Records)),
	}

	for k, rec := range sub.Records {
		row := k / cols
		col := cols - 1 - k%cols
		g.nodes[row*cols+col] = Shift{
			DLat:        float64(rec.LatShift) * secPerUnit,
			DLon:        -float64(rec.LonShift) * secPerUnit,
			LatAccuracy: float64(rec.LatAccuracy) * secPerUnit,
			LonAccuracy: float64(rec.LonAccuracy) * secPerUnit,
		}
	}

	g.bounds = orb.Bound{
		Min: orb.Point{g.lon0, g.lat0},
		Max: orb.Point{g.lon0 + float64(cols-1)*g.dx, g.lat0 + float64(rows-1)*g.dy},
	}

	return g
}

// toDegrees divides rather than multiplying by 1/3600 so that whole
// arc-second values such as 18000 map to exact degrees.
func toDegrees(v, secPerUnit float64) float64 {
	return v * secPerUnit / 3600
}

// subFile converts the lattice back to file order for encoding.
func (g *SubGrid) subFile(secPerUnit float64) parser.SubFile {
	sub := parser.SubFile{
		Header:  g.header,
		Records: make([]parser.Record, len(g.nodes)),
	}
	for k := range sub.Records {
		row := k / g.cols
		col := g.cols - 1 - k%g.cols
		n := g.nodes[row*g.cols+col]
		sub.Records[k] = parser.Record{
			LatShift:    float32(n.DLat / secPerUnit),
			LonShift:    float32(-n.DLon / secPerUnit),
			LatAccuracy: float32(n.LatAccuracy / secPerUnit),
			LonAccuracy: float32(n.LonAccuracy / secPerUnit),
		}
	}
	return sub
}

// Name returns the SUB_NAME of the subgrid.
func (g *SubGrid) Name() string { return g.header.Name }

// ParentName returns the PARENT field, "NONE" for top-level subgrids.
func (g *SubGrid) ParentName() string { return g.header.Parent }

// Created returns the CREATED field.
func (g *SubGrid) Created() string { return g.header.Created }

// Updated returns the UPDATED field.
func (g *SubGrid) Updated() string { return g.header.Updated }

// Index returns the position of the subgrid in file order.
func (g *SubGrid) Index() int { return g.index }

// Depth returns 0 for top-level subgrids and parent depth + 1 otherwise.
func (g *SubGrid) Depth() int { return g.depth }

// IsRoot reports whether the subgrid has no parent.
func (g *SubGrid) IsRoot() bool { return g.parent < 0 }

// Rows returns the number of node rows (south to north).
func (g *SubGrid) Rows() int { return g.rows }

// Cols returns the number of node columns (west to east).
func (g *SubGrid) Cols() int { return g.cols }

// Origin returns the south-west node position in degrees.
func (g *SubGrid) Origin() orb.Point { return orb.Point{g.lon0, g.lat0} }

// Spacing returns the node spacing in degrees.
func (g *SubGrid) Spacing() (dx, dy float64) { return g.dx, g.dy }

// Bounds returns the inclusive lattice extent in degrees.
func (g *SubGrid) Bounds() orb.Bound { return g.bounds }

// Contains reports whether the point lies on or inside the lattice extent.
func (g *SubGrid) Contains(lon, lat float64) bool {
	return g.bounds.Contains(orb.Point{lon, lat})
}

// Node returns the position of the node at (row, col).
func (g *SubGrid) Node(row, col int) orb.Point {
	return orb.Point{g.lon0 + float64(col)*g.dx, g.lat0 + float64(row)*g.dy}
}

// Shift returns the node values at (row, col). It panics if the indices are
// outside the lattice.
func (g *SubGrid) Shift(row, col int) Shift {
	return g.nodes[row*g.cols+col]
}

// NodeCount returns rows * cols.
func (g *SubGrid) NodeCount() int { return len(g.nodes) }
