package ntv2

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/beetlebugorg/ntv2/internal/parser"
)

// Header holds the overview metadata of a grid file.
type Header struct {
	Version    string
	Units      string // GS_TYPE: SECONDS, MINUTES or DEGREES
	SystemFrom string
	SystemTo   string

	// Ellipsoid axes in metres.
	MajorFrom, MinorFrom float64
	MajorTo, MinorTo     float64

	ByteOrder binary.ByteOrder
}

// GridFile is a loaded NTv2 grid: an ordered forest of subgrids indexed by
// the extents of the top-level ones.
//
// A GridFile is immutable after loading and safe for concurrent use.
//
// Example:
//
//	grid, err := ntv2.Open("BETA2007.gsb", ntv2.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	lon, lat, err := grid.Transform(7.483333333333, 53.5, false)
//	// lon, lat = 7.482506..., 53.498461...
type GridFile struct {
	name   string
	header Header
	raw    parser.Header

	grids []*SubGrid
	roots []int
	index *coverageIndex

	secPerUnit float64

	solver SolverOptions
	log    logrus.FieldLogger
}

// Open loads a grid file from disk.
func Open(path string, opts ParseOptions) (*GridFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}

	g, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Load decodes a grid file from r.
//
// The whole stream is read and validated before the GridFile is returned.
// Malformed input yields a *FormatError and no GridFile.
func Load(r io.Reader, opts ParseOptions) (*GridFile, error) {
	if err := opts.Solver.Validate(); err != nil {
		return nil, err
	}

	file, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}

	return newGridFile(file, opts)
}

func newGridFile(file *parser.File, opts ParseOptions) (*GridFile, error) {
	parents, err := parser.ResolveParents(file)
	if err != nil {
		return nil, fmt.Errorf("load grid: %w", err)
	}

	// Units were checked by the parser.
	secPerUnit, _ := parser.ArcSecondsPerUnit(file.Header.GridShiftType)

	g := &GridFile{
		name: opts.Name,
		header: Header{
			Version:    file.Header.Version,
			Units:      file.Header.GridShiftType,
			SystemFrom: file.Header.SystemFrom,
			SystemTo:   file.Header.SystemTo,
			MajorFrom:  file.Header.MajorFrom,
			MinorFrom:  file.Header.MinorFrom,
			MajorTo:    file.Header.MajorTo,
			MinorTo:    file.Header.MinorTo,
			ByteOrder:  file.ByteOrder,
		},
		raw:        file.Header,
		grids:      make([]*SubGrid, len(file.SubFiles)),
		secPerUnit: secPerUnit,
		solver:     opts.Solver,
		log:        loggerOrDiscard(opts.Logger),
	}
	if g.header.Units == "" {
		g.header.Units = parser.UnitSeconds
	}

	for i := range file.SubFiles {
		g.grids[i] = newSubGrid(i, &file.SubFiles[i], secPerUnit)
	}

	// Parents always precede their children, so depths can be filled in
	// file order.
	var rootBounds []orb.Bound
	for i, p := range parents {
		sg := g.grids[i]
		sg.parent = p
		if p < 0 {
			g.roots = append(g.roots, i)
			rootBounds = append(rootBounds, sg.bounds)
			continue
		}
		parent := g.grids[p]
		parent.children = append(parent.children, i)
		sg.depth = parent.depth + 1
	}
	g.index = newCoverageIndex(rootBounds)

	g.log.WithFields(logrus.Fields{
		"grid":     g.name,
		"from":     g.header.SystemFrom,
		"to":       g.header.SystemTo,
		"subgrids": len(g.grids),
		"roots":    len(g.roots),
		"nodes":    g.NodeCount(),
		"units":    g.header.Units,
	}).Debug("grid loaded")

	return g, nil
}

// Name returns the label given at load time.
func (g *GridFile) Name() string { return g.name }

// Header returns the overview metadata.
func (g *GridFile) Header() Header { return g.header }

// SubGrids returns every subgrid in file order.
func (g *GridFile) SubGrids() []*SubGrid { return g.grids }

// SubGrid returns the subgrid at file position i.
func (g *GridFile) SubGrid(i int) *SubGrid { return g.grids[i] }

// Roots returns the top-level subgrids in file order.
func (g *GridFile) Roots() []*SubGrid {
	roots := make([]*SubGrid, len(g.roots))
	for i, r := range g.roots {
		roots[i] = g.grids[r]
	}
	return roots
}

// Children returns the direct children of sg in file order.
func (g *GridFile) Children(sg *SubGrid) []*SubGrid {
	children := make([]*SubGrid, len(sg.children))
	for i, c := range sg.children {
		children[i] = g.grids[c]
	}
	return children
}

// Parent returns the parent of sg, or nil for a top-level subgrid.
func (g *GridFile) Parent(sg *SubGrid) *SubGrid {
	if sg.parent < 0 {
		return nil
	}
	return g.grids[sg.parent]
}

// Bounds returns the union of the top-level extents.
func (g *GridFile) Bounds() orb.Bound { return g.index.union() }

// Covers reports whether any top-level subgrid contains the point.
func (g *GridFile) Covers(lon, lat float64) bool {
	_, ok := g.index.first(lon, lat)
	return ok
}

// NodeCount returns the total number of nodes across all subgrids.
func (g *GridFile) NodeCount() int {
	n := 0
	for _, sg := range g.grids {
		n += sg.NodeCount()
	}
	return n
}

// Solver returns the inverse solver options in effect.
func (g *GridFile) Solver() SolverOptions { return g.solver }

// WriteTo encodes the grid as an NTv2 file in its original byte order.
func (g *GridFile) WriteTo(w io.Writer) (int64, error) {
	file := &parser.File{
		Header:    g.raw,
		ByteOrder: g.header.ByteOrder,
		SubFiles:  make([]parser.SubFile, len(g.grids)),
	}
	file.Header.NumSubFileRecords = parser.SubFileRecords
	file.Header.NumFiles = int32(len(g.grids))
	for i, sg := range g.grids {
		file.SubFiles[i] = sg.subFile(g.secPerUnit)
	}

	cw := &countingWriter{w: w}
	if err := parser.Encode(cw, file); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
