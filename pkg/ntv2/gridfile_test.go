package ntv2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/ntv2/internal/parser"
)

func TestLoadGeometry(t *testing.T) {
	g := loadGrid(t, rootSpec(linearShift))

	require.Len(t, g.SubGrids(), 1)
	sg := g.SubGrid(0)

	assert.Equal(t, "ROOT", sg.Name())
	assert.True(t, sg.IsRoot())
	assert.Equal(t, 11, sg.Rows())
	assert.Equal(t, 11, sg.Cols())
	assert.Equal(t, orb.Point{5, 50}, sg.Origin())
	dx, dy := sg.Spacing()
	assert.InDelta(t, 0.5, dx, 1e-15)
	assert.InDelta(t, 0.5, dy, 1e-15)
	assert.Equal(t, orb.Bound{Min: orb.Point{5, 50}, Max: orb.Point{10, 55}}, sg.Bounds())
	assert.Equal(t, 121, g.NodeCount())

	h := g.Header()
	assert.Equal(t, "OLD", h.SystemFrom)
	assert.Equal(t, "NEW", h.SystemTo)
	assert.Equal(t, "SECONDS", h.Units)
	assert.Equal(t, binary.ByteOrder(binary.LittleEndian), h.ByteOrder)
}

func TestLoadReordersNodesEastPositive(t *testing.T) {
	g := loadGrid(t, rootSpec(linearShift))
	sg := g.SubGrid(0)

	for _, rc := range [][2]int{{0, 0}, {0, 10}, {10, 0}, {10, 10}, {3, 7}} {
		node := sg.Node(rc[0], rc[1])
		wantLat, wantLon := linearShift(node.Lon(), node.Lat())
		got := sg.Shift(rc[0], rc[1])
		assert.Equal(t, wantLat, got.DLat, "DLat at row %d col %d", rc[0], rc[1])
		assert.Equal(t, wantLon, got.DLon, "DLon at row %d col %d", rc[0], rc[1])
		assert.InDelta(t, 0.004, got.LonAccuracy, 1e-9)
	}
}

func TestLocateCell(t *testing.T) {
	g := loadGrid(t, rootSpec(linearShift))

	tests := []struct {
		name     string
		lon, lat float64
		row, col int
		fx, fy   float64
	}{
		{"interior", 6.25, 51.125, 2, 2, 0.5, 0.25},
		{"on node", 7, 52, 4, 4, 0, 0},
		{"south-west corner", 5, 50, 0, 0, 0, 0},
		{"east edge", 10, 52.25, 4, 9, 1, 0.5},
		{"north edge", 6.25, 55, 9, 2, 0.5, 1},
		{"north-east corner", 10, 55, 9, 9, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := g.LocateCell(tt.lon, tt.lat)
			require.NoError(t, err)
			assert.Equal(t, "ROOT", c.SubGrid.Name())
			assert.Equal(t, tt.row, c.Row)
			assert.Equal(t, tt.col, c.Col)
			assert.InDelta(t, tt.fx, c.Fx, 1e-12)
			assert.InDelta(t, tt.fy, c.Fy, 1e-12)
		})
	}
}

func TestInterpolateLinearFieldExact(t *testing.T) {
	g := loadGrid(t, rootSpec(linearShift))

	points := []orb.Point{
		{5, 50}, {10, 55}, {7.3, 51.9}, {9.99, 50.01}, {5.123, 54.876}, {10, 52.2}, {6.6, 55},
	}
	for _, p := range points {
		s, err := g.Shift(p.Lon(), p.Lat())
		require.NoError(t, err)
		wantLat, wantLon := linearShift(p.Lon(), p.Lat())
		assert.InDelta(t, wantLat/3600, s.DLat, 1e-13, "DLat at %v", p)
		assert.InDelta(t, wantLon/3600, s.DLon, 1e-13, "DLon at %v", p)
	}
}

func TestInterpolationContinuity(t *testing.T) {
	g := loadGrid(t, rootSpec(saddleShift))

	// Approach an interior cell boundary from both sides.
	const eps = 1e-9
	for _, p := range []orb.Point{{7.5, 51.3}, {6.1, 52}, {8, 53}} {
		a, err := g.Shift(p.Lon()-eps, p.Lat()-eps)
		require.NoError(t, err)
		b, err := g.Shift(p.Lon()+eps, p.Lat()+eps)
		require.NoError(t, err)

		assert.InDelta(t, a.DLat, b.DLat, 1e-10, "DLat jump at %v", p)
		assert.InDelta(t, a.DLon, b.DLon, 1e-10, "DLon jump at %v", p)
	}

	// Nodes are reproduced exactly.
	s, err := g.Shift(7.5, 51)
	require.NoError(t, err)
	wantLat, wantLon := saddleShift(7.5, 51)
	assert.InDelta(t, wantLat/3600, s.DLat, 1e-15)
	assert.InDelta(t, wantLon/3600, s.DLon, 1e-15)
}

func TestFinerGridPrecedence(t *testing.T) {
	g := loadGrid(t,
		rootSpec(constShift(0, 0)),
		gridSpec{name: "CHILD", parent: "ROOT", west: 6, south: 51, east: 7, north: 52, step: 0.25, shift: constShift(36, -72)},
		gridSpec{name: "GRAND", parent: "CHILD", west: 6.5, south: 51.5, east: 7, north: 52, step: 0.125, shift: constShift(72, 36)},
	)

	tests := []struct {
		name     string
		lon, lat float64
		subgrid  string
		dlat     float64
	}{
		{"root only", 8, 53, "ROOT", 0},
		{"inside child", 6.2, 51.2, "CHILD", 36.0 / 3600},
		{"child west boundary", 6, 51.5, "CHILD", 36.0 / 3600},
		{"inside grandchild", 6.75, 51.75, "GRAND", 72.0 / 3600},
		{"grandchild corner", 7, 52, "GRAND", 72.0 / 3600},
		{"child not grandchild", 6.4, 51.9, "CHILD", 36.0 / 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := g.LocateCell(tt.lon, tt.lat)
			require.NoError(t, err)
			assert.Equal(t, tt.subgrid, c.SubGrid.Name())
			assert.InDelta(t, tt.dlat, Interpolate(c).DLat, 1e-15)
		})
	}

	child := g.SubGrid(1)
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, 2, g.SubGrid(2).Depth())
	assert.Same(t, g.SubGrid(0), g.Parent(child))
	assert.Nil(t, g.Parent(g.SubGrid(0)))
	require.Len(t, g.Children(g.SubGrid(0)), 1)
	assert.Equal(t, "CHILD", g.Children(g.SubGrid(0))[0].Name())
	assert.Len(t, g.Roots(), 1)
}

func TestDeeperSiblingDescendantWins(t *testing.T) {
	g := loadGrid(t,
		rootSpec(constShift(0, 0)),
		gridSpec{name: "A", parent: "ROOT", west: 6, south: 51, east: 8, north: 53, step: 0.25, shift: constShift(10, 0)},
		gridSpec{name: "B", parent: "ROOT", west: 7, south: 52, east: 9, north: 54, step: 0.25, shift: constShift(20, 0)},
		gridSpec{name: "G", parent: "B", west: 7, south: 52, east: 7.5, north: 52.5, step: 0.125, shift: constShift(30, 0)},
	)

	tests := []struct {
		name     string
		lon, lat float64
		subgrid  string
		depth    int
	}{
		{"grandchild under later sibling", 7.25, 52.25, "G", 2},
		{"grandchild corner", 7, 52, "G", 2},
		{"equal depth keeps file order", 7.75, 52.75, "A", 1},
		{"later sibling only", 8.5, 53.5, "B", 1},
		{"earlier sibling only", 6.5, 51.5, "A", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := g.LocateCell(tt.lon, tt.lat)
			require.NoError(t, err)
			assert.Equal(t, tt.subgrid, c.SubGrid.Name())
			assert.Equal(t, tt.depth, c.SubGrid.Depth())
		})
	}

	s, err := g.Shift(7.25, 52.25)
	require.NoError(t, err)
	assert.InDelta(t, 30.0/3600, s.DLat, 1e-15)
}

func TestOverlappingRootsFirstWins(t *testing.T) {
	g := loadGrid(t,
		gridSpec{name: "A", west: 0, south: 0, east: 2, north: 2, step: 1, shift: constShift(1, 0)},
		gridSpec{name: "B", west: 1, south: 1, east: 3, north: 3, step: 1, shift: constShift(2, 0)},
	)

	c, err := g.LocateCell(1.5, 1.5)
	require.NoError(t, err)
	assert.Equal(t, "A", c.SubGrid.Name())

	c, err = g.LocateCell(2.5, 2.5)
	require.NoError(t, err)
	assert.Equal(t, "B", c.SubGrid.Name())

	// Shared edge belongs to the first root.
	c, err = g.LocateCell(2, 1.5)
	require.NoError(t, err)
	assert.Equal(t, "A", c.SubGrid.Name())
}

func TestSingleRowGrid(t *testing.T) {
	g := loadGrid(t, gridSpec{name: "LINE", west: 0, south: 10, east: 4, north: 10, step: 1, shift: linearShift})

	s, err := g.Shift(2.5, 10)
	require.NoError(t, err)
	wantLat, _ := linearShift(2.5, 10)
	assert.InDelta(t, wantLat/3600, s.DLat, 1e-13)

	_, err = g.Shift(2.5, 10.1)
	assert.True(t, IsNotCovered(err))
}

func TestNotCovered(t *testing.T) {
	g := loadGrid(t, rootSpec(linearShift))

	for _, p := range []orb.Point{{4.99, 52}, {10.01, 52}, {7, 49.9}, {7, 55.0001}, {-170, -80}} {
		_, err := g.LocateCell(p.Lon(), p.Lat())
		var nc *NotCoveredError
		require.ErrorAs(t, err, &nc, "point %v", p)
		assert.Equal(t, p.Lon(), nc.Lon)

		lon, lat, err := g.Transform(p.Lon(), p.Lat(), false)
		assert.True(t, IsNotCovered(err))
		assert.Equal(t, p.Lon(), lon)
		assert.Equal(t, p.Lat(), lat)

		pt := p
		assert.Error(t, g.TransformPoint(&pt, true))
		assert.Equal(t, p, pt)
	}

	assert.False(t, g.Covers(11, 52))
	assert.True(t, g.Covers(10, 55))
}

func TestTransformRoundTrip(t *testing.T) {
	g := loadGrid(t, rootSpec(saddleShift))

	for _, p := range []orb.Point{{7.3, 51.9}, {5.5, 50.5}, {9.1, 54.2}, {6.77, 53.01}} {
		fLon, fLat, err := g.Transform(p.Lon(), p.Lat(), false)
		require.NoError(t, err)
		assert.NotEqual(t, p.Lon(), fLon)

		iLon, iLat, err := g.Transform(fLon, fLat, true)
		require.NoError(t, err)
		assert.InDelta(t, p.Lon(), iLon, 1e-10)
		assert.InDelta(t, p.Lat(), iLat, 1e-10)
	}
}

func TestTransformPointInPlace(t *testing.T) {
	g := loadGrid(t, rootSpec(constShift(3.6, -7.2)))

	p := orb.Point{7, 52}
	require.NoError(t, g.TransformPoint(&p, false))
	// Nodes are float32, so 3.6" is not exact.
	assert.InDelta(t, 7-0.002, p.Lon(), 1e-9)
	assert.InDelta(t, 52.001, p.Lat(), 1e-9)

	require.NoError(t, g.TransformPoint(&p, true))
	assert.InDelta(t, 7, p.Lon(), 1e-12)
	assert.InDelta(t, 52, p.Lat(), 1e-12)
}

func TestInverseNonConvergence(t *testing.T) {
	opts := DefaultParseOptions()
	opts.Solver.MaxIterations = 1
	g, err := Load(bytes.NewReader(encodeGrid(t, rootSpec(saddleShift))), opts)
	require.NoError(t, err)

	lon, lat, err := g.Transform(7.3, 51.9, true)
	require.Error(t, err)
	assert.True(t, IsWarning(err))

	var w *NonConvergenceWarning
	require.True(t, errors.As(err, &w))
	assert.Equal(t, 1, w.Iterations)
	assert.Greater(t, w.Residual, 0.0)

	// The estimate is still one step from the answer.
	assert.NotEqual(t, 7.3, lon)
	assert.NotEqual(t, 51.9, lat)

	p := orb.Point{7.3, 51.9}
	err = g.TransformPoint(&p, true)
	assert.True(t, IsWarning(err))
	assert.Equal(t, orb.Point{lon, lat}, p)
}

func TestLoadRejectsInvalidSolver(t *testing.T) {
	opts := DefaultParseOptions()
	opts.Solver.Tolerance = 0
	_, err := Load(bytes.NewReader(encodeGrid(t, rootSpec(linearShift))), opts)
	assert.Error(t, err)
}

func TestLoadFormatErrors(t *testing.T) {
	data := encodeGrid(t, rootSpec(linearShift))

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated records", data[:len(data)-200]},
		{"header only", data[:parser.RecordSize*11]},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Load(bytes.NewReader(tt.data), DefaultParseOptions())
			assert.Nil(t, g)
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}

	t.Run("unknown parent", func(t *testing.T) {
		f := buildFile(binary.BigEndian,
			rootSpec(linearShift),
			gridSpec{name: "CHILD", parent: "NOPE", west: 6, south: 51, east: 7, north: 52, step: 0.5, shift: linearShift},
		)
		var buf bytes.Buffer
		require.NoError(t, parser.Encode(&buf, f))

		g, err := Load(&buf, DefaultParseOptions())
		assert.Nil(t, g)
		var unknown *ErrUnknownParent
		assert.ErrorAs(t, err, &unknown)
	})
}

func TestWriteToRoundTrip(t *testing.T) {
	g := loadGrid(t,
		rootSpec(saddleShift),
		gridSpec{name: "CHILD", parent: "ROOT", west: 6, south: 51, east: 7, north: 52, step: 0.25, shift: linearShift},
	)

	var buf bytes.Buffer
	n, err := g.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	again, err := Load(&buf, DefaultParseOptions())
	require.NoError(t, err)
	require.Len(t, again.SubGrids(), 2)
	assert.Equal(t, g.Header(), again.Header())

	for i, sg := range g.SubGrids() {
		other := again.SubGrid(i)
		assert.Equal(t, sg.Bounds(), other.Bounds())
		assert.Equal(t, sg.ParentName(), other.ParentName())
		for row := 0; row < sg.Rows(); row++ {
			for col := 0; col < sg.Cols(); col++ {
				assert.Equal(t, sg.Shift(row, col), other.Shift(row, col))
			}
		}
	}
}

func TestMathHelpers(t *testing.T) {
	assert.True(t, AlmostEqual(1, 1, 0))
	assert.True(t, AlmostEqual(53.5, 53.5+1e-11, 1e-12))
	assert.False(t, AlmostEqual(53.5, 53.5+1e-9, 1e-12))
}

func TestSolverOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultSolverOptions().Validate())
	assert.Error(t, SolverOptions{MaxIterations: 0, Tolerance: 1e-12}.Validate())
	assert.Error(t, SolverOptions{MaxIterations: 5, Tolerance: -1}.Validate())
}

func BenchmarkForward(b *testing.B) {
	g := loadGrid(b, rootSpec(saddleShift))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = g.Transform(7.3, 51.9, false)
	}
}

func BenchmarkInverse(b *testing.B) {
	g := loadGrid(b, rootSpec(saddleShift))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = g.Transform(7.3, 51.9, true)
	}
}
