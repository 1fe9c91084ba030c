package ntv2

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BETA2007.gsb is the German DHDN -> ETRS89 grid published by the BKG
// (http://www.crs-geo.eu/BeTA2007). It is not redistributed here.
const beta2007Path = "testdata/BETA2007.gsb"

func openBeta2007(t *testing.T) *GridFile {
	t.Helper()
	if _, err := os.Stat(beta2007Path); err != nil {
		t.Skipf("fixture not present (%v); copy BETA2007.gsb into testdata/", err)
	}
	g, err := Open(beta2007Path, DefaultParseOptions())
	require.NoError(t, err)
	return g
}

func TestBeta2007Header(t *testing.T) {
	g := openBeta2007(t)

	h := g.Header()
	assert.Equal(t, "SECONDS", h.Units)
	assert.Contains(t, h.SystemFrom, "DHDN")
	assert.Equal(t, "ETRS89", h.SystemTo)
	assert.NotEmpty(t, g.SubGrids())
	assert.Equal(t, "BETA2007.gsb", g.Name())
}

func TestBeta2007Shift(t *testing.T) {
	g := openBeta2007(t)

	lon, lat, err := g.Transform(7.483333333333, 53.5, false)
	require.NoError(t, err)
	assert.InDelta(t, 7.482506019176, lon, 1e-8)
	assert.InDelta(t, 53.498461143331, lat, 1e-8)

	lon, lat, err = g.Transform(lon, lat, true)
	require.NoError(t, err)
	assert.InDelta(t, 7.483333333333, lon, 1e-9)
	assert.InDelta(t, 53.5, lat, 1e-9)

	_, _, err = g.Transform(0, 0, false)
	assert.True(t, IsNotCovered(err))
}
