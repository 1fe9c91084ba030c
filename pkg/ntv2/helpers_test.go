package ntv2

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/beetlebugorg/ntv2/internal/parser"
)

// gridSpec describes a synthetic subgrid in east-positive degrees.
// shift returns arc-seconds with longitude positive east.
type gridSpec struct {
	name, parent string
	west, south  float64
	east, north  float64
	step         float64
	shift        func(lon, lat float64) (dlat, dlon float64)
}

func constShift(dlat, dlon float64) func(lon, lat float64) (float64, float64) {
	return func(lon, lat float64) (float64, float64) { return dlat, dlon }
}

// linearShift is reproduced exactly by bilinear interpolation.
func linearShift(lon, lat float64) (float64, float64) {
	return 1 + 0.5*lon - 0.25*lat, -2 + 0.25*lon + 0.125*lat
}

// saddleShift has a lon*lat term, so interpolation only approximates it
// between nodes.
func saddleShift(lon, lat float64) (float64, float64) {
	return lon * lat / 16, -lon * lon / 8
}

// buildFile encodes specs as an NTv2 file in SECONDS, writing records in
// file order: rows south to north, each row east to west.
func buildFile(order binary.ByteOrder, specs ...gridSpec) *parser.File {
	f := &parser.File{
		ByteOrder: order,
		Header: parser.Header{
			NumOverviewRecords: parser.OverviewRecords,
			NumSubFileRecords:  parser.SubFileRecords,
			NumFiles:           int32(len(specs)),
			GridShiftType:      parser.UnitSeconds,
			Version:            "NTv2.0",
			SystemFrom:         "OLD",
			SystemTo:           "NEW",
			MajorFrom:          6377397.155,
			MinorFrom:          6356078.963,
			MajorTo:            6378137,
			MinorTo:            6356752.314,
		},
	}

	for _, s := range specs {
		rows := int(math.Round((s.north-s.south)/s.step)) + 1
		cols := int(math.Round((s.east-s.west)/s.step)) + 1
		parent := s.parent
		if parent == "" {
			parent = parser.NoParent
		}
		sub := parser.SubFile{
			Header: parser.SubFileHeader{
				Name:     s.name,
				Parent:   parent,
				Created:  "20240101",
				Updated:  "20240101",
				SouthLat: s.south * 3600,
				NorthLat: s.north * 3600,
				EastLong: -s.east * 3600,
				WestLong: -s.west * 3600,
				LatInc:   s.step * 3600,
				LongInc:  s.step * 3600,
				Count:    int32(rows * cols),
			},
		}
		for row := 0; row < rows; row++ {
			for fromEast := 0; fromEast < cols; fromEast++ {
				lon := s.east - float64(fromEast)*s.step
				lat := s.south + float64(row)*s.step
				dlat, dlon := s.shift(lon, lat)
				sub.Records = append(sub.Records, parser.Record{
					LatShift:    float32(dlat),
					LonShift:    float32(-dlon),
					LatAccuracy: 0.003,
					LonAccuracy: 0.004,
				})
			}
		}
		f.SubFiles = append(f.SubFiles, sub)
	}

	return f
}

func encodeGrid(t testing.TB, specs ...gridSpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := parser.Encode(&buf, buildFile(binary.LittleEndian, specs...)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func loadGrid(t testing.TB, specs ...gridSpec) *GridFile {
	t.Helper()
	g, err := Load(bytes.NewReader(encodeGrid(t, specs...)), DefaultParseOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return g
}

func writeGrid(t testing.TB, dir, name string, specs ...gridSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, encodeGrid(t, specs...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// rootSpec covers 5E..10E, 50N..55N at half a degree.
func rootSpec(shift func(lon, lat float64) (float64, float64)) gridSpec {
	return gridSpec{
		name: "ROOT", west: 5, south: 50, east: 10, north: 55, step: 0.5,
		shift: shift,
	}
}
