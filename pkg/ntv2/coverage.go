package ntv2

import (
	"github.com/paulmach/orb/geojson"
)

// Coverage returns the subgrid extents as a GeoJSON FeatureCollection, one
// polygon per subgrid in file order.
//
// Example:
//
//	data, err := grid.Coverage().MarshalJSON()
//	os.WriteFile("coverage.geojson", data, 0o644)
func (g *GridFile) Coverage() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	g.appendCoverage(fc)
	return fc
}

func (g *GridFile) appendCoverage(fc *geojson.FeatureCollection) {
	for _, sg := range g.grids {
		f := geojson.NewFeature(sg.bounds.ToPolygon())
		f.ID = sg.Name()
		dx, dy := sg.Spacing()
		f.Properties["grid"] = g.name
		f.Properties["name"] = sg.Name()
		f.Properties["parent"] = sg.ParentName()
		f.Properties["depth"] = sg.Depth()
		f.Properties["rows"] = sg.Rows()
		f.Properties["cols"] = sg.Cols()
		f.Properties["dx"] = dx
		f.Properties["dy"] = dy
		f.Properties["from"] = g.header.SystemFrom
		f.Properties["to"] = g.header.SystemTo
		fc.Append(f)
	}
}

// Coverage returns the subgrid extents of every file in priority order.
func (s *GridSet) Coverage() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range s.files {
		f.appendCoverage(fc)
	}
	return fc
}
