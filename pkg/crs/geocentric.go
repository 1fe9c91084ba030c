package crs

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"
)

// geodeticConversion converts between geographic (lon, lat, h) in degrees
// and metres and earth-centred cartesian coordinates on one spheroid.
type geodeticConversion struct {
	spheroid Spheroid
	inverse  bool // geocentric -> geographic
}

func (g geodeticConversion) Transform(x, y, z float64) (float64, float64, float64, error) {
	if g.inverse {
		return toGeodetic(g.spheroid, x, y, z)
	}
	return toGeocentric(g.spheroid, x, y, z)
}

func (g geodeticConversion) Inverse() MathTransform {
	return geodeticConversion{spheroid: g.spheroid, inverse: !g.inverse}
}

// systems returns the geographic and geocentric reference systems of a
// datum on s with no shift to WGS84, so wgs84.Transform between them is a
// pure coordinate conversion.
func systems(s Spheroid) (wgs84.GeographicReferenceSystem, wgs84.GeocentricReferenceSystem) {
	d := wgs84.Datum{Spheroid: s}
	return d.LonLat(), d.XYZ()
}

func toGeocentric(s Spheroid, lon, lat, h float64) (float64, float64, float64, error) {
	if !(lat >= -90 && lat <= 90) || math.IsNaN(lon) {
		return lon, lat, h, fmt.Errorf("invalid geographic coordinate (%g, %g)", lon, lat)
	}
	geog, geoc := systems(s)
	x, y, z := wgs84.Transform(geog, geoc)(lon, lat, h)
	return x, y, z, nil
}

func toGeodetic(s Spheroid, x, y, z float64) (float64, float64, float64, error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
		return x, y, z, fmt.Errorf("geocentric coordinate is NaN")
	}

	// Bowring's formula divides by the distance from the axis; on the axis
	// the latitude is ±90 and the height is measured from the pole.
	if math.Hypot(x, y) < 1e-9 {
		lat := math.Copysign(90, z)
		return math.Atan2(y, x) * 180 / math.Pi, lat, math.Abs(z) - s.B(), nil
	}

	geog, geoc := systems(s)
	lon, lat, h := wgs84.Transform(geoc, geog)(x, y, z)
	return lon, lat, h, nil
}
