package crs

import "math"

// Spheroid is a reference ellipsoid. It satisfies wgs84.Spheroid.
type Spheroid struct {
	Name              string
	SemiMajorAxis     float64 // metres
	InverseFlattening float64
}

// A returns the semi-major axis.
func (s Spheroid) A() float64 { return s.SemiMajorAxis }

// Fi returns the inverse flattening.
func (s Spheroid) Fi() float64 { return s.InverseFlattening }

// F returns the flattening.
func (s Spheroid) F() float64 { return 1 / s.InverseFlattening }

// B returns the semi-minor axis.
func (s Spheroid) B() float64 { return s.SemiMajorAxis * (1 - s.F()) }

// E2 returns the first eccentricity squared.
func (s Spheroid) E2() float64 {
	f := s.F()
	return f * (2 - f)
}

// Helmert is a 7-parameter transformation to WGS84 in the position vector
// convention (EPSG method 9606, PROJ +towgs84).
type Helmert struct {
	TX, TY, TZ float64 // metres
	RX, RY, RZ float64 // arc-seconds
	Scale      float64 // parts per million
}

// IsZero reports whether the transformation is the identity.
func (h Helmert) IsZero() bool { return h == Helmert{} }

// rotation returns the rotation angles in radians.
func (h Helmert) rotation() (rx, ry, rz float64) {
	const secToRad = math.Pi / (180 * 3600)
	return h.RX * secToRad, h.RY * secToRad, h.RZ * secToRad
}

// Datum is a spheroid with its relation to WGS84.
type Datum struct {
	Name     string
	Spheroid Spheroid
	ToWGS84  Helmert
}

var (
	Bessel1841 = Spheroid{Name: "Bessel 1841", SemiMajorAxis: 6377397.155, InverseFlattening: 299.1528128}
	GRS80      = Spheroid{Name: "GRS 1980", SemiMajorAxis: 6378137, InverseFlattening: 298.257222101}

	WGS84Spheroid = Spheroid{Name: "WGS 84", SemiMajorAxis: 6378137, InverseFlattening: 298.257223563}
)

var (
	// DHDN uses the BKG parameters of EPSG:1777.
	DHDN = Datum{
		Name:     "Deutsches Hauptdreiecksnetz",
		Spheroid: Bessel1841,
		ToWGS84:  Helmert{TX: 598.1, TY: 73.7, TZ: 418.2, RX: 0.202, RY: 0.045, RZ: -2.455, Scale: 6.7},
	}

	ETRS89 = Datum{Name: "European Terrestrial Reference System 1989", Spheroid: GRS80}
	WGS84  = Datum{Name: "World Geodetic System 1984", Spheroid: WGS84Spheroid}
)
