// Package crs provides the coordinate systems and transform chains that grid
// shifts are spliced into.
//
// A Transformation is an ordered Chain of Steps, each converting between two
// coordinate systems with a MathTransform. A Factory builds the default
// chain for a pair of coordinate systems:
//
//	geographic -> geographic   [geographic -> geocentric WGS84, geocentric WGS84 -> geographic]
//	projected  -> projected    [unproject, datum shift, project]
//	geographic -> projected    [datum shift, project]
//	projected  -> geographic   [unproject, datum shift]
//
// Datum shifts in the default chains go through WGS84 geocentric
// coordinates with a 7-parameter Helmert transformation, and projections are
// transverse Mercator.
//
// Geographic coordinates are (longitude, latitude, height) in degrees and
// metres. Projected coordinates are (easting, northing, height) in metres.
package crs

import "fmt"

// Kind classifies a coordinate system.
type Kind int

const (
	KindGeographic Kind = iota
	KindProjected
	KindGeocentric
)

func (k Kind) String() string {
	switch k {
	case KindGeographic:
		return "geographic"
	case KindProjected:
		return "projected"
	case KindGeocentric:
		return "geocentric"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// CoordinateSystem is implemented by *Geographic, *Projected and
// *Geocentric.
type CoordinateSystem interface {
	Name() string
	Kind() Kind
	Datum() Datum
}

// Point is a coordinate triple in the units of its coordinate system.
type Point struct {
	X, Y, Z float64
}

// Geographic is a longitude/latitude system on a datum.
type Geographic struct {
	name  string
	datum Datum
}

// NewGeographic creates a geographic coordinate system.
func NewGeographic(name string, datum Datum) *Geographic {
	return &Geographic{name: name, datum: datum}
}

func (g *Geographic) Name() string { return g.name }
func (g *Geographic) Kind() Kind { return KindGeographic }
func (g *Geographic) Datum() Datum { return g.datum }
func (g *Geographic) String() string { return g.name }

// TransverseMercator holds projection parameters. Angles are in degrees,
// offsets in metres.
type TransverseMercator struct {
	CentralMeridian  float64 // lon_0
	LatitudeOfOrigin float64 // lat_0
	ScaleFactor      float64 // k_0
	FalseEasting     float64 // x_0
	FalseNorthing    float64 // y_0
}

// Projected is a transverse Mercator system over a geographic base.
type Projected struct {
	name       string
	geographic *Geographic
	projection TransverseMercator
}

// NewProjected creates a projected coordinate system over base.
func NewProjected(name string, base *Geographic, tm TransverseMercator) *Projected {
	return &Projected{name: name, geographic: base, projection: tm}
}

func (p *Projected) Name() string { return p.name }
func (p *Projected) Kind() Kind { return KindProjected }
func (p *Projected) Datum() Datum { return p.geographic.datum }
func (p *Projected) String() string { return p.name }

// Geographic returns the base geographic system.
func (p *Projected) Geographic() *Geographic { return p.geographic }

// Projection returns the projection parameters.
func (p *Projected) Projection() TransverseMercator { return p.projection }

// Geocentric is an earth-centred cartesian system in metres.
type Geocentric struct {
	name  string
	datum Datum
}

// NewGeocentric creates a geocentric coordinate system.
func NewGeocentric(name string, datum Datum) *Geocentric {
	return &Geocentric{name: name, datum: datum}
}

func (g *Geocentric) Name() string { return g.name }
func (g *Geocentric) Kind() Kind { return KindGeocentric }
func (g *Geocentric) Datum() Datum { return g.datum }
func (g *Geocentric) String() string { return g.name }

// Predefined systems.
var (
	GeographicDHDN   = NewGeographic("DHDN", DHDN)
	GeographicETRS89 = NewGeographic("ETRS89", ETRS89)
	GeographicWGS84  = NewGeographic("WGS 84", WGS84)
	GeocentricWGS84  = NewGeocentric("WGS 84 geocentric", WGS84)
)

// GaussKrueger returns the 3-degree Gauss-Krüger zone on DHDN
// (EPSG:31466 to 31469 for zones 2 to 5).
func GaussKrueger(zone int) *Projected {
	return NewProjected(fmt.Sprintf("DHDN / 3-degree Gauss-Kruger zone %d", zone), GeographicDHDN, TransverseMercator{
		CentralMeridian: float64(3 * zone),
		ScaleFactor:     1,
		FalseEasting:    float64(zone)*1e6 + 500000,
	})
}

// UTM returns the northern UTM zone on ETRS89 (EPSG:258zz).
func UTM(zone int) *Projected {
	return NewProjected(fmt.Sprintf("ETRS89 / UTM zone %dN", zone), GeographicETRS89, TransverseMercator{
		CentralMeridian: float64(6*zone - 183),
		ScaleFactor:     0.9996,
		FalseEasting:    500000,
	})
}
