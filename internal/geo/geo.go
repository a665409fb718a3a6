// Package geo defines the coordinate primitives shared by every stage of
// the routing pipeline. Points and bounding boxes are thin wrappers around
// paulmach/orb so the rest of the codebase never has to remember whether a
// given orb type stores longitude or latitude first.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	orb.Point
}

// NewPoint builds a Point from latitude/longitude in degrees.
func NewPoint(lat, lng float64) Point {
	return Point{orb.Point{lng, lat}}
}

// Lat returns the latitude in decimal degrees.
func (p Point) Lat() float64 { return p.Point[1] }

// Lng returns the longitude in decimal degrees.
func (p Point) Lng() float64 { return p.Point[0] }

// Finite reports whether both components are finite, non-NaN degrees
// within the valid WGS84 range.
func (p Point) Finite() bool {
	lat, lng := p.Lat(), p.Lng()
	if lat != lat || lng != lng { // NaN
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// BoundingBox is an axis-aligned WGS84 rectangle: south <= north, west <= east.
type BoundingBox struct {
	South, West, North, East float64
}

// Valid reports whether the box satisfies its ordering invariant and is
// non-degenerate (has positive area).
func (b BoundingBox) Valid() bool {
	return b.South < b.North && b.West < b.East
}

// Bound converts to orb.Bound for use with orb-based helpers.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// AreaKM2 returns an approximate area in square kilometers, accurate enough
// for the "estimated data-point count" used in RouteService validation.
func (b BoundingBox) AreaKM2() float64 {
	const metersPerDegLat = 111320.0
	meanLat := (b.South + b.North) / 2
	widthM := (b.East - b.West) * metersPerDegLat * math.Cos(meanLat*math.Pi/180)
	heightM := (b.North - b.South) * metersPerDegLat
	return (widthM * heightM) / 1e6
}
