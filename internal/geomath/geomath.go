// Package geomath provides the pure distance, bounding-box, and polyline
// codec functions used throughout the routing pipeline. Every function here
// is allocation-light and safe to call from hot loops (edge scoring,
// coverage stamping) except Haversine, which trades speed for accuracy and
// is reserved for call sites where error beyond ~5km matters.
package geomath

import (
	"fmt"
	"math"

	orbgeo "github.com/paulmach/orb/geo"
	polyline "github.com/twpayne/go-polyline"

	"github.com/saferoutes/saferoutes-core/internal/geo"
)

const metersPerDegLat = 111320.0

// Haversine returns the great-circle distance between a and b in meters.
// Used where accuracy beyond ~5km matters (e.g. the out-of-range check in
// RouteService); delegates to orb/geo, which implements the same formula.
func Haversine(a, b geo.Point) float64 {
	return orbgeo.Distance(a.Point, b.Point)
}

// FastDistance is an equirectangular approximation using cos(meanLat),
// accurate to within 0.1% under 5km. This is the hot-path distance function:
// every per-edge score and every spatial-grid radius query uses it.
func FastDistance(a, b geo.Point) float64 {
	meanLatRad := (a.Lat() + b.Lat()) / 2 * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLng := (b.Lng() - a.Lng()) * math.Pi / 180 * math.Cos(meanLatRad)

	const earthRadius = 6371000.0
	x := dLng * earthRadius
	y := dLat * earthRadius
	return math.Sqrt(x*x + y*y)
}

// BoundingBoxFromPoints returns the minimal bounding box covering points,
// expanded by bufferMeters on every side. Fails only on empty input.
func BoundingBoxFromPoints(points []geo.Point, bufferMeters float64) (geo.BoundingBox, error) {
	if len(points) == 0 {
		return geo.BoundingBox{}, fmt.Errorf("geomath: bboxFromPoints requires at least one point")
	}

	south, north := points[0].Lat(), points[0].Lat()
	west, east := points[0].Lng(), points[0].Lng()
	for _, p := range points[1:] {
		if p.Lat() < south {
			south = p.Lat()
		}
		if p.Lat() > north {
			north = p.Lat()
		}
		if p.Lng() < west {
			west = p.Lng()
		}
		if p.Lng() > east {
			east = p.Lng()
		}
	}

	meanLat := (south + north) / 2
	dLat := bufferMeters / metersPerDegLat
	dLng := bufferMeters / (metersPerDegLat * math.Cos(meanLat*math.Pi/180))

	return geo.BoundingBox{
		South: south - dLat,
		North: north + dLat,
		West:  west - dLng,
		East:  east + dLng,
	}, nil
}

// polylinePrecision is fixed at 1e5, the standard precision used by common
// mapping APIs' encoded polyline format.
const polylinePrecision = 1e5

// EncodePolyline encodes a sequence of points using the standard
// variable-length signed-integer delta encoding (5-bit chunks, continuation
// bit, XOR-negation for negatives).
func EncodePolyline(points []geo.Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		// go-polyline expects [lat, lng] ordered coordinate pairs.
		coords[i] = []float64{p.Lat(), p.Lng()}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline. Round-trip identity on
// integer-quantized (1e5) coordinates is a required property.
func DecodePolyline(encoded string) ([]geo.Point, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("geomath: decode polyline: %w", err)
	}

	points := make([]geo.Point, len(coords))
	for i, c := range coords {
		points[i] = geo.NewPoint(c[0], c[1])
	}
	return points, nil
}
