package geomath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoutes/saferoutes-core/internal/geo"
)

func TestPolylineRoundTripsWithinQuantizationError(t *testing.T) {
	points := []geo.Point{
		geo.NewPoint(50.37550, -4.14270),
		geo.NewPoint(50.37601, -4.14198),
		geo.NewPoint(50.37622, -4.14050),
	}

	encoded := EncodePolyline(points)
	require.NotEmpty(t, encoded)

	decoded, err := DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(points))

	for i, p := range points {
		assert.InDelta(t, p.Lat(), decoded[i].Lat(), 1e-5)
		assert.InDelta(t, p.Lng(), decoded[i].Lng(), 1e-5)
	}
}

func TestDecodePolylineRejectsGarbage(t *testing.T) {
	_, err := DecodePolyline(string([]byte{0xff, 0xff, 0xff}))
	assert.Error(t, err)
}

func TestFastDistanceIsMonotonicInSeparation(t *testing.T) {
	origin := geo.NewPoint(50.0, -4.0)
	near := geo.NewPoint(50.001, -4.0)
	far := geo.NewPoint(50.01, -4.0)

	dNear := FastDistance(origin, near)
	dFar := FastDistance(origin, far)

	assert.Greater(t, dFar, dNear)
	assert.InDelta(t, 0, FastDistance(origin, origin), 1e-9)
}

func TestFastDistanceApproximatesHaversineUnderFiveKm(t *testing.T) {
	a := geo.NewPoint(50.3755, -4.1427)
	b := geo.NewPoint(50.3800, -4.1300)

	fast := FastDistance(a, b)
	precise := Haversine(a, b)

	assert.Less(t, math.Abs(fast-precise)/precise, 0.01)
}

func TestBoundingBoxFromPointsCoversAllPointsAndBuffer(t *testing.T) {
	points := []geo.Point{
		geo.NewPoint(50.0, -4.0),
		geo.NewPoint(50.01, -3.99),
	}

	bbox, err := BoundingBoxFromPoints(points, 100)
	require.NoError(t, err)

	assert.Less(t, bbox.South, 50.0)
	assert.Greater(t, bbox.North, 50.01)
	assert.Less(t, bbox.West, -4.0)
	assert.Greater(t, bbox.East, -3.99)
}

func TestBoundingBoxFromPointsRejectsEmptyInput(t *testing.T) {
	_, err := BoundingBoxFromPoints(nil, 100)
	assert.Error(t, err)
}
