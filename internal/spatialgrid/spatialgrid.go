// Package spatialgrid implements the uniform-cell 2D index used for
// near-O(1) radius queries over nodes and raw features. One grid instance
// serves one item type; the cell side is in degrees for geographic grids
// (node snapping, feature proximity) and in meters for coverage rasters
// built directly on top of plain slices instead (see internal/coverage).
package spatialgrid

import (
	"math"

	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
)

const metersPerDegLat = 111320.0

// cellKey identifies a bucket by its (row, col) indices.
type cellKey struct{ row, col int }

// Grid is a uniform-cell spatial index over items located by a Locate
// function. T is typically a node index or a feature id; the grid stores
// items by value so callers should keep T small (ints, small structs).
type Grid[T any] struct {
	cellSize float64 // degrees
	cells    map[cellKey][]T
	locate   func(T) geo.Point
}

// New builds an empty grid with the given cell side (degrees) and a
// function extracting each item's location.
func New[T any](cellSizeDeg float64, locate func(T) geo.Point) *Grid[T] {
	return &Grid[T]{
		cellSize: cellSizeDeg,
		cells:    make(map[cellKey][]T),
		locate:   locate,
	}
}

func (g *Grid[T]) keyFor(p geo.Point) cellKey {
	return cellKey{
		row: int(math.Floor(p.Lat() / g.cellSize)),
		col: int(math.Floor(p.Lng() / g.cellSize)),
	}
}

// Insert adds item to the bucket computed from its location.
func (g *Grid[T]) Insert(item T) {
	k := g.keyFor(g.locate(item))
	g.cells[k] = append(g.cells[k], item)
}

// QueryRadius returns the union of every item in the cell covering center
// and its surrounding ring of ceil(radiusMeters/cellMeters)+1 cells, where
// cellMeters is the cell's north-south extent. Callers MUST refine results
// by true distance (geomath.FastDistance): results are not all within
// radiusMeters. The same ring width is used east-west, where a cell spans
// fewer meters (by cos(latitude)), so away from the equator a large radius
// can reach past the ring in longitude and items there are not returned.
func (g *Grid[T]) QueryRadius(center geo.Point, radiusMeters float64) []T {
	cellMeters := g.cellSize * metersPerDegLat
	ringCells := int(math.Ceil(radiusMeters/cellMeters)) + 1

	ck := g.keyFor(center)
	var out []T
	for dr := -ringCells; dr <= ringCells; dr++ {
		for dc := -ringCells; dc <= ringCells; dc++ {
			if items, ok := g.cells[cellKey{ck.row + dr, ck.col + dc}]; ok {
				out = append(out, items...)
			}
		}
	}
	return out
}

// Len returns the number of occupied cells, useful for tests and metrics.
func (g *Grid[T]) Len() int { return len(g.cells) }

// NearestWhere grows the search ring geometrically (doubling the radius
// each attempt, starting at startMeters) until it finds the closest item
// satisfying accept, or exceeds maxMeters. This is the shared "expand the
// ring until a candidate is found or a hard cap is reached" search used for
// endpoint snapping (§4.2/§4.4).
func (g *Grid[T]) NearestWhere(center geo.Point, startMeters, maxMeters float64, accept func(T) bool) (best T, dist float64, found bool) {
	radius := startMeters
	for {
		bestDist := math.Inf(1)
		var bestItem T
		haveItem := false

		for _, item := range g.QueryRadius(center, radius) {
			if !accept(item) {
				continue
			}
			d := geomath.FastDistance(center, g.locate(item))
			if d <= radius && d < bestDist {
				bestDist = d
				bestItem = item
				haveItem = true
			}
		}

		if haveItem {
			return bestItem, bestDist, true
		}
		if radius >= maxMeters {
			var zero T
			return zero, 0, false
		}
		radius = math.Min(radius*2, maxMeters)
	}
}
