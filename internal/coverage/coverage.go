// Package coverage implements the two rasterized scalar fields queried by
// GraphBuilder when scoring edges: lighting intensity and crime density
// (spec §3 "CoverageMap", §4.3 step 3).
package coverage

import (
	"math"

	"github.com/saferoutes/saferoutes-core/internal/geo"
)

const metersPerDegLat = 111320.0

// Map is a dense f32 raster over a bounding box at a fixed cell size.
type Map struct {
	Bounds geo.BoundingBox
	CellM  float64
	Rows   int
	Cols   int
	Values []float32
}

// NewMap allocates a zeroed raster covering bounds at the given cell size
// in meters. For a 3km x 3km bbox at 25m cells this is ~14,400 cells
// (spec §5 "Memory").
func NewMap(bounds geo.BoundingBox, cellM float64) *Map {
	meanLat := (bounds.South + bounds.North) / 2
	heightM := (bounds.North - bounds.South) * metersPerDegLat
	widthM := (bounds.East - bounds.West) * metersPerDegLat * math.Cos(meanLat*math.Pi/180)

	rows := int(math.Ceil(heightM/cellM)) + 1
	cols := int(math.Ceil(widthM/cellM)) + 1
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	return &Map{
		Bounds: bounds,
		CellM:  cellM,
		Rows:   rows,
		Cols:   cols,
		Values: make([]float32, rows*cols),
	}
}

// cellOf returns the (row, col) of the cell containing p, clamped to the
// raster's bounds.
func (m *Map) cellOf(p geo.Point) (row, col int) {
	meanLat := (m.Bounds.South + m.Bounds.North) / 2
	yM := (p.Lat() - m.Bounds.South) * metersPerDegLat
	xM := (p.Lng() - m.Bounds.West) * metersPerDegLat * math.Cos(meanLat*math.Pi/180)

	row = int(yM / m.CellM)
	col = int(xM / m.CellM)
	if row < 0 {
		row = 0
	}
	if row >= m.Rows {
		row = m.Rows - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= m.Cols {
		col = m.Cols - 1
	}
	return row, col
}

func (m *Map) index(row, col int) int { return row*m.Cols + col }

// At returns the nearest-cell value for p.
func (m *Map) At(p geo.Point) float32 {
	row, col := m.cellOf(p)
	return m.Values[m.index(row, col)]
}

// StampInverseDistance adds an inverse-distance-squared kernel centered at
// p to every cell within radiusM, contribution 1/(1+d/d0)^2 (spec §4.3
// step 3, lighting). Used once per light source at graph-build time.
func (m *Map) StampInverseDistance(p geo.Point, radiusM, d0M float64) {
	m.forEachCellInRadius(p, radiusM, func(row, col int, d float64) {
		contribution := 1.0 / math.Pow(1+d/d0M, 2)
		m.Values[m.index(row, col)] += float32(contribution)
	})
}

// StampFalling adds a severity-weighted, linearly-falling-to-zero kernel
// centered at p to every cell within radiusM (spec §4.3 step 3, crime: "a
// Gaussian-like kernel ... cells within a fixed radius get falling
// weight"). Used once per crime incident.
func (m *Map) StampFalling(p geo.Point, radiusM, severity float64) {
	m.forEachCellInRadius(p, radiusM, func(row, col int, d float64) {
		falloff := 1.0 - d/radiusM
		if falloff < 0 {
			falloff = 0
		}
		m.Values[m.index(row, col)] += float32(severity * falloff)
	})
}

// forEachCellInRadius iterates every cell whose center lies within radiusM
// of p, invoking fn with the cell's true distance from p.
func (m *Map) forEachCellInRadius(p geo.Point, radiusM float64, fn func(row, col int, distM float64)) {
	centerRow, centerCol := m.cellOf(p)
	cellRadius := int(math.Ceil(radiusM/m.CellM)) + 1

	meanLat := (m.Bounds.South + m.Bounds.North) / 2
	cosLat := math.Cos(meanLat * math.Pi / 180)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= m.Rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= m.Cols {
				continue
			}

			cellLat := m.Bounds.South + (float64(row)+0.5)*m.CellM/metersPerDegLat
			cellLng := m.Bounds.West + (float64(col)+0.5)*m.CellM/(metersPerDegLat*cosLat)
			cellPoint := geo.NewPoint(cellLat, cellLng)

			dLat := (cellPoint.Lat() - p.Lat()) * metersPerDegLat
			dLng := (cellPoint.Lng() - p.Lng()) * metersPerDegLat * cosLat
			d := math.Sqrt(dLat*dLat + dLng*dLng)

			if d <= radiusM {
				fn(row, col, d)
			}
		}
	}
}

// Maps bundles the two coverage rasters built once per request.
type Maps struct {
	Lighting *Map
	Crime    *Map
}

// NewMaps allocates both rasters over the same bounding box and cell size.
func NewMaps(bounds geo.BoundingBox, cellM float64) *Maps {
	return &Maps{
		Lighting: NewMap(bounds, cellM),
		Crime:    NewMap(bounds, cellM),
	}
}
