package graph

import (
	"math"

	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/coverage"
	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/spatialgrid"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// lightSaturationK / crimeSaturationK shape the saturating maps used to
// turn raw coverage-grid magnitudes into unit-interval factors (spec §4.3
// step 4: "1 - exp(-k*v)"); left as builder constants since the reference
// does not specify exact values.
const (
	lightSaturationK = 1.2
	crimeSaturationK = 0.6
)

// Build constructs the walking graph and coverage maps from classified
// upstream features and crime incidents (spec §4.3). Returns
// apierr.NoWalkingNetwork if the road set is empty or the bbox is
// degenerate.
func Build(
	classified *features.Classified,
	crimes []crime.Incident,
	bounds geo.BoundingBox,
	weights config.Weights,
	cfg config.Config,
) (*Graph, *coverage.Maps, error) {
	if !bounds.Valid() {
		return nil, nil, apierr.New(apierr.NoWalkingNetwork, "degenerate bounding box")
	}
	if len(classified.Ways) == 0 {
		return nil, nil, apierr.New(apierr.NoWalkingNetwork, "no walkable road elements in bounding box")
	}

	g := &Graph{Bounds: bounds}
	nodeIndex := make(map[int64]NodeID)

	getOrCreateNode := func(rawID int64) (NodeID, bool) {
		if id, ok := nodeIndex[rawID]; ok {
			return id, true
		}
		point, ok := classified.NodesByID[rawID]
		if !ok {
			return 0, false
		}
		id := NodeID(len(g.Nodes))
		g.Nodes = append(g.Nodes, Node{ID: id, Point: point})
		nodeIndex[rawID] = id
		return id, true
	}

	// 1. Node extraction + consecutive edges.
	for _, way := range classified.Ways {
		for i := 0; i+1 < len(way.NodeIDs); i++ {
			a, aok := getOrCreateNode(way.NodeIDs[i])
			b, bok := getOrCreateNode(way.NodeIDs[i+1])
			if !aok || !bok || a == b {
				continue
			}

			dist := geomath.FastDistance(g.Nodes[a].Point, g.Nodes[b].Point)
			edgeID := EdgeID(len(g.Edges))
			g.Edges = append(g.Edges, Edge{
				A:           a,
				B:           b,
				Distance:    dist,
				Highway:     way.View.Highway,
				RoadName:    way.View.Name,
				HasSidewalk: way.View.HasSidewalk,
				Surface:     way.View.Surface,
			})

			g.Adjacency = ensureLen(g.Adjacency, int(a)+1)
			g.Adjacency = ensureLen(g.Adjacency, int(b)+1)
			g.Adjacency[a] = append(g.Adjacency[a], HalfEdge{Neighbor: b, Edge: edgeID})
			g.Adjacency[b] = append(g.Adjacency[b], HalfEdge{Neighbor: a, Edge: edgeID})
		}
	}

	if len(g.Edges) == 0 {
		return nil, nil, apierr.New(apierr.NoWalkingNetwork, "road ways produced no traversable edges")
	}

	// 2. Degree & dead-ends.
	for i := range g.Nodes {
		g.Nodes[i].Degree = len(g.Adjacency[i])
	}
	for i := range g.Edges {
		e := &g.Edges[i]
		if g.Nodes[e.A].Degree == 1 || g.Nodes[e.B].Degree == 1 {
			e.IsDeadEnd = true
		}
	}

	// 3. Coverage maps.
	maps := coverage.NewMaps(bounds, cfg.CoverageCellM)
	for _, light := range classified.Lights {
		maps.Lighting.StampInverseDistance(light.Point, config.LightKernelRadiusM, config.LightKernelD0M)
	}
	for _, inc := range crimes {
		severity := config.SeverityFor(inc.Category)
		maps.Crime.StampFalling(inc.Point(), config.CrimeKernelRadiusM, severity)
	}

	// Secondary grids for nearby-feature counts.
	cctvGrid := spatialgrid.New(0.0005, func(p features.PointFeature) geo.Point { return p.Point })
	for _, p := range classified.CCTV {
		cctvGrid.Insert(p)
	}
	placeGrid := spatialgrid.New(0.0005, func(p features.PointFeature) geo.Point { return p.Point })
	for _, p := range classified.Places {
		placeGrid.Insert(p)
	}
	transitGrid := spatialgrid.New(0.0005, func(p features.PointFeature) geo.Point { return p.Point })
	for _, p := range classified.Transit {
		transitGrid.Insert(p)
	}

	// 4. Edge factor scores + composite safety score + search weight.
	for i := range g.Edges {
		e := &g.Edges[i]
		mid := g.Midpoint(*e)

		lightVal := maps.Lighting.At(mid)
		e.LightFactor = saturate(float64(lightVal), lightSaturationK)

		crimeVal := maps.Crime.At(mid)
		e.CrimeFactor = 1 - saturate(float64(crimeVal), crimeSaturationK)

		cctvCount := countWithin(cctvGrid, mid, config.CCTVRadiusM)
		e.NearbyCCTV = cctvCount
		e.CCTVFactor = clamp01(float64(cctvCount) / config.CCTVSaturationN)

		placeCount := countWithin(placeGrid, mid, config.PlaceRadiusM)
		e.PlaceFactor = clamp01(float64(placeCount) / config.PlaceSaturationN)

		transitCount := countWithin(transitGrid, mid, config.TransitRadiusM)
		e.NearbyTransit = transitCount
		transitSat := clamp01(float64(transitCount) / config.TransitSaturationN)

		mainRoadBonus := 0.3
		if tags.IsMainRoad(e.Highway) {
			mainRoadBonus = 1.0
		}
		e.TrafficFactor = clamp01(0.5*transitSat + 0.5*mainRoadBonus)

		e.RoadTypeFactor = roadTypeFactor(*e)

		e.SafetyScore = clamp01(
			weights.RoadType*e.RoadTypeFactor +
				weights.Light*e.LightFactor +
				weights.Crime*e.CrimeFactor +
				weights.CCTV*e.CCTVFactor +
				weights.Place*e.PlaceFactor +
				weights.Traffic*e.TrafficFactor,
		)

		e.Weight = e.Distance * (cfg.Alpha + cfg.Beta*(1-e.SafetyScore))
	}

	g.BuildNodeGrid(config.NodeGridCellDeg)

	return g, maps, nil
}

// roadTypeFactor computes the roadType factor (spec §4.3 step 4): a fixed
// scalar per highway class, adjusted down for dead-ends and unpaved
// surfaces, adjusted up when a sidewalk is present.
func roadTypeFactor(e Edge) float64 {
	base, ok := config.RoadTypeBase[e.Highway]
	if !ok {
		base = 0.5
	}

	if e.IsDeadEnd {
		base -= 0.10
	}
	if tags.IsUnpaved(e.Surface) {
		base -= 0.15
	}
	if e.HasSidewalk {
		base += 0.10
	}

	return clamp01(base)
}

// saturate maps a non-negative raw value to [0,1] via 1 - exp(-k*v).
func saturate(v, k float64) float64 {
	if v < 0 {
		v = 0
	}
	return 1 - math.Exp(-k*v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func countWithin(g *spatialgrid.Grid[features.PointFeature], center geo.Point, radiusM float64) int {
	count := 0
	for _, p := range g.QueryRadius(center, radiusM) {
		if geomath.FastDistance(center, p.Point) <= radiusM {
			count++
		}
	}
	return count
}

func ensureLen(s [][]HalfEdge, n int) [][]HalfEdge {
	for len(s) < n {
		s = append(s, nil)
	}
	return s
}
