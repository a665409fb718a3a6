package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// twoEdgeRoute builds a three-node graph (A -- primary:100m --> B --
// footway:50m --> C) with distinct per-edge factor scores, and a route
// walking both edges, for exercising the length-weighting math by hand.
func twoEdgeRoute() (*graph.Graph, *pathfinder.Route) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: 0, Point: geo.NewPoint(0, 0), Degree: 1},
			{ID: 1, Point: geo.NewPoint(0, 0.001), Degree: 2},
			{ID: 2, Point: geo.NewPoint(0, 0.002), Degree: 1},
		},
		Edges: []graph.Edge{
			{
				A: 0, B: 1, Distance: 100, Highway: tags.HighwayPrimary, RoadName: "Main St",
				RoadTypeFactor: 0.8, LightFactor: 0.8, CrimeFactor: 0.8, CCTVFactor: 0.8, PlaceFactor: 0.8, TrafficFactor: 0.8,
				SafetyScore: 0.75,
				HasSidewalk: true, IsDeadEnd: true, NearbyCCTV: 2, NearbyTransit: 1,
			},
			{
				A: 1, B: 2, Distance: 50, Highway: tags.HighwayFootway, RoadName: "Park Path",
				RoadTypeFactor: 0.2, LightFactor: 0.2, CrimeFactor: 0.2, CCTVFactor: 0.2, PlaceFactor: 0.2, TrafficFactor: 0.2,
				SafetyScore: 0.3,
				Surface: tags.SurfaceDirt, IsDeadEnd: true, NearbyCCTV: 1,
			},
		},
	}
	route := &pathfinder.Route{
		Nodes:         []graph.NodeID{0, 1, 2},
		Edges:         []graph.EdgeID{0, 1},
		TotalDistance: 150,
	}
	return g, route
}

func TestComputeScoreIsLengthWeighted(t *testing.T) {
	g, route := twoEdgeRoute()
	score := Compute(g, route)

	// (100*0.8 + 50*0.2) / 150 = 0.6\bar{6} -> *100
	expectedBreakdown := 100 * (100*0.8 + 50*0.2) / 150
	assert.InDelta(t, expectedBreakdown, score.Breakdown.RoadType, 1e-9)
	assert.InDelta(t, expectedBreakdown, score.Breakdown.Light, 1e-9)

	// Overall tracks each edge's already weights/night-mode-aware
	// SafetyScore, not a re-average of the per-factor breakdown above, so
	// it must differ from expectedBreakdown given the fixture's distinct
	// SafetyScore values (0.75 / 0.3 vs the 0.8 / 0.2 factor values).
	expectedOverall := 100 * (100*0.75 + 50*0.3) / 150
	assert.InDelta(t, expectedOverall, score.Overall, 1e-9)
	assert.NotEqual(t, expectedBreakdown, score.Overall)

	label, color := LabelFor(score.Overall)
	assert.Equal(t, label, score.Label)
	assert.Equal(t, color, score.Color)
}

func TestComputeScoreBreakdownBoundsAndRoadTypeSumTo100(t *testing.T) {
	g, route := twoEdgeRoute()
	score := Compute(g, route)

	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 100.0)

	var sum float64
	for _, pct := range score.RoadTypes {
		assert.GreaterOrEqual(t, pct, 0.0)
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 1.0)
}

func TestComputeStatsAggregatesLengthWeightedPercentages(t *testing.T) {
	g, route := twoEdgeRoute()
	stats := ComputeStats(g, route)

	assert.Equal(t, 2, stats.DeadEnds)
	assert.InDelta(t, 100*100.0/150.0, stats.SidewalkPct, 1e-9)
	assert.InDelta(t, 100*50.0/150.0, stats.UnpavedPct, 1e-9)
	assert.Equal(t, 3, stats.CCTVCamerasNearby)
	assert.Equal(t, 1, stats.TransitStopsNearby)

	require.Len(t, stats.RoadNameChanges, 2)
	assert.Equal(t, "Main St", stats.RoadNameChanges[0].Name)
	assert.Equal(t, "Park Path", stats.RoadNameChanges[1].Name)
	assert.InDelta(t, 150.0, stats.RoadNameChanges[1].CumulativeMeters, 1e-9)
}

func TestComputeStatsCapsNearbyCountsAt50(t *testing.T) {
	g, route := twoEdgeRoute()
	g.Edges[0].NearbyCCTV = 40
	g.Edges[1].NearbyCCTV = 40

	stats := ComputeStats(g, route)
	assert.Equal(t, nearbyCountCap, stats.CCTVCamerasNearby)
}

func TestComputePOIsDedupesAndRespectsCorridorWidth(t *testing.T) {
	g, route := twoEdgeRoute()

	classified := &features.Classified{
		CCTV: []features.PointFeature{
			{ID: 1, Point: geo.NewPoint(0, 0.0001)},  // within corridor of node 0
			{ID: 1, Point: geo.NewPoint(0, 0.0001)},  // same camera listed twice, deduped
			{ID: 2, Point: geo.NewPoint(5, 5)},       // far away, excluded
		},
	}

	pois := ComputePOIs(g, route, classified, nil)
	require.Len(t, pois.CCTV, 1)
	assert.Equal(t, int64(1), pois.CCTV[0].ID)
}

func TestComputePOIsIncludesDeadEndNodes(t *testing.T) {
	g, route := twoEdgeRoute()
	pois := ComputePOIs(g, route, &features.Classified{}, nil)

	// Both endpoints (node 0 and node 2) have degree 1.
	assert.Len(t, pois.DeadEnds, 2)
}

func TestComputePOIsIncludesNearbyCrimes(t *testing.T) {
	g, route := twoEdgeRoute()
	crimes := []crime.Incident{
		{Lat: 0, Lng: 0.0001, Category: "theft"},
	}

	pois := ComputePOIs(g, route, &features.Classified{}, crimes)
	require.Len(t, pois.Crimes, 1)
	assert.Equal(t, "theft", pois.Crimes[0].Label)
}
