package safety

import (
	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

const nearbyCountCap = 50

// RoadNameChange marks a name transition along the route (spec §4.5
// "roadNameChanges").
type RoadNameChange struct {
	SegmentIndex     int
	Name             string
	CumulativeMeters float64
}

// Stats is the per-route statistics block (spec §6 "routeStats").
type Stats struct {
	DeadEnds           int
	SidewalkPct        float64
	UnpavedPct         float64
	TransitStopsNearby int
	CCTVCamerasNearby  int
	RoadNameChanges    []RoadNameChange
}

// ComputeStats walks route.Edges in order, accumulating length-weighted
// percentages and marking name transitions as they occur.
func ComputeStats(g *graph.Graph, route *pathfinder.Route) Stats {
	var totalLen, sidewalkLen, unpavedLen float64
	var cumulative float64
	var transit, cctv int
	var deadEnds int
	var changes []RoadNameChange
	var lastName string
	haveName := false

	for i, eid := range route.Edges {
		e := g.Edges[eid]
		totalLen += e.Distance
		cumulative += e.Distance

		if e.HasSidewalk {
			sidewalkLen += e.Distance
		}
		if tags.IsUnpaved(e.Surface) {
			unpavedLen += e.Distance
		}
		if e.IsDeadEnd {
			deadEnds++
		}

		transit += e.NearbyTransit
		cctv += e.NearbyCCTV

		if !haveName || e.RoadName != lastName {
			changes = append(changes, RoadNameChange{
				SegmentIndex:     i,
				Name:             e.RoadName,
				CumulativeMeters: cumulative,
			})
			lastName = e.RoadName
			haveName = true
		}
	}

	if transit > nearbyCountCap {
		transit = nearbyCountCap
	}
	if cctv > nearbyCountCap {
		cctv = nearbyCountCap
	}

	stats := Stats{
		DeadEnds:           deadEnds,
		TransitStopsNearby: transit,
		CCTVCamerasNearby:  cctv,
		RoadNameChanges:    changes,
	}
	if totalLen > 0 {
		stats.SidewalkPct = 100 * sidewalkLen / totalLen
		stats.UnpavedPct = 100 * unpavedLen / totalLen
	}
	return stats
}
