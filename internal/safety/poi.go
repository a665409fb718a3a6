package safety

import (
	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

const (
	mainRoadCorridorM = 20.0
	narrowCorridorM   = 30.0
)

// POIRef is one point of interest surfaced in a route's corridor.
type POIRef struct {
	ID    int64
	Point geo.Point
	Label string // name, category, or empty
}

// POIs is the route-local point-of-interest collection (spec §6
// "routePOIs").
type POIs struct {
	CCTV     []POIRef
	Transit  []POIRef
	DeadEnds []POIRef
	Lights   []POIRef
	Places   []POIRef
	Crimes   []POIRef
}

// ComputePOIs samples every node on the route, widening the search
// corridor to 30m on narrow paths and narrowing it to 20m where the route
// runs along a main road, and collects nearby CCTV, transit stops, dead-end
// nodes, lights, places, and crimes (spec §4.5 "routePOIs").
func ComputePOIs(g *graph.Graph, route *pathfinder.Route, classified *features.Classified, crimes []crime.Incident) POIs {
	seenCCTV := make(map[int64]bool)
	seenTransit := make(map[int64]bool)
	seenDeadEnd := make(map[graph.NodeID]bool)
	seenLight := make(map[int64]bool)
	seenPlace := make(map[int64]bool)
	seenCrime := make(map[int]bool)

	var pois POIs

	for i, n := range route.Nodes {
		node := g.Nodes[n]
		corridor := corridorWidthAt(g, route, i)

		if node.Degree == 1 && !seenDeadEnd[n] {
			seenDeadEnd[n] = true
			pois.DeadEnds = append(pois.DeadEnds, POIRef{ID: int64(n), Point: node.Point})
		}

		for _, p := range classified.CCTV {
			if !seenCCTV[p.ID] && geomath.FastDistance(node.Point, p.Point) <= corridor {
				seenCCTV[p.ID] = true
				pois.CCTV = append(pois.CCTV, POIRef{ID: p.ID, Point: p.Point})
			}
		}
		for _, p := range classified.Transit {
			if !seenTransit[p.ID] && geomath.FastDistance(node.Point, p.Point) <= corridor {
				seenTransit[p.ID] = true
				pois.Transit = append(pois.Transit, POIRef{ID: p.ID, Point: p.Point, Label: p.View.Name})
			}
		}
		for _, p := range classified.Lights {
			if !seenLight[p.ID] && geomath.FastDistance(node.Point, p.Point) <= corridor {
				seenLight[p.ID] = true
				pois.Lights = append(pois.Lights, POIRef{ID: p.ID, Point: p.Point})
			}
		}
		for _, p := range classified.Places {
			if !seenPlace[p.ID] && geomath.FastDistance(node.Point, p.Point) <= corridor {
				seenPlace[p.ID] = true
				pois.Places = append(pois.Places, POIRef{ID: p.ID, Point: p.Point, Label: placeLabel(p.View)})
			}
		}
		for idx, c := range crimes {
			if !seenCrime[idx] && geomath.FastDistance(node.Point, c.Point()) <= corridor {
				seenCrime[idx] = true
				pois.Crimes = append(pois.Crimes, POIRef{Point: c.Point(), Label: c.Category})
			}
		}
	}

	return pois
}

// corridorWidthAt returns the search radius for the node at route.Nodes[i],
// narrowed to mainRoadCorridorM if either adjacent edge is a main road.
func corridorWidthAt(g *graph.Graph, route *pathfinder.Route, i int) float64 {
	width := narrowCorridorM

	check := func(edgeIdx int) {
		if edgeIdx < 0 || edgeIdx >= len(route.Edges) {
			return
		}
		if tags.IsMainRoad(g.Edges[route.Edges[edgeIdx]].Highway) {
			width = mainRoadCorridorM
		}
	}
	check(i - 1)
	check(i)

	return width
}

func placeLabel(v tags.View) string {
	switch {
	case v.Amenity != "":
		return v.Amenity
	case v.Shop != "":
		return v.Shop
	case v.Leisure != "":
		return v.Leisure
	default:
		return v.Tourism
	}
}
