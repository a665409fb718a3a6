package pathfinder

import (
	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
)

const nearDuplicateJaccard = 0.9
const nearDuplicateDistanceTolerance = 0.05

// KDiverse enumerates up to cfg.KRoutes distinct safe routes between
// source and target by iteratively penalizing edges already used by a
// previously returned route (spec §4.4 "k-diverse route enumeration").
// It never mutates g's edge weights: penalties are applied only through
// the weightOf closure passed into Astar.
func KDiverse(g *graph.Graph, source, target graph.NodeID, cfg config.Config) ([]*Route, error) {
	straightDist := geomath.Haversine(g.Nodes[source].Point, g.Nodes[target].Point)
	maxDist := 2.5 * straightDist

	visitCount := make(map[graph.EdgeID]int)
	var routes []*Route

	for len(routes) < cfg.KRoutes {
		weightOf := func(e graph.EdgeID, base float64) float64 {
			if n := visitCount[e]; n > 0 {
				return base * (1 + cfg.Gamma*float64(n))
			}
			return base
		}

		route, err := Astar(g, source, target, cfg.Alpha, maxDist, weightOf)
		if err != nil {
			if len(routes) == 0 {
				return nil, err
			}
			break
		}

		if len(routes) > 0 {
			shortest := routes[0].TotalDistance
			if route.TotalDistance > 2.5*shortest {
				break
			}
			if isNearDuplicate(route, routes) {
				break
			}
		}

		routes = append(routes, route)
		for _, e := range route.Edges {
			visitCount[e]++
		}
	}

	return routes, nil
}

// isNearDuplicate reports whether candidate is within 5% of the distance
// of, and shares more than 90% Jaccard edge overlap with, any route
// already accepted (spec §4.4 "near-duplicate detection").
func isNearDuplicate(candidate *Route, accepted []*Route) bool {
	for _, r := range accepted {
		if jaccard(candidate.Edges, r.Edges) <= nearDuplicateJaccard {
			continue
		}
		delta := candidate.TotalDistance - r.TotalDistance
		if delta < 0 {
			delta = -delta
		}
		if delta/r.TotalDistance <= nearDuplicateDistanceTolerance {
			return true
		}
	}
	return false
}

func jaccard(a, b []graph.EdgeID) float64 {
	set := make(map[graph.EdgeID]struct{}, len(a))
	for _, e := range a {
		set[e] = struct{}{}
	}

	intersection := 0
	union := len(set)
	for _, e := range b {
		if _, ok := set[e]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
