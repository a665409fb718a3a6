// Package pathfinder implements A* shortest-safe-path search and
// k-diverse route enumeration over the safety-weighted walking graph
// (spec §4.4).
package pathfinder

import (
	"container/heap"

	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
)

// Route is one path returned by Astar or KDiverse: an ordered list of
// nodes and the edges connecting them, plus the accumulated physical
// distance (spec §3 "Route").
type Route struct {
	Nodes         []graph.NodeID
	Edges         []graph.EdgeID
	TotalDistance float64
	TotalWeight   float64
}

// weightFunc returns the search weight for an edge; used so k-diverse
// penalties can be applied without mutating the shared Graph (spec §4.4
// "Restore original weights between requests").
type weightFunc func(e graph.EdgeID, base float64) float64

func identityWeight(_ graph.EdgeID, base float64) float64 { return base }

// searchItem is one entry in the A* open set's priority queue.
type searchItem struct {
	node    graph.NodeID
	gWeight float64
	gDist   float64
	fScore  float64
	seq     int // insertion order, for deterministic FIFO tie-breaking
	index   int // heap bookkeeping
}

type openSet []*searchItem

func (s openSet) Len() int { return len(s) }
func (s openSet) Less(i, j int) bool {
	if s[i].fScore != s[j].fScore {
		return s[i].fScore < s[j].fScore
	}
	return s[i].seq < s[j].seq
}
func (s openSet) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
	s[i].index = i
	s[j].index = j
}
func (s *openSet) Push(x interface{}) {
	it := x.(*searchItem)
	it.index = len(*s)
	*s = append(*s, it)
}
func (s *openSet) Pop() interface{} {
	old := *s
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]
	return it
}

// Astar runs A* with a straight-line heuristic from source to target.
// weightOf overrides each edge's search weight (used for k-diverse
// penalties); pass identityWeight for an unmodified search. Terminates on
// popping target, or once every frontier path's accumulated distance
// exceeds maxDist (spec §4.4 "Termination").
func Astar(g *graph.Graph, source, target graph.NodeID, alpha, maxDist float64, weightOf weightFunc) (*Route, error) {
	if weightOf == nil {
		weightOf = identityWeight
	}

	targetPoint := g.Nodes[target].Point
	heuristic := func(n graph.NodeID) float64 {
		return alpha * geomath.FastDistance(g.Nodes[n].Point, targetPoint)
	}

	bestG := make(map[graph.NodeID]float64)
	cameFromNode := make(map[graph.NodeID]graph.NodeID)
	cameFromEdge := make(map[graph.NodeID]graph.EdgeID)
	hasCameFrom := make(map[graph.NodeID]bool)

	open := &openSet{}
	heap.Init(open)
	seq := 0

	bestG[source] = 0
	heap.Push(open, &searchItem{node: source, gWeight: 0, gDist: 0, fScore: heuristic(source), seq: seq})
	seq++

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchItem)

		if g, ok := bestG[current.node]; ok && current.gWeight > g {
			continue
		}

		if current.node == target {
			return reconstructRoute(g, target, cameFromNode, cameFromEdge, hasCameFrom, current.gDist, current.gWeight), nil
		}

		if current.gDist > maxDist {
			continue
		}

		for _, half := range g.NeighborsOf(current.node) {
			edge := g.Edges[half.Edge]
			w := weightOf(half.Edge, edge.Weight)

			tentativeG := current.gWeight + w
			if existing, ok := bestG[half.Neighbor]; ok && tentativeG >= existing {
				continue
			}

			tentativeDist := current.gDist + edge.Distance
			bestG[half.Neighbor] = tentativeG
			cameFromNode[half.Neighbor] = current.node
			cameFromEdge[half.Neighbor] = half.Edge
			hasCameFrom[half.Neighbor] = true

			heap.Push(open, &searchItem{
				node:    half.Neighbor,
				gWeight: tentativeG,
				gDist:   tentativeDist,
				fScore:  tentativeG + heuristic(half.Neighbor),
				seq:     seq,
			})
			seq++
		}
	}

	return nil, apierr.NoRouteFoundErr(len(g.Nodes), len(g.Edges))
}

func reconstructRoute(
	g *graph.Graph,
	target graph.NodeID,
	cameFromNode map[graph.NodeID]graph.NodeID,
	cameFromEdge map[graph.NodeID]graph.EdgeID,
	hasCameFrom map[graph.NodeID]bool,
	totalDist, totalWeight float64,
) *Route {
	var nodes []graph.NodeID
	var edges []graph.EdgeID

	n := target
	nodes = append(nodes, n)
	for hasCameFrom[n] {
		edges = append(edges, cameFromEdge[n])
		n = cameFromNode[n]
		nodes = append(nodes, n)
	}

	// Reverse both slices (built target-to-source).
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return &Route{Nodes: nodes, Edges: edges, TotalDistance: totalDist, TotalWeight: totalWeight}
}
