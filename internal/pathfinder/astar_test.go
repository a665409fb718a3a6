package pathfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
)

// gridGraph builds a 3x3 lattice of nodes with every edge 100m long: the
// horizontal edges along row 1 have a low safety score (0.3, higher
// weight), the center column 0.7, and every outer edge 0.9.
//
//	0---1---2
//	|   |   |
//	3---4---5
//	|   |   |
//	6---7---8
func gridGraph() *graph.Graph {
	g := &graph.Graph{}

	step := 0.0009 // roughly 100m at mid-latitudes
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			g.Nodes = append(g.Nodes, graph.Node{
				ID:    graph.NodeID(len(g.Nodes)),
				Point: geo.NewPoint(float64(row)*step, float64(col)*step),
				Degree: 0,
			})
		}
	}

	addEdge := func(a, b graph.NodeID, safety float64) {
		dist := 100.0
		e := graph.Edge{
			A:           a,
			B:           b,
			Distance:    dist,
			SafetyScore: safety,
			Weight:      dist * (1.0 + 1.0*(1-safety)),
		}
		id := graph.EdgeID(len(g.Edges))
		g.Edges = append(g.Edges, e)
		g.Adjacency = ensureLenForTest(g.Adjacency, int(a)+1)
		g.Adjacency = ensureLenForTest(g.Adjacency, int(b)+1)
		g.Adjacency[a] = append(g.Adjacency[a], graph.HalfEdge{Neighbor: b, Edge: id})
		g.Adjacency[b] = append(g.Adjacency[b], graph.HalfEdge{Neighbor: a, Edge: id})
		g.Nodes[a].Degree++
		g.Nodes[b].Degree++
	}

	idx := func(row, col int) graph.NodeID { return graph.NodeID(row*3 + col) }

	// Horizontal edges.
	addEdge(idx(0, 0), idx(0, 1), 0.9)
	addEdge(idx(0, 1), idx(0, 2), 0.9)
	addEdge(idx(1, 0), idx(1, 1), 0.3)
	addEdge(idx(1, 1), idx(1, 2), 0.3)
	addEdge(idx(2, 0), idx(2, 1), 0.9)
	addEdge(idx(2, 1), idx(2, 2), 0.9)

	// Vertical edges.
	addEdge(idx(0, 0), idx(1, 0), 0.9)
	addEdge(idx(1, 0), idx(2, 0), 0.9)
	addEdge(idx(0, 1), idx(1, 1), 0.7)
	addEdge(idx(1, 1), idx(2, 1), 0.7)
	addEdge(idx(0, 2), idx(1, 2), 0.9)
	addEdge(idx(1, 2), idx(2, 2), 0.9)

	return g
}

func ensureLenForTest(s [][]graph.HalfEdge, n int) [][]graph.HalfEdge {
	for len(s) < n {
		s = append(s, nil)
	}
	return s
}

func TestAstarFindsARoute(t *testing.T) {
	g := gridGraph()

	route, err := Astar(g, 0, 8, 1.0, 100000, identityWeight)
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID(0), route.Nodes[0])
	assert.Equal(t, graph.NodeID(8), route.Nodes[len(route.Nodes)-1])
	assert.Greater(t, route.TotalDistance, 0.0)
	assert.Len(t, route.Edges, len(route.Nodes)-1)
}

func TestAstarPrefersSaferPathOverShortestWhenWeighted(t *testing.T) {
	g := gridGraph()

	route, err := Astar(g, 0, 8, 1.0, 100000, identityWeight)
	require.NoError(t, err)

	// All direct paths from 0 to 8 are 4 edges of 100m = 400m regardless
	// of route; the search must prefer the lower-weight (safer) one,
	// which avoids the unsafe row-1 horizontal edges.
	usedUnsafeHorizontal := false
	for _, eid := range route.Edges {
		e := g.Edges[eid]
		if e.SafetyScore == 0.3 {
			usedUnsafeHorizontal = true
		}
	}
	assert.False(t, usedUnsafeHorizontal, "expected search to route around the unsafe row, got edges %v", route.Edges)
}

func TestAstarReturnsNoRouteFoundWhenUnreachable(t *testing.T) {
	g := &graph.Graph{
		Nodes:     []graph.Node{{ID: 0}, {ID: 1}},
		Adjacency: [][]graph.HalfEdge{{}, {}},
	}

	_, err := Astar(g, 0, 1, 1.0, 100000, identityWeight)
	assert.Error(t, err)
}

func TestAstarRespectsMaxDistTermination(t *testing.T) {
	g := gridGraph()

	_, err := Astar(g, 0, 8, 1.0, 50, identityWeight)
	assert.Error(t, err, "a maxDist below the shortest possible path should fail to find a route")
}

func TestKDiverseReturnsDistinctRoutesUpToK(t *testing.T) {
	g := gridGraph()
	cfg := config.Default()
	cfg.KRoutes = 3
	cfg.Gamma = 1.5

	routes, err := KDiverse(g, 0, 8, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, routes)
	assert.LessOrEqual(t, len(routes), cfg.KRoutes)

	seen := make(map[string]bool)
	for _, r := range routes {
		key := ""
		for _, e := range r.Edges {
			key += string(rune(e)) + ","
		}
		assert.False(t, seen[key], "KDiverse returned the same edge sequence twice")
		seen[key] = true
	}
}

func TestKDiverseFirstRouteIsTheUnpenalizedShortest(t *testing.T) {
	g := gridGraph()
	cfg := config.Default()
	cfg.KRoutes = 1

	routes, err := KDiverse(g, 0, 8, cfg)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	direct, err := Astar(g, 0, 8, cfg.Alpha, 100000, identityWeight)
	require.NoError(t, err)
	assert.Equal(t, direct.TotalWeight, routes[0].TotalWeight)
}

func TestJaccardDisjointSetsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, jaccard([]graph.EdgeID{1, 2}, []graph.EdgeID{3, 4}))
}

func TestJaccardIdenticalSetsIsOne(t *testing.T) {
	assert.Equal(t, 1.0, jaccard([]graph.EdgeID{1, 2, 3}, []graph.EdgeID{1, 2, 3}))
}

// TestAstarHeuristicIsAdmissible checks that alpha*FastDistance to the goal
// never overestimates the true remaining edge-weight cost from any node on
// the found route, which is what guarantees A* returns an optimal path.
func TestAstarHeuristicIsAdmissible(t *testing.T) {
	g := gridGraph()

	route, err := Astar(g, 0, 8, 1.0, 100000, identityWeight)
	require.NoError(t, err)

	remaining := route.TotalWeight
	for i, n := range route.Nodes {
		h := geomath.FastDistance(g.Nodes[n].Point, g.Nodes[8].Point)
		assert.LessOrEqual(t, h, remaining+1e-6, "heuristic at node %d overestimates remaining cost", n)
		if i < len(route.Edges) {
			remaining -= g.Edges[route.Edges[i]].Weight
		}
	}
}
