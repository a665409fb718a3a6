// Package graph builds the safety-weighted walking graph from classified
// features and crime incidents (spec §4.3), and holds the arena-style
// Node/Edge representation referenced by dense integer ids rather than
// pointers (spec §9 "unbounded object identity").
package graph

import (
	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/spatialgrid"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// NodeID and EdgeID are dense indices into Graph.Nodes / Graph.Edges.
type NodeID int32
type EdgeID int32

// Node is an intersection or way vertex. Created during graph build;
// immutable for the request's lifetime.
type Node struct {
	ID     NodeID
	Point  geo.Point
	Degree int
}

// HalfEdge is one entry of a node's adjacency list: a neighbor and the
// edge id connecting to it.
type HalfEdge struct {
	Neighbor NodeID
	Edge     EdgeID
}

// Edge is an undirected connection between two nodes with physical and
// safety attributes (spec §3 "Edge").
type Edge struct {
	A, B NodeID

	Distance    float64
	Highway     tags.Highway
	RoadName    string
	IsDeadEnd   bool
	HasSidewalk bool
	Surface     tags.Surface

	// Six unit-interval factor scores.
	RoadTypeFactor float64
	LightFactor    float64
	CrimeFactor    float64
	CCTVFactor     float64
	PlaceFactor    float64
	TrafficFactor  float64

	SafetyScore float64

	NearbyCCTV    int
	NearbyTransit int

	// Weight is the cached search weight: distance * (alpha + beta*(1-safetyScore)).
	Weight float64
}

// Other returns the node at the far end of the edge from n.
func (e Edge) Other(n NodeID) NodeID {
	if e.A == n {
		return e.B
	}
	return e.A
}

// Graph is the per-request walking graph arena. Owned by the request
// scope; released on completion (spec §3 "Ownership").
type Graph struct {
	Nodes     []Node
	Edges     []Edge
	Adjacency [][]HalfEdge // indexed by NodeID
	Bounds    geo.BoundingBox

	// NodeGrid snaps arbitrary points to the nearest graph node (spec §4.3
	// step 7, §4.4 "Nearest-node snapping").
	NodeGrid *spatialgrid.Grid[NodeID]
}

// BuildNodeGrid indexes every node into a SpatialGrid keyed by its point,
// at the ~55m cell side used for endpoint snapping.
func (g *Graph) BuildNodeGrid(cellSizeDeg float64) {
	grid := spatialgrid.New(cellSizeDeg, func(id NodeID) geo.Point { return g.Nodes[id].Point })
	for i := range g.Nodes {
		grid.Insert(NodeID(i))
	}
	g.NodeGrid = grid
}

// NeighborsOf returns the adjacency list for node n.
func (g *Graph) NeighborsOf(n NodeID) []HalfEdge {
	return g.Adjacency[n]
}

// Midpoint returns the geometric midpoint of an edge's endpoints, the
// point at which per-edge factor scores are sampled (spec §4.3 step 4).
func (g *Graph) Midpoint(e Edge) geo.Point {
	a, b := g.Nodes[e.A].Point, g.Nodes[e.B].Point
	return geo.NewPoint((a.Lat()+b.Lat())/2, (a.Lng()+b.Lng())/2)
}

// Snap grows the node grid's search ring from startMeters up to maxMeters
// (callers pass config.SnapMaxRadiusM) looking for the nearest node with non-zero degree
// (spec §4.4 "Nearest-node snapping"). which is "origin" or "destination",
// used only to build the NoNearbyRoad error.
func (g *Graph) Snap(p geo.Point, startMeters, maxMeters float64, which string) (NodeID, error) {
	id, _, ok := g.NodeGrid.NearestWhere(p, startMeters, maxMeters, func(n NodeID) bool {
		return g.Nodes[n].Degree > 0
	})
	if !ok {
		return 0, apierr.NoNearbyRoadErr(which)
	}
	return id, nil
}
