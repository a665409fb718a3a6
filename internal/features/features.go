// Package features ingests the combined geographic-feature query described
// in spec §6 ("Upstream feature provider") and classifies the raw response
// into the five element sets GraphBuilder needs: roads, lights, cctv,
// places, and transit.
package features

import (
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// Element is one raw element from the upstream feature provider's JSON
// array response: {type, id, lat?, lon?, nodes?, tags?}.
type Element struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   *float64          `json:"lat,omitempty"`
	Lon   *float64          `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// PointFeature is a classified node-shaped element with its typed tag view.
type PointFeature struct {
	ID    int64
	Point geo.Point
	View  tags.View
}

// Way is a classified walkable road, still referencing node ids; geometry
// is resolved against NodesByID by the graph builder.
type Way struct {
	ID      int64
	NodeIDs []int64
	View    tags.View
}

// Classified is the five-element-set output GraphBuilder consumes, plus
// the full node id->point lookup needed to resolve way geometry.
type Classified struct {
	Ways      []Way
	NodesByID map[int64]geo.Point
	Lights    []PointFeature
	CCTV      []PointFeature
	Places    []PointFeature
	Transit   []PointFeature
}

// Classify partitions a raw element array into the five classified sets.
// This is the one place the raw {type, id, tags} shape is interpreted;
// everything downstream works off typed views (design note in spec §9).
func Classify(elements []Element) *Classified {
	c := &Classified{NodesByID: make(map[int64]geo.Point)}

	// First pass: index every node's coordinates, since ways reference
	// nodes by id and may appear before or after their constituent nodes.
	for _, el := range elements {
		if el.Type == "node" && el.Lat != nil && el.Lon != nil {
			c.NodesByID[el.ID] = geo.NewPoint(*el.Lat, *el.Lon)
		}
	}

	for _, el := range elements {
		view := tags.FromRaw(el.Tags)

		switch el.Type {
		case "way":
			if tags.IsWalkable(view.Highway) && len(el.Nodes) >= 2 {
				c.Ways = append(c.Ways, Way{ID: el.ID, NodeIDs: el.Nodes, View: view})
			}
			if view.Lit && len(el.Nodes) >= 2 {
				for _, nid := range []int64{el.Nodes[0], el.Nodes[len(el.Nodes)-1]} {
					if p, ok := c.NodesByID[nid]; ok {
						c.Lights = append(c.Lights, PointFeature{ID: nid, Point: p, View: view})
					}
				}
			}

		case "node":
			if el.Lat == nil || el.Lon == nil {
				continue
			}
			p := geo.NewPoint(*el.Lat, *el.Lon)
			pf := PointFeature{ID: el.ID, Point: p, View: view}

			if view.IsLightSource() {
				c.Lights = append(c.Lights, pf)
			}
			if view.Surveillance {
				c.CCTV = append(c.CCTV, pf)
			}
			if view.IsOpenVenue() {
				c.Places = append(c.Places, pf)
			}
			if view.IsTransitStop() {
				c.Transit = append(c.Transit, pf)
			}
		}
	}

	return c
}
