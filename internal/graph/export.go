package graph

import geojson "github.com/paulmach/go.geojson"

// ExportGeoJSON renders the graph's edges as a GeoJSON FeatureCollection
// for diagnostic dumps and for any downstream renderer that prefers
// GeoJSON over an encoded polyline. Not on the request hot path.
func (g *Graph) ExportGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, e := range g.Edges {
		a, b := g.Nodes[e.A].Point, g.Nodes[e.B].Point
		line := geojson.NewLineStringFeature([][]float64{
			{a.Lng(), a.Lat()},
			{b.Lng(), b.Lat()},
		})
		line.SetProperty("highway", string(e.Highway))
		line.SetProperty("safetyScore", e.SafetyScore)
		line.SetProperty("roadName", e.RoadName)
		fc.AddFeature(line)
	}

	return fc
}
