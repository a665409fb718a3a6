package routeresponse

import (
	"fmt"
	"time"

	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/safety"
)

// walkingSpeedMps is the fixed pedestrian speed used for duration
// reporting (spec §6 "Walking speed ... is 1.35 m/s").
const walkingSpeedMps = 1.35

// ScoredRoute bundles one pathfinder route with its computed safety score,
// statistics, and POIs — everything Build needs to render one response
// route entry.
type ScoredRoute struct {
	Route *pathfinder.Route
	Score safety.Score
	Stats safety.Stats
	POIs  safety.POIs
}

// Build assembles the final Response from the scored routes produced by
// the pipeline, keeping them in the order given and marking the one with
// the highest overall safety score as safest (the first such route on a
// tie).
func Build(g *graph.Graph, routes []ScoredRoute, straightLineKm, maxDistanceKm float64, timing map[string]time.Duration, computeTime time.Duration) Response {
	dtoRoutes := make([]Route, len(routes))

	bestIdx := safestIndex(routes)
	for i, sr := range routes {
		dtoRoutes[i] = buildRoute(g, sr, i, i == bestIdx)
	}

	timingMs := make(map[string]int64, len(timing))
	for k, d := range timing {
		timingMs[k] = d.Milliseconds()
	}

	dataQuality := "good"
	if len(routes) == 0 {
		dataQuality = "sparse"
	}

	return Response{
		Status: "OK",
		Routes: dtoRoutes,
		Meta: Meta{
			StraightLineDistanceKm: straightLineKm,
			MaxDistanceKm:          maxDistanceKm,
			RouteCount:             len(routes),
			DataQuality:            dataQuality,
			Timing:                 timingMs,
			ComputeTimeMs:          computeTime.Milliseconds(),
		},
	}
}

// safestIndex picks the route with the highest overall safety score.
func safestIndex(routes []ScoredRoute) int {
	best := -1
	for i, r := range routes {
		if best == -1 || r.Score.Overall > routes[best].Score.Overall {
			best = i
		}
	}
	return best
}

func buildRoute(g *graph.Graph, sr ScoredRoute, index int, isSafest bool) Route {
	route := sr.Route
	points := make([]LatLng, len(route.Nodes))
	for i, n := range route.Nodes {
		p := g.Nodes[n].Point
		points[i] = LatLng{Lat: p.Lat(), Lng: p.Lng()}
	}

	segments := make([]Segment, len(route.Edges))
	for i, eid := range route.Edges {
		e := g.Edges[eid]
		a, b := g.Nodes[e.A].Point, g.Nodes[e.B].Point
		// Orient the segment along the direction of travel: edges are
		// undirected, but the route walks a specific node sequence.
		start, end := LatLng{Lat: a.Lat(), Lng: a.Lng()}, LatLng{Lat: b.Lat(), Lng: b.Lng()}
		if route.Nodes[i] != e.A {
			start, end = end, start
		}

		segments[i] = Segment{
			Start:        start,
			End:          end,
			SafetyScore:  e.SafetyScore,
			Color:        safety.SegmentColor(e.SafetyScore),
			Highway:      string(e.Highway),
			RoadName:     e.RoadName,
			IsDeadEnd:    e.IsDeadEnd,
			HasSidewalk:  e.HasSidewalk,
			SurfaceType:  string(e.Surface),
			LightScore:   e.LightFactor,
			CrimeScore:   e.CrimeFactor,
			CCTVScore:    e.CCTVFactor,
			PlaceScore:   e.PlaceFactor,
			TrafficScore: e.TrafficFactor,
			Distance:     e.Distance,
		}
	}

	polyline := encodeRoutePolyline(g, route)

	leg := Leg{
		Distance:      Measurement{Text: formatMeters(route.TotalDistance), Value: route.TotalDistance},
		Duration:      Measurement{Text: formatDuration(route.TotalDistance), Value: route.TotalDistance / walkingSpeedMps},
		StartLocation: points[0],
		EndLocation:   points[len(points)-1],
		Steps:         []any{},
	}

	roadTypesOut := make(map[string]float64, len(sr.Score.RoadTypes))
	for hw, pct := range sr.Score.RoadTypes {
		roadTypesOut[string(hw)] = pct
	}

	nameChanges := make([]RoadNameChange, len(sr.Stats.RoadNameChanges))
	for i, c := range sr.Stats.RoadNameChanges {
		nameChanges[i] = RoadNameChange{SegmentIndex: c.SegmentIndex, Name: c.Name, CumulativeMeters: c.CumulativeMeters}
	}

	return Route{
		RouteIndex:       index,
		IsSafest:         isSafest,
		OverviewPolyline: OverviewPolyline{Points: polyline},
		Legs:             []Leg{leg},
		Summary:          summaryFor(segments),
		Safety: Safety{
			Score: sr.Score.Overall,
			Label: sr.Score.Label,
			Color: sr.Score.Color,
			Breakdown: Breakdown{
				RoadType:   sr.Score.Breakdown.RoadType,
				Lighting:   sr.Score.Breakdown.Light,
				Crime:      sr.Score.Breakdown.Crime,
				CCTV:       sr.Score.Breakdown.CCTV,
				OpenPlaces: sr.Score.Breakdown.OpenPlaces,
				Traffic:    sr.Score.Breakdown.Traffic,
			},
			RoadTypes:     roadTypesOut,
			MainRoadRatio: sr.Score.MainRoadRatio,
		},
		Segments: segments,
		RouteStats: RouteStats{
			DeadEnds:           sr.Stats.DeadEnds,
			SidewalkPct:        sr.Stats.SidewalkPct,
			UnpavedPct:         sr.Stats.UnpavedPct,
			TransitStopsNearby: sr.Stats.TransitStopsNearby,
			CCTVCamerasNearby:  sr.Stats.CCTVCamerasNearby,
			RoadNameChanges:    nameChanges,
		},
		RoutePOIs: RoutePOIs{
			CCTV:     poiRefs(sr.POIs.CCTV),
			Transit:  poiRefs(sr.POIs.Transit),
			DeadEnds: poiRefs(sr.POIs.DeadEnds),
			Lights:   poiRefs(sr.POIs.Lights),
			Places:   poiRefs(sr.POIs.Places),
			Crimes:   poiRefs(sr.POIs.Crimes),
		},
	}
}

func encodeRoutePolyline(g *graph.Graph, route *pathfinder.Route) string {
	pts := make([]geo.Point, len(route.Nodes))
	for i, n := range route.Nodes {
		pts[i] = g.Nodes[n].Point
	}
	return geomath.EncodePolyline(pts)
}

func summaryFor(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}
	first, last := segments[0].RoadName, segments[len(segments)-1].RoadName
	if first == "" {
		first = string(segments[0].Highway)
	}
	if last == "" {
		last = string(segments[len(segments)-1].Highway)
	}
	if first == last {
		return first
	}
	return fmt.Sprintf("%s to %s", first, last)
}

func poiRefs(refs []safety.POIRef) []POI {
	out := make([]POI, len(refs))
	for i, r := range refs {
		out[i] = POI{ID: r.ID, Lat: r.Point.Lat(), Lng: r.Point.Lng(), Label: r.Label}
	}
	return out
}

func formatMeters(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.1f km", m/1000)
	}
	return fmt.Sprintf("%.0f m", m)
}

func formatDuration(distanceM float64) string {
	seconds := distanceM / walkingSpeedMps
	if seconds >= 60 {
		return fmt.Sprintf("%.0f min", seconds/60)
	}
	return fmt.Sprintf("%.0f sec", seconds)
}
