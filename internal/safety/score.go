// Package safety attributes aggregate safety scores, road-type histograms,
// and route statistics onto a path returned by the pathfinder, and collects
// the route-local points of interest surfaced in the response (spec §4.5).
package safety

import (
	"sort"

	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// Breakdown is the per-factor length-weighted mean, each on a 0-100 scale.
type Breakdown struct {
	RoadType   float64
	Light      float64
	Crime      float64
	CCTV       float64
	OpenPlaces float64
	Traffic    float64
}

// Score is the per-route aggregate safety result (spec §4.5, §6 "safety").
type Score struct {
	Overall       float64 // 0-100
	Label         string
	Color         string
	Breakdown     Breakdown
	RoadTypes     map[tags.Highway]float64 // percentages summing to ~100
	MainRoadRatio float64
}

// Compute builds the aggregate Score for route, walking its edges in
// stored order so floating-point summation is deterministic (spec §4.4
// "Determinism").
func Compute(g *graph.Graph, route *pathfinder.Route) Score {
	var totalLen, roadTypeSum, lightSum, crimeSum, cctvSum, placeSum, trafficSum, scoreSum, mainRoadLen float64
	lengthByHighway := make(map[tags.Highway]float64)

	for _, eid := range route.Edges {
		e := g.Edges[eid]
		l := e.Distance
		totalLen += l

		roadTypeSum += l * e.RoadTypeFactor
		lightSum += l * e.LightFactor
		crimeSum += l * e.CrimeFactor
		cctvSum += l * e.CCTVFactor
		placeSum += l * e.PlaceFactor
		trafficSum += l * e.TrafficFactor
		scoreSum += l * e.SafetyScore

		lengthByHighway[e.Highway] += l
		if tags.IsMainRoad(e.Highway) {
			mainRoadLen += l
		}
	}

	if totalLen == 0 {
		return Score{RoadTypes: map[tags.Highway]float64{}}
	}

	breakdown := Breakdown{
		RoadType:   100 * roadTypeSum / totalLen,
		Light:      100 * lightSum / totalLen,
		Crime:      100 * crimeSum / totalLen,
		CCTV:       100 * cctvSum / totalLen,
		OpenPlaces: 100 * placeSum / totalLen,
		Traffic:    100 * trafficSum / totalLen,
	}

	// overall is the length-weighted mean of each edge's already
	// weights/night-mode-aware SafetyScore (spec §4.5), not a re-average of
	// the breakdown above — the breakdown is purely diagnostic per factor.
	overall := 100 * scoreSum / totalLen
	label, color := LabelFor(overall)

	return Score{
		Overall:       overall,
		Label:         label,
		Color:         color,
		Breakdown:     breakdown,
		RoadTypes:     roadTypePercentages(lengthByHighway, totalLen),
		MainRoadRatio: mainRoadLen / totalLen,
	}
}

// roadTypePercentages converts length-weighted totals to integer percentages
// summing to exactly 100 (spec §4.5 "renormalized to sum to 100"), by
// rounding down everywhere and handing leftover points to the largest
// remainders first.
func roadTypePercentages(lengthByHighway map[tags.Highway]float64, totalLen float64) map[tags.Highway]float64 {
	type share struct {
		highway   tags.Highway
		floor     int
		remainder float64
	}

	shares := make([]share, 0, len(lengthByHighway))
	sumFloors := 0
	for hw, l := range lengthByHighway {
		raw := 100 * l / totalLen
		f := int(raw)
		shares = append(shares, share{highway: hw, floor: f, remainder: raw - float64(f)})
		sumFloors += f
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].highway < shares[j].highway
	})

	leftover := 100 - sumFloors
	result := make(map[tags.Highway]float64, len(shares))
	for i, s := range shares {
		v := s.floor
		if i < leftover {
			v++
		}
		result[s.highway] = float64(v)
	}
	return result
}
