// Package config holds the tunable options recognized by the routing
// pipeline (spec §6's configuration table) and loads them from environment
// variables: every option is a plain value, taken from Default() and
// replaced by its environment variable when that is set and parses.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saferoutes/saferoutes-core/internal/tags"
)

// Weights are the six edge-factor weights, required to sum to 1.
type Weights struct {
	RoadType float64
	Light    float64
	Crime    float64
	CCTV     float64
	Place    float64
	Traffic  float64
}

// Sum returns the sum of all six weights, used to validate configuration.
func (w Weights) Sum() float64 {
	return w.RoadType + w.Light + w.Crime + w.CCTV + w.Place + w.Traffic
}

// DefaultWeights matches spec §4.3 step 5's default configuration.
var DefaultWeights = Weights{
	RoadType: 0.20,
	Light:    0.25,
	Crime:    0.25,
	CCTV:     0.10,
	Place:    0.10,
	Traffic:  0.10,
}

// NightWeights biases light and crime shares up, per the time-of-day note
// in spec §4.3 step 5 and §9's open question (kept configurable, not
// hard-coded).
var NightWeights = Weights{
	RoadType: 0.15,
	Light:    0.32,
	Crime:    0.30,
	CCTV:     0.10,
	Place:    0.05,
	Traffic:  0.08,
}

// Config is the full set of recognized options from spec §6.
type Config struct {
	MaxDistanceKM  float64
	RouteCacheTTL  time.Duration
	FeatureCacheTTL time.Duration
	CrimeCacheTTL  time.Duration
	Servers        []string
	CrimeServers   []string
	Weights        Weights
	Alpha          float64
	Beta           float64
	Gamma          float64
	KRoutes        int
	CoverageCellM  float64

	// FeatureFetchTimeout / CrimeFetchTimeout are the per-server upstream
	// timeouts from spec §5 ("Cancellation and timeouts").
	FeatureFetchTimeout time.Duration
	CrimeFetchTimeout   time.Duration

	// RouteCacheSoftCap / FeatureCacheSoftCap / CrimeCacheSoftCap bound the
	// size of each process-wide cache before opportunistic eviction kicks
	// in (spec §5 "Shared state & locking").
	RouteCacheSoftCap   int
	FeatureCacheSoftCap int
	CrimeCacheSoftCap   int

	// NightMode selects NightWeights over Weights when true. Left as an
	// explicit, caller-supplied flag rather than wall-clock-derived, since
	// the reference leaves time-of-day semantics unspecified (spec §9).
	NightMode bool
}

// Default returns the configuration with every spec §6 default applied.
func Default() Config {
	return Config{
		MaxDistanceKM:       10,
		RouteCacheTTL:       5 * time.Minute,
		FeatureCacheTTL:     30 * time.Minute,
		CrimeCacheTTL:       24 * time.Hour,
		Servers:             []string{"https://features.example.org"},
		CrimeServers:        []string{"https://crime.example.org"},
		Weights:             DefaultWeights,
		Alpha:               1.0,
		Beta:                3.0,
		Gamma:               0.6,
		KRoutes:             5,
		CoverageCellM:       25,
		FeatureFetchTimeout: 90 * time.Second,
		CrimeFetchTimeout:   8 * time.Second,
		RouteCacheSoftCap:   100,
		FeatureCacheSoftCap: 100,
		CrimeCacheSoftCap:   50,
	}
}

// Load builds a Config from Default(), overridden by any recognized
// environment variables that are set.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("MAX_DISTANCE_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MaxDistanceKM = f
		}
	}
	if v := os.Getenv("ROUTE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RouteCacheTTL = d
		}
	}
	if v := os.Getenv("FEATURE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FeatureCacheTTL = d
		}
	}
	if v := os.Getenv("CRIME_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CrimeCacheTTL = d
		}
	}
	if v := os.Getenv("SERVERS"); v != "" {
		cfg.Servers = splitNonEmpty(v, ",")
	}
	if v := os.Getenv("ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Alpha = f
		}
	}
	if v := os.Getenv("BETA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Beta = f
		}
	}
	if v := os.Getenv("GAMMA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gamma = f
		}
	}
	if v := os.Getenv("K_ROUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KRoutes = n
		}
	}
	if v := os.Getenv("COVERAGE_CELL_M"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.CoverageCellM = f
		}
	}
	if v := os.Getenv("WEIGHTS"); v != "" {
		if w, ok := parseWeights(v); ok {
			cfg.Weights = w
		}
	}

	return cfg
}

// parseWeights reads WEIGHTS as six comma-separated floats in the fixed
// order roadType,light,crime,cctv,place,traffic (matching Weights' field
// order), rejecting any value that doesn't sum to ~1.
func parseWeights(v string) (Weights, bool) {
	parts := splitNonEmpty(v, ",")
	if len(parts) != 6 {
		return Weights{}, false
	}

	vals := make([]float64, 6)
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Weights{}, false
		}
		vals[i] = f
	}

	w := Weights{
		RoadType: vals[0],
		Light:    vals[1],
		Crime:    vals[2],
		CCTV:     vals[3],
		Place:    vals[4],
		Traffic:  vals[5],
	}
	if sum := w.Sum(); sum < 0.99 || sum > 1.01 {
		return Weights{}, false
	}
	return w, true
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RoadTypeBase is the fixed scalar per highway class used by the roadType
// factor (spec §4.3 step 4): main roads score higher at night, footpaths
// lower, steps/service lower still.
var RoadTypeBase = map[tags.Highway]float64{
	tags.HighwayTrunk:        0.85,
	tags.HighwayPrimary:      0.82,
	tags.HighwaySecondary:    0.78,
	tags.HighwayTertiary:     0.72,
	tags.HighwayUnclassified: 0.60,
	tags.HighwayResidential:  0.65,
	tags.HighwayLivingStreet: 0.68,
	tags.HighwayPedestrian:   0.55,
	tags.HighwayFootway:      0.45,
	tags.HighwayCycleway:     0.50,
	tags.HighwayPath:         0.35,
	tags.HighwaySteps:        0.30,
	tags.HighwayService:      0.40,
	tags.HighwayTrack:        0.32,
}

// CrimeSeverity is the configured lookup table mapping incident category
// to a severity weight (violent > property > nuisance), per spec §4.3
// step 3 and the open question in §9: the exact table is not fully
// enumerated in the reference, so it is left as configuration here.
var CrimeSeverity = map[string]float64{
	"assault":        1.0,
	"robbery":        1.0,
	"sexual_offence": 1.0,
	"weapons":        0.9,
	"burglary":       0.6,
	"vehicle_crime":  0.5,
	"theft":          0.5,
	"criminal_damage": 0.4,
	"drugs":          0.3,
	"anti_social":    0.2,
	"other":          0.25,
}

// SeverityFor looks up a crime category, defaulting to "other" for
// unrecognized categories.
func SeverityFor(category string) float64 {
	if w, ok := CrimeSeverity[strings.ToLower(category)]; ok {
		return w
	}
	return CrimeSeverity["other"]
}

// Proximity radii (meters) for the cctv/place/traffic nearby-count factors,
// per spec §4.3 step 4.
const (
	CCTVRadiusM    = 40.0
	PlaceRadiusM   = 50.0
	TransitRadiusM = 60.0

	// Saturating-map normalization constants: "min(1, n/N*)".
	CCTVSaturationN    = 3.0
	PlaceSaturationN   = 5.0
	TransitSaturationN = 2.0

	// Lighting kernel parameters (spec §4.3 step 3).
	LightKernelRadiusM = 40.0
	LightKernelD0M     = 10.0

	// Crime kernel radius (meters) for Gaussian-like falloff.
	CrimeKernelRadiusM = 150.0

	// NodeGridCellDeg ~= 55m, used for endpoint snapping.
	NodeGridCellDeg = 0.0005

	// SnapMaxRadiusM is the hard cap for nearest-node search (spec §4.2).
	SnapMaxRadiusM    = 200.0
	SnapStartRadiusM  = 25.0
)
