// Package routeservice orchestrates one /api/safe-routes request end to
// end (spec §4.6): validation, caching/coalescing, concurrent upstream
// fetch, graph build, pathfinding, scoring, and response assembly.
package routeservice

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
	"go.uber.org/zap"

	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/cachekit"
	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/geomath"
	"github.com/saferoutes/saferoutes-core/internal/graph"
	"github.com/saferoutes/saferoutes-core/internal/pathfinder"
	"github.com/saferoutes/saferoutes-core/internal/routeresponse"
	"github.com/saferoutes/saferoutes-core/internal/safety"
)

// Service wires together the feature/crime clients and the process-wide
// caches, and exposes the request entry point FindSafeRoutes plus the
// diagnostic DebugGraph.
type Service struct {
	cfg       config.Config
	logger    *zap.Logger
	features  features.Fetcher
	crimes    crime.Fetcher
	routes    *cachekit.Cache[string, routeresponse.Response]
	coalesce  *cachekit.Inflight[string, routeresponse.Response]
}

// New builds a Service from cfg, wiring a feature and crime client unless
// overridden (tests substitute fakes via WithFetchers).
func New(cfg config.Config, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger,
		features: features.NewClient(cfg.Servers, cfg.FeatureFetchTimeout, cfg.FeatureCacheTTL, cfg.FeatureCacheSoftCap),
		crimes:   crime.NewClient(cfg.CrimeServers, cfg.CrimeFetchTimeout, cfg.CrimeCacheTTL, cfg.CrimeCacheSoftCap),
		routes:   cachekit.New[string, routeresponse.Response](cfg.RouteCacheTTL, cfg.RouteCacheSoftCap),
		coalesce: cachekit.NewInflight[string, routeresponse.Response](),
	}
}

// WithFetchers overrides the feature and crime fetchers, for tests.
func (s *Service) WithFetchers(f features.Fetcher, c crime.Fetcher) *Service {
	s.features = f
	s.crimes = c
	return s
}

// FindSafeRoutes executes the full pipeline for one (origin, destination)
// request (spec §4.6 steps 1-9).
func (s *Service) FindSafeRoutes(origin, destination geo.Point) (routeresponse.Response, error) {
	requestID := uuid.New().String()
	log := s.logger.With(zap.String("requestId", requestID))

	if err := validateCoordinate("origin", origin); err != nil {
		return routeresponse.Response{}, err
	}
	if err := validateCoordinate("destination", destination); err != nil {
		return routeresponse.Response{}, err
	}

	straightLineM := geomath.Haversine(origin, destination)
	straightLineKm := straightLineM / 1000
	if straightLineKm > s.cfg.MaxDistanceKM {
		bbox, _ := geomath.BoundingBoxFromPoints([]geo.Point{origin, destination}, 0)
		estimated := int(bbox.AreaKM2() * 4000)
		return routeresponse.Response{}, apierr.DestinationOutOfRangeErr(straightLineKm, s.cfg.MaxDistanceKM, estimated)
	}

	bufferMeters := bufferMetersFor(straightLineM)
	key := cacheKey(origin, destination)

	if cached, ok := s.routes.Get(key); ok {
		log.Debug("route cache hit", zap.String("key", key))
		return cached, nil
	}

	resp, err := s.coalesce.Do(key, func() (routeresponse.Response, error) {
		return s.compute(log, origin, destination, straightLineKm, bufferMeters)
	})
	if err != nil {
		return routeresponse.Response{}, err
	}

	s.routes.Set(key, resp)
	return resp, nil
}

func (s *Service) compute(log *zap.Logger, origin, destination geo.Point, straightLineKm, bufferMeters float64) (routeresponse.Response, error) {
	start := time.Now()
	timing := make(map[string]time.Duration)

	bbox, err := geomath.BoundingBoxFromPoints([]geo.Point{origin, destination}, bufferMeters)
	if err != nil {
		return routeresponse.Response{}, apierr.Wrap(apierr.InternalError, "computing request bounding box", err)
	}

	fetchStart := time.Now()
	classified, crimes, err := s.fetchConcurrently(bbox)
	timing["fetch"] = time.Since(fetchStart)
	if err != nil {
		return routeresponse.Response{}, err
	}

	buildStart := time.Now()
	weights := s.cfg.Weights
	if s.cfg.NightMode {
		weights = config.NightWeights
	}
	g, _, err := graph.Build(classified, crimes, bbox, weights, s.cfg)
	timing["graphBuild"] = time.Since(buildStart)
	if err != nil {
		return routeresponse.Response{}, err
	}

	originNode, err := g.Snap(origin, config.SnapStartRadiusM, config.SnapMaxRadiusM, "origin")
	if err != nil {
		return routeresponse.Response{}, err
	}
	destNode, err := g.Snap(destination, config.SnapStartRadiusM, config.SnapMaxRadiusM, "destination")
	if err != nil {
		return routeresponse.Response{}, err
	}

	searchStart := time.Now()
	routes, err := pathfinder.KDiverse(g, originNode, destNode, s.cfg)
	timing["pathfind"] = time.Since(searchStart)
	if err != nil {
		return routeresponse.Response{}, err
	}

	scoreStart := time.Now()
	scored := make([]routeresponse.ScoredRoute, len(routes))
	for i, r := range routes {
		scored[i] = routeresponse.ScoredRoute{
			Route: r,
			Score: safety.Compute(g, r),
			Stats: safety.ComputeStats(g, r),
			POIs:  safety.ComputePOIs(g, r, classified, crimes),
		}
	}
	timing["score"] = time.Since(scoreStart)

	resp := routeresponse.Build(g, scored, straightLineKm, s.cfg.MaxDistanceKM, timing, time.Since(start))
	log.Info("computed safe routes", zap.Int("routeCount", len(routes)), zap.Duration("total", time.Since(start)))
	return resp, nil
}

// DebugGraph rebuilds the safety-weighted walking graph for the bounding
// box implied by origin/destination and exports it as GeoJSON, for the
// diagnostic /api/debug/graph endpoint. It does not consult or populate
// the route cache, since its output (raw edges) isn't a route response.
func (s *Service) DebugGraph(origin, destination geo.Point) (*geojson.FeatureCollection, error) {
	if err := validateCoordinate("origin", origin); err != nil {
		return nil, err
	}
	if err := validateCoordinate("destination", destination); err != nil {
		return nil, err
	}

	straightLineM := geomath.Haversine(origin, destination)
	bufferMeters := bufferMetersFor(straightLineM)
	bbox, err := geomath.BoundingBoxFromPoints([]geo.Point{origin, destination}, bufferMeters)
	if err != nil {
		return nil, apierr.Wrap(apierr.InternalError, "computing request bounding box", err)
	}

	classified, crimes, err := s.fetchConcurrently(bbox)
	if err != nil {
		return nil, err
	}

	weights := s.cfg.Weights
	if s.cfg.NightMode {
		weights = config.NightWeights
	}
	g, _, err := graph.Build(classified, crimes, bbox, weights, s.cfg)
	if err != nil {
		return nil, err
	}

	return g.ExportGeoJSON(), nil
}

// fetchConcurrently issues the feature and crime fetches concurrently, but
// this stage's callers observe them completed in a deterministic order
// (feature, then crime) regardless of which finishes first (spec §5
// "Ordering").
func (s *Service) fetchConcurrently(bbox geo.BoundingBox) (*features.Classified, []crime.Incident, error) {
	var classified *features.Classified
	var crimes []crime.Incident
	var featureErr, crimeErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		classified, featureErr = s.features.FetchFeatures(bbox)
	}()
	go func() {
		defer wg.Done()
		crimes, crimeErr = s.crimes.FetchCrimes(bbox)
	}()
	wg.Wait()

	if featureErr != nil {
		return nil, nil, apierr.Wrap(apierr.UpstreamUnavailable, "fetching features", featureErr)
	}
	if crimeErr != nil {
		return nil, nil, apierr.Wrap(apierr.UpstreamUnavailable, "fetching crimes", crimeErr)
	}
	return classified, crimes, nil
}

func validateCoordinate(which string, p geo.Point) error {
	if !p.Finite() {
		return apierr.InvalidCoordinateErr(which, "not a finite lat/lng within WGS84 range")
	}
	return nil
}

// bufferMetersFor picks the bbox buffer from the straight-line distance
// tier (spec §4.6 step 2).
func bufferMetersFor(straightLineM float64) float64 {
	switch {
	case straightLineM < 1000:
		return 500
	case straightLineM < 3000:
		return 400
	default:
		return 300
	}
}

// cacheKey rounds both endpoints to 3 decimal places (~100m), per spec
// §4.6 step 3.
func cacheKey(origin, destination geo.Point) string {
	return fmt.Sprintf("%.3f,%.3f-%.3f,%.3f", origin.Lat(), origin.Lng(), destination.Lat(), destination.Lng())
}
