package routeservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

type fakeFeatureFetcher struct {
	classified *features.Classified
	calls      int
}

func (f *fakeFeatureFetcher) FetchFeatures(_ geo.BoundingBox) (*features.Classified, error) {
	f.calls++
	return f.classified, nil
}

type fakeCrimeFetcher struct {
	incidents []crime.Incident
}

func (f *fakeCrimeFetcher) FetchCrimes(_ geo.BoundingBox) ([]crime.Incident, error) {
	return f.incidents, nil
}

func simpleWalkableArea(origin, destination geo.Point) *features.Classified {
	return &features.Classified{
		Ways: []features.Way{
			{ID: 1, NodeIDs: []int64{1, 2}, View: tags.View{Highway: tags.HighwayFootway}},
		},
		NodesByID: map[int64]geo.Point{
			1: origin,
			2: destination,
		},
	}
}

func newTestService(t *testing.T, fetcher *fakeFeatureFetcher) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.KRoutes = 1
	svc := New(cfg, zap.NewNop())
	svc.WithFetchers(fetcher, &fakeCrimeFetcher{})
	return svc
}

func TestFindSafeRoutesRejectsInvalidCoordinate(t *testing.T) {
	svc := newTestService(t, &fakeFeatureFetcher{})

	_, err := svc.FindSafeRoutes(geo.NewPoint(999, 0), geo.NewPoint(0, 0))
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.InvalidCoordinate, apiErr.Kind)
}

func TestFindSafeRoutesRejectsOutOfRangeDestination(t *testing.T) {
	svc := newTestService(t, &fakeFeatureFetcher{})

	origin := geo.NewPoint(50.3755, -4.1427)
	destination := geo.NewPoint(55.9533, -3.1883)

	_, err := svc.FindSafeRoutes(origin, destination)
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.DestinationOutOfRange, apiErr.Kind)
}

func TestFindSafeRoutesReturnsARouteForAWalkableArea(t *testing.T) {
	origin := geo.NewPoint(0, 0)
	destination := geo.NewPoint(0, 0.002)

	fetcher := &fakeFeatureFetcher{classified: simpleWalkableArea(origin, destination)}
	svc := newTestService(t, fetcher)

	resp, err := svc.FindSafeRoutes(origin, destination)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
	require.Len(t, resp.Routes, 1)
	assert.True(t, resp.Routes[0].IsSafest)
}

func TestFindSafeRoutesCachesSecondIdenticalRequest(t *testing.T) {
	origin := geo.NewPoint(0, 0)
	destination := geo.NewPoint(0, 0.002)

	fetcher := &fakeFeatureFetcher{classified: simpleWalkableArea(origin, destination)}
	svc := newTestService(t, fetcher)

	first, err := svc.FindSafeRoutes(origin, destination)
	require.NoError(t, err)
	second, err := svc.FindSafeRoutes(origin, destination)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second identical request should be served from the route cache")
}
