package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/crime"
	"github.com/saferoutes/saferoutes-core/internal/features"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/routeservice"
	"github.com/saferoutes/saferoutes-core/internal/tags"
)

type fakeFeatureFetcher struct{ classified *features.Classified }

func (f *fakeFeatureFetcher) FetchFeatures(_ geo.BoundingBox) (*features.Classified, error) {
	return f.classified, nil
}

type fakeCrimeFetcher struct{}

func (f *fakeCrimeFetcher) FetchCrimes(_ geo.BoundingBox) ([]crime.Incident, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	origin := geo.NewPoint(0, 0)
	destination := geo.NewPoint(0, 0.002)

	classified := &features.Classified{
		Ways: []features.Way{
			{ID: 1, NodeIDs: []int64{1, 2}, View: tags.View{Highway: tags.HighwayFootway}},
		},
		NodesByID: map[int64]geo.Point{1: origin, 2: destination},
	}

	cfg := config.Default()
	cfg.KRoutes = 1
	svc := routeservice.New(cfg, zap.NewNop())
	svc.WithFetchers(&fakeFeatureFetcher{classified: classified}, &fakeCrimeFetcher{})

	return New(svc, zap.NewNop())
}

func requestCtx(path string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(path)
	ctx.Init(&req, nil, nil)
	return &ctx
}

func TestRouteServesSafeRoutes(t *testing.T) {
	h := newTestHandler(t)
	ctx := requestCtx("/api/safe-routes?origin_lat=0&origin_lng=0&dest_lat=0&dest_lng=0.002")

	h.Route(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"routes"`)
}

func TestRouteServesDebugGraphAsGeoJSON(t *testing.T) {
	h := newTestHandler(t)
	ctx := requestCtx("/api/debug/graph?origin_lat=0&origin_lng=0&dest_lat=0&dest_lng=0.002")

	h.Route(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"FeatureCollection"`)
	assert.Contains(t, string(ctx.Response.Body()), `"highway"`)
}

func TestRouteReturnsNotFoundForUnknownPath(t *testing.T) {
	h := newTestHandler(t)
	ctx := requestCtx("/nope")

	h.Route(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
