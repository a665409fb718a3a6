// Package httpapi exposes the routing pipeline over the inbound endpoint
// described in spec §6, GET /api/safe-routes, plus the diagnostic
// GET /api/debug/graph. Built on valyala/fasthttp to match the teacher
// client's HTTP stack.
package httpapi

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gotidy/ptr"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saferoutes/saferoutes-core/internal/apierr"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/routeresponse"
	"github.com/saferoutes/saferoutes-core/internal/routeservice"
)

// Handler serves GET /api/safe-routes and GET /api/debug/graph from a
// routeservice.Service.
type Handler struct {
	svc    *routeservice.Service
	logger *zap.Logger
}

// New builds a Handler.
func New(svc *routeservice.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Route is the fasthttp.RequestHandler entry point, dispatching on path and
// method.
func (h *Handler) Route(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	switch string(ctx.Path()) {
	case "/api/safe-routes":
		h.safeRoutes(ctx)
	case "/api/debug/graph":
		h.debugGraph(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (h *Handler) safeRoutes(ctx *fasthttp.RequestCtx) {
	originLat := queryFloat(ctx, "origin_lat")
	originLng := queryFloat(ctx, "origin_lng")
	destLat := queryFloat(ctx, "dest_lat")
	destLng := queryFloat(ctx, "dest_lng")

	if originLat == nil || originLng == nil || destLat == nil || destLng == nil {
		h.writeError(ctx, apierr.New(apierr.InvalidCoordinate, "origin_lat, origin_lng, dest_lat, dest_lng are all required"))
		return
	}

	origin := geo.NewPoint(ptr.ToFloat64(originLat), ptr.ToFloat64(originLng))
	destination := geo.NewPoint(ptr.ToFloat64(destLat), ptr.ToFloat64(destLng))

	resp, err := h.svc.FindSafeRoutes(origin, destination)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, resp)
}

// debugGraph serves the safety-weighted walking graph built for the
// requested origin/destination as a GeoJSON FeatureCollection, for
// inspecting edge scoring without running the full pathfinding pipeline.
func (h *Handler) debugGraph(ctx *fasthttp.RequestCtx) {
	originLat := queryFloat(ctx, "origin_lat")
	originLng := queryFloat(ctx, "origin_lng")
	destLat := queryFloat(ctx, "dest_lat")
	destLng := queryFloat(ctx, "dest_lng")

	if originLat == nil || originLng == nil || destLat == nil || destLng == nil {
		h.writeError(ctx, apierr.New(apierr.InvalidCoordinate, "origin_lat, origin_lng, dest_lat, dest_lng are all required"))
		return
	}

	origin := geo.NewPoint(ptr.ToFloat64(originLat), ptr.ToFloat64(originLng))
	destination := geo.NewPoint(ptr.ToFloat64(destLat), ptr.ToFloat64(destLng))

	fc, err := h.svc.DebugGraph(origin, destination)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, fc)
}

// queryFloat parses a query argument as *float64 (built with
// github.com/gotidy/ptr), returning nil if absent or unparsable.
func queryFloat(ctx *fasthttp.RequestCtx, name string) *float64 {
	raw := ctx.QueryArgs().Peek(name)
	if len(raw) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return nil
	}
	return ptr.Float64(v)
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("marshaling response", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, err error) {
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		h.logger.Error("unclassified pipeline error", zap.Error(err))
		apiErr = apierr.Wrap(apierr.InternalError, "unexpected error", err)
	}

	body := routeresponse.ErrorResponse{
		Error:   string(apiErr.Kind),
		Message: apiErr.Message,
	}
	if v, ok := apiErr.Fields["actualDistanceKm"].(float64); ok {
		body.ActualDistanceKm = v
	}
	if v, ok := apiErr.Fields["maxDistanceKm"].(float64); ok {
		body.MaxDistanceKm = v
	}
	if v, ok := apiErr.Fields["estimatedDataPoints"].(int); ok {
		body.EstimatedDataPoints = int64(v)
	}
	if v, ok := apiErr.Fields["which"].(string); ok {
		body.Which = v
	}
	if v, ok := apiErr.Fields["nodeCount"].(int); ok {
		body.NodeCount = v
	}
	if v, ok := apiErr.Fields["edgeCount"].(int); ok {
		body.EdgeCount = v
	}

	h.writeJSON(ctx, apiErr.HTTPStatus(), body)
}
