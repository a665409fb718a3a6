// Package apierr defines the typed error kinds propagated out of the
// routing pipeline (spec §7), so callers classify failures by Kind rather
// than matching error strings.
package apierr

import "fmt"

// Kind is one of the error kinds enumerated in spec §7.
type Kind string

const (
	InvalidCoordinate     Kind = "invalid_coordinate"
	DestinationOutOfRange Kind = "destination_out_of_range"
	NoWalkingNetwork      Kind = "no_walking_network"
	NoNearbyRoad          Kind = "no_nearby_road"
	NoRouteFound          Kind = "no_route_found"
	UpstreamUnavailable   Kind = "upstream_unavailable"
	UpstreamTimeout       Kind = "upstream_timeout"
	InternalError         Kind = "internal_error"
)

// httpStatus maps each kind to the HTTP status the edge layer should use;
// the core itself never writes an HTTP response, but RouteService callers
// need this to build one.
var httpStatus = map[Kind]int{
	InvalidCoordinate:     400,
	DestinationOutOfRange: 400,
	NoWalkingNetwork:      404,
	NoNearbyRoad:          404,
	NoRouteFound:          404,
	UpstreamUnavailable:   502,
	UpstreamTimeout:       500,
	InternalError:         500,
}

// Error is the error type returned by every pipeline stage. Fields carries
// kind-specific structured data (e.g. "which" for NoNearbyRoad,
// "actualDistanceKm" for DestinationOutOfRange).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the HTTP status code associated with e.Kind.
func (e *Error) HTTPStatus() int { return httpStatus[e.Kind] }

// New builds a bare Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithFields attaches structured fields and returns e for chaining.
func (e *Error) WithFields(fields map[string]any) *Error {
	e.Fields = fields
	return e
}

// InvalidCoordinateErr reports a non-finite or out-of-range lat/lng.
func InvalidCoordinateErr(which, reason string) *Error {
	return New(InvalidCoordinate, fmt.Sprintf("%s coordinate invalid: %s", which, reason))
}

// DestinationOutOfRangeErr carries the measured straight-line distance and
// an estimated data-point count for the oversized bounding box.
func DestinationOutOfRangeErr(distanceKM, maxKM float64, estimatedDataPoints int) *Error {
	return New(DestinationOutOfRange,
		fmt.Sprintf("straight-line distance %.1fkm exceeds max %.1fkm", distanceKM, maxKM)).
		WithFields(map[string]any{
			"actualDistanceKm":    distanceKM,
			"maxDistanceKm":       maxKM,
			"estimatedDataPoints": estimatedDataPoints,
		})
}

// NoNearbyRoadErr carries which endpoint ("origin" or "destination")
// failed to snap to the walking network.
func NoNearbyRoadErr(which string) *Error {
	return New(NoNearbyRoad, fmt.Sprintf("no walkable road found near %s", which)).
		WithFields(map[string]any{"which": which})
}

// NoRouteFoundErr carries the graph sizes explored, for diagnostics.
func NoRouteFoundErr(nodeCount, edgeCount int) *Error {
	return New(NoRouteFound, "no route found within the distance cap").
		WithFields(map[string]any{"nodeCount": nodeCount, "edgeCount": edgeCount})
}
