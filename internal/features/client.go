package features

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/saferoutes/saferoutes-core/internal/cachekit"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/httpclient"
)

// Fetcher is the async boundary for feature ingestion (spec §9 "Async
// boundaries"): the only suspending call in the pipeline below
// RouteService, wrapped behind an interface so tests can substitute fakes.
type Fetcher interface {
	FetchFeatures(bbox geo.BoundingBox) (*Classified, error)
}

// ErrorResponse mirrors the upstream provider's error body, following the
// teacher client's ErrorResponse/Error() pattern.
type ErrorResponse struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error"`
	StatusCode   int    `json:"status_code"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("features: upstream error %d: %s (%s)", e.StatusCode, e.ErrorMessage, e.ErrorCode)
}

// Client fetches and caches classified features for a bounding box,
// rotating through a configured list of equivalent mirror servers on
// timeout/5xx/429 (spec §5 "Cancellation and timeouts").
type Client struct {
	http  *httpclient.MirrorClient
	cache *cachekit.Cache[string, *Classified]
}

// NewClient builds a feature client with the given mirror list, per-call
// timeout, cache TTL and soft cap.
func NewClient(servers []string, timeout time.Duration, cacheTTL time.Duration, cacheSoftCap int) *Client {
	return &Client{
		http:  httpclient.New("saferoutes-core/features", servers, timeout),
		cache: cachekit.New[string, *Classified](cacheTTL, cacheSoftCap),
	}
}

// bboxKey renders the bounding box as a stable cache key.
func bboxKey(bbox geo.BoundingBox) string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", bbox.South, bbox.West, bbox.North, bbox.East)
}

// FetchFeatures returns the classified feature sets for bbox, using the
// cache when fresh and otherwise querying the upstream provider, rotating
// through mirrors on failure.
func (c *Client) FetchFeatures(bbox geo.BoundingBox) (*Classified, error) {
	key := bboxKey(bbox)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	body, err := c.http.Get(func(server string) string {
		return fmt.Sprintf("%s/features?bbox=%.6f,%.6f,%.6f,%.6f", server, bbox.South, bbox.West, bbox.North, bbox.East)
	})
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}

	var elements []Element
	if err := json.Unmarshal(body, &elements); err != nil {
		errRes := &ErrorResponse{}
		if jsonErr := json.Unmarshal(body, errRes); jsonErr == nil && errRes.ErrorCode != "" {
			return nil, errRes
		}
		return nil, fmt.Errorf("features: decoding response: %w", err)
	}

	classified := Classify(elements)
	c.cache.Set(key, classified)
	return classified, nil
}
