// Package crime fetches recent crime incidents in a bounding box over a
// recent window (spec §6 "Upstream crime provider"), cached separately
// from features with a much longer TTL (24h default).
package crime

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/saferoutes/saferoutes-core/internal/cachekit"
	"github.com/saferoutes/saferoutes-core/internal/geo"
	"github.com/saferoutes/saferoutes-core/internal/httpclient"
)

// Incident is one crime record from the upstream crime provider.
type Incident struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// Point returns the incident's location as a geo.Point.
func (i Incident) Point() geo.Point { return geo.NewPoint(i.Lat, i.Lng) }

// Fetcher is the async boundary for crime ingestion (spec §9).
type Fetcher interface {
	FetchCrimes(bbox geo.BoundingBox) ([]Incident, error)
}

// Client fetches and caches crime incidents for a bounding box, rotating
// through mirror servers on failure, matching the feature client's shape.
type Client struct {
	http  *httpclient.MirrorClient
	cache *cachekit.Cache[string, []Incident]
}

// NewClient builds a crime client.
func NewClient(servers []string, timeout time.Duration, cacheTTL time.Duration, cacheSoftCap int) *Client {
	return &Client{
		http:  httpclient.New("saferoutes-core/crime", servers, timeout),
		cache: cachekit.New[string, []Incident](cacheTTL, cacheSoftCap),
	}
}

func bboxKey(bbox geo.BoundingBox) string {
	return fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", bbox.South, bbox.West, bbox.North, bbox.East)
}

// FetchCrimes returns recent crime incidents within bbox.
func (c *Client) FetchCrimes(bbox geo.BoundingBox) ([]Incident, error) {
	key := bboxKey(bbox)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	body, err := c.http.Get(func(server string) string {
		return fmt.Sprintf("%s/crimes?bbox=%.6f,%.6f,%.6f,%.6f", server, bbox.South, bbox.West, bbox.North, bbox.East)
	})
	if err != nil {
		return nil, fmt.Errorf("crime: %w", err)
	}

	var incidents []Incident
	if err := json.Unmarshal(body, &incidents); err != nil {
		return nil, fmt.Errorf("crime: decoding response: %w", err)
	}
	c.cache.Set(key, incidents)
	return incidents, nil
}
