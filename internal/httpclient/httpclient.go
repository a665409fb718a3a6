// Package httpclient adapts the teacher client's single-endpoint
// fasthttp.Client wrapper into a mirror-rotating GET helper shared by the
// feature and crime clients, so each only has to know its own URL shape
// and response type (spec §5 "the client rotates through a configured
// list of equivalent servers").
package httpclient

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// MirrorClient issues GET requests against a list of equivalent upstream
// servers, rotating to the next mirror on a failed request (including a
// timeout), 429, or 5xx.
type MirrorClient struct {
	http    *fasthttp.Client
	Servers []string
	Timeout time.Duration
}

// New builds a MirrorClient. name is used as the fasthttp.Client's User-Agent.
func New(name string, servers []string, timeout time.Duration) *MirrorClient {
	return &MirrorClient{
		http:    &fasthttp.Client{Name: name},
		Servers: servers,
		Timeout: timeout,
	}
}

// Get calls buildURI for each configured mirror in order, returning the
// first successful response body. Any other non-200 status stops the
// rotation and is returned at once. All mirrors failing is reported as one
// wrapped error naming the last failure.
func (m *MirrorClient) Get(buildURI func(server string) string) ([]byte, error) {
	var lastErr error
	for _, server := range m.Servers {
		body, retryable, err := m.getOne(buildURI(server), server)
		if err != nil {
			if !retryable {
				return nil, fmt.Errorf("httpclient: %w", err)
			}
			lastErr = err
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("httpclient: all %d mirrors failed: %w", len(m.Servers), lastErr)
}

// getOne performs one GET; retryable reports whether a failure is one that
// another mirror may not share (request failure or timeout, 429, 5xx).
func (m *MirrorClient) getOne(uri, server string) (body []byte, retryable bool, err error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := m.http.DoTimeout(req, resp, m.Timeout); err != nil {
		return nil, true, fmt.Errorf("%s: request failed: %w", server, err)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusTooManyRequests || status >= 500 {
		return nil, true, fmt.Errorf("%s: retryable status %d", server, status)
	}
	if status != fasthttp.StatusOK {
		return nil, false, fmt.Errorf("%s: status %d: %s", server, status, resp.Body())
	}

	// resp's body buffer is reclaimed by ReleaseResponse above; copy it so
	// the caller can use it afterward.
	return append([]byte(nil), resp.Body()...), false, nil
}
