package crime

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/saferoutes/saferoutes-core/internal/geo"
)

func startFakeCrimeServer(t *testing.T, body string) (addr string, calls *int32, shutdown func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var n int32
	server := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		n++
		ctx.SetBody([]byte(body))
	}}
	go server.Serve(ln)

	return "http://" + ln.Addr().String(), &n, func() { _ = server.Shutdown() }
}

func TestFetchCrimesPopulatesCacheOnSuccess(t *testing.T) {
	addr, calls, shutdown := startFakeCrimeServer(t, `[{"lat":0,"lng":0,"category":"theft"}]`)
	defer shutdown()

	c := NewClient([]string{addr}, time.Second, time.Minute, 16)
	bbox := geo.BoundingBox{South: 0, North: 1, West: 0, East: 1}

	first, err := c.FetchCrimes(bbox)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := c.FetchCrimes(bbox)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), *calls, "second identical request should be served from cache, not re-hit the upstream")
}
