package lookup

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newIPv4TestServer starts a test server bound to IPv4 loopback to avoid IPv6 listener issues.
func newIPv4TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}

// useTestClient routes the shared HTTP client to server for one test.
func useTestClient(t *testing.T, server *httptest.Server) {
	t.Helper()

	origFactory := httpClientNew
	httpClient = nil
	clientOnce = sync.Once{}
	httpClientNew = func() *http.Client { return server.Client() }

	t.Cleanup(func() {
		httpClient = nil
		clientOnce = sync.Once{}
		httpClientNew = origFactory
	})
}

func fastLimiter() *limiter {
	return newLimiter("test", time.Millisecond, 100)
}
