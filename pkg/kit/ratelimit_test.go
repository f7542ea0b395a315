package kit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_PerClient(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))

	// other clients have their own bucket
	require.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	require.True(t, l.Allow("10.0.0.1"))
}

func TestIPRateLimiter_PrunesIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(10, 10)
	l.now = func() time.Time { return now }

	for i := 0; i < maxTrackedClients; i++ {
		l.Allow(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	require.Len(t, l.clients, maxTrackedClients)

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("192.168.0.1")
	require.Len(t, l.clients, 1)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(xff string) int {
		r := httptest.NewRequest(http.MethodDelete, "/admin/clear_items", nil)
		r.RemoteAddr = "203.0.113.9:4321"
		if xff != "" {
			r.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, call(""))
	require.Equal(t, http.StatusTooManyRequests, call(""))
	require.Equal(t, http.StatusNoContent, call("198.51.100.7, 10.0.0.1"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	require.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Set("X-Forwarded-For", " 198.51.100.7 , 10.0.0.1")
	require.Equal(t, "198.51.100.7", clientIP(r))

	r.Header.Del("X-Forwarded-For")
	r.RemoteAddr = "not-a-hostport"
	require.Equal(t, "not-a-hostport", clientIP(r))
}
