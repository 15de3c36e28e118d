package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rps float64, burst int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(rps, burst)
	l.now = clock.Now
	return l, clock
}

func hit(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks/", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	l, _ := newTestLimiter(5, 5)
	h := l.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1234").Code, "request %d", i)
	}

	w := hit(h, "192.0.2.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, shared.CodeTooManyRequests, resp.ErrorCode)
	assert.Equal(t, "Too many requests", resp.Detail)
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	l, clock := newTestLimiter(5, 5)
	h := l.Middleware(okHandler())

	for i := 0; i < 5; i++ {
		hit(h, "192.0.2.1:1234")
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:1234").Code)

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:1234").Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	h := l.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:2000").Code, "same IP, different port")
	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.2:1000").Code)
}

func TestRateLimiter_PrunesIdleClients(t *testing.T) {
	l, clock := newTestLimiter(5, 5)
	h := l.Middleware(okHandler())

	hit(h, "192.0.2.1:1")
	hit(h, "192.0.2.2:1")
	assert.Equal(t, 2, l.size())

	clock.Advance(DefaultIdleTTL + time.Second)
	hit(h, "192.0.2.3:1")

	assert.Equal(t, 1, l.size())
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	slow := NewRateLimiter(0.25, 1)
	assert.Equal(t, 4, slow.retryAfter())

	fast := NewRateLimiter(50, 1)
	assert.Equal(t, 1, fast.retryAfter())
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientKey(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientKey(req))
}
