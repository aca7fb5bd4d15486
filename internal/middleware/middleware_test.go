package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/pages/next", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1002"))
	// other clients have their own bucket
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2:1000"))
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(time.Hour)
	rl.Allow("b")
	rl.Cleanup(10 * time.Minute)

	assert.Len(t, rl.buckets, 1)
	assert.Contains(t, rl.buckets, "b")
}

func TestValidateEnquiryID(t *testing.T) {
	assert.NoError(t, ValidateEnquiryID("3f2b9c1e-8d7a-4f6b-9a0e-1c2d3e4f5a6b"))
	assert.NoError(t, ValidateEnquiryID("Xk2JdQ0oPbR8sYtUvWz1"))
	assert.Error(t, ValidateEnquiryID(""))
	assert.Error(t, ValidateEnquiryID("a/b"))
	assert.Error(t, ValidateEnquiryID("bad id"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 15, ValidateLimit("", 15))
	assert.Equal(t, 15, ValidateLimit("abc", 15))
	assert.Equal(t, 15, ValidateLimit("-3", 15))
	assert.Equal(t, 20, ValidateLimit("20", 15))
	assert.Equal(t, 100, ValidateLimit("1000", 15))
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	checkers := map[string]HealthChecker{
		"store":   PingChecker{Target: pingFunc(func(context.Context) error { return nil })},
		"archive": PingChecker{Target: pingFunc(func(context.Context) error { return errors.New("bucket unreachable") })},
	}

	rec := httptest.NewRecorder()
	HealthHandler(checkers)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var got Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "down", got.Status)
	assert.Equal(t, "up", got.Checks["store"].Status)
	assert.Equal(t, "bucket unreachable", got.Checks["archive"].Error)
}

func TestReadinessHandler(t *testing.T) {
	ok := PingChecker{Target: pingFunc(func(context.Context) error { return nil })}
	bad := PingChecker{Target: pingFunc(func(context.Context) error { return errors.New("no route") })}

	rec := httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"store": ok})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true,"down":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"store": bad, "archive": ok})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false,"down":["store"]}`, rec.Body.String())
}

func TestPingCheckerTimeout(t *testing.T) {
	slow := PingChecker{
		Target: pingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
		Timeout: 10 * time.Millisecond,
	}
	assert.ErrorIs(t, slow.Check(context.Background()), context.DeadlineExceeded)
}
