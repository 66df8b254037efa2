package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/pkg/ratelimit"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStorage struct {
	err error
}

func (s stubStorage) Ping(context.Context) error { return s.err }

func (s stubStorage) Backend() string { return "file" }

func newMonitoringTestRouter(t *testing.T, deps Dependencies) *router.RouterService {
	t.Helper()

	deps.Logger = log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(deps.Logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringController(deps))
	return rs
}

func do(t *testing.T, rs *router.RouterService, req *http.Request) (int, map[string]any) {
	t.Helper()

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestHealth_StorageUp(t *testing.T) {
	rs := newMonitoringTestRouter(t, Dependencies{Storage: stubStorage{}})

	code, body := do(t, rs, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["storage"])
	assert.Equal(t, float64(0), data["database"])
	assert.Equal(t, float64(0), data["cache"])
	assert.Equal(t, "file", data["backend"])
}

func TestHealth_StorageDown(t *testing.T) {
	rs := newMonitoringTestRouter(t, Dependencies{Storage: stubStorage{err: errors.New("unreadable")}})

	code, body := do(t, rs, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Waitlist storage is unavailable", body["message"])
	assert.Equal(t, float64(0), body["data"].(map[string]any)["storage"])
}

func TestMonitor(t *testing.T) {
	rs := newMonitoringTestRouter(t, Dependencies{Storage: stubStorage{}})

	code, body := do(t, rs, httptest.NewRequest(http.MethodGet, "/monitor", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Monitoring successful", body["message"])
}

func TestDiagnostics(t *testing.T) {
	rs := newMonitoringTestRouter(t, Dependencies{Storage: stubStorage{}, AppEnv: "test", HasDatabaseURL: true})

	code, body := do(t, rs, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "test", data["app_env"])
	assert.Equal(t, "file", data["backend"])
	assert.Equal(t, true, data["has_database_url"])
	assert.Equal(t, http.MethodGet, data["method"])
	assert.NotEmpty(t, data["correlation_id"])
	assert.NotContains(t, data, "body")

	req := httptest.NewRequest(http.MethodPost, "/api/test", strings.NewReader(`{"hello":"world"}`))
	req.Header.Set("Content-Type", "application/json")
	code, body = do(t, rs, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"hello": "world"}, body["data"].(map[string]any)["body"])
}

func TestMonitoringRateLimit(t *testing.T) {
	rs := newMonitoringTestRouter(t, Dependencies{Storage: stubStorage{}})

	var last int
	for i := 0; i < 11; i++ {
		last, _ = do(t, rs, httptest.NewRequest(http.MethodGet, "/monitor", nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

type redisBackedCache struct {
	client *goredis.Client
}

func (c redisBackedCache) Ping(context.Context) error { return nil }

func (c redisBackedCache) GetClient() *goredis.Client { return c.client }

func TestMonitoringRateLimiter_SharesCacheClient(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	assert.IsType(t, &ratelimit.InMemoryRateLimiter{}, createMonitoringRateLimiter(Dependencies{}))

	limiter := createMonitoringRateLimiter(Dependencies{Cache: redisBackedCache{client: client}, Logger: log.NewLoggerWithJSONOutput()})
	assert.IsType(t, &ratelimit.RedisRateLimiter{}, limiter)
	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 10, requests)
	assert.Equal(t, time.Minute, window)
}
