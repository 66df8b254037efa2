package monitoring

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/pkg/factory"
	"github.com/akeren/aimaker-waitlist/pkg/ratelimit"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

type Cache interface {
	Ping(ctx context.Context) error
}

// Storage is the active waitlist backend as seen by health checks.
type Storage interface {
	Ping(ctx context.Context) error
	Backend() string
}

type HealthStatus struct {
	Database int    `json:"database"` // 1 = healthy, 0 = unhealthy/not configured
	Cache    int    `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	Storage  int    `json:"storage"`  // 1 = waitlist backend reachable
	Backend  string `json:"backend"`
	Uptime   int    `json:"uptime"` // uptime in seconds
}

type DiagnosticsResponse struct {
	AppEnv        string         `json:"app_env"`
	Backend       string         `json:"backend"`
	HasDatabase   bool           `json:"has_database_url"`
	Method        string         `json:"method"`
	ContentType   string         `json:"content_type"`
	Body          map[string]any `json:"body,omitempty"`
	CorrelationID string         `json:"correlation_id"`
}

type Dependencies struct {
	DB      *gorm.DB
	Cache   Cache
	Storage Storage
	Logger  *log.Logger
	AppEnv  string
	// HasDatabaseURL reports whether database credentials are configured, never their value.
	HasDatabaseURL bool
}

type MonitoringController struct {
	deps      Dependencies
	startTime time.Time
}

func NewMonitoringController(deps Dependencies) *router.RESTController {
	ctrl := &MonitoringController{
		deps:      deps,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			controller.RateLimitWith(routerService, createMonitoringRateLimiter(deps))

			routerService.AddGetHandler(controller, nil, "monitor", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, nil, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})

			routerService.AddGetHandler(controller, nil, "api/test", ctrl.diagnostics)
			routerService.AddPostHandler(controller, nil, "api/test", ctrl.diagnostics)
		},
	)
}

// createMonitoringRateLimiter is stricter than the router default and shares the
// Redis client of the cache when one is configured.
func createMonitoringRateLimiter(deps Dependencies) ratelimit.RateLimiter {
	const monitoringRequestsPerMinute = 10

	var logger ratelimit.Logger
	if deps.Logger != nil {
		logger = deps.Logger
	}

	return factory.NewDefaultRateLimiterFactory(monitoringRequestsPerMinute, time.Minute, deps.Cache, logger).CreateRateLimiter()
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	// The waitlist cannot accept submissions without its backend.
	if healthStatus.Storage == 0 {
		return router.ErrorResult(http.StatusServiceUnavailable, "Waitlist storage is unavailable", healthStatus)
	}

	return router.OKResult(healthStatus, "Health check completed")
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return router.OKResult("Monitoring endpoint is operational.", "Monitoring successful")
}

// diagnostics echoes request metadata for connectivity debugging. It never returns secrets.
func (ctrl *MonitoringController) diagnostics(c *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(c)

	response := DiagnosticsResponse{
		AppEnv:        ctrl.deps.AppEnv,
		HasDatabase:   ctrl.deps.HasDatabaseURL,
		Method:        c.Request.Method,
		ContentType:   c.ContentType(),
		CorrelationID: log.GetOrGenerateCorrelationID(c.Request.Context()),
	}
	if ctrl.deps.Storage != nil {
		response.Backend = ctrl.deps.Storage.Backend()
	}

	if c.Request.Method == http.MethodPost && strings.Contains(response.ContentType, "json") {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err == nil {
			response.Body = body
		}
	}

	logger.Info("Diagnostics endpoint called", "method", response.Method, "content_type", response.ContentType)

	return router.OKResult(response, "Test API is working")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	checkDatabaseConnectivity(ctx, ctrl, &status, logger)
	checkCacheConnectivity(ctx, ctrl, &status, logger)
	checkStorageConnectivity(ctx, ctrl, &status, logger)

	return status
}

func checkCacheConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.deps.Cache == nil {
		logger.Debug("Cache not configured, cache health check skipped")
		return
	}

	if err := ctrl.deps.Cache.Ping(ctx); err != nil {
		logger.Error("Cache health check failed", "error", err)
		return
	}
	status.Cache = 1
}

func checkDatabaseConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.deps.DB == nil {
		logger.Debug("Database not configured, database health check skipped")
		return
	}

	sqlDB, err := ctrl.deps.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Error("Database health check failed", "error", err)
		return
	}
	status.Database = 1
}

func checkStorageConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.deps.Storage == nil {
		logger.Error("Waitlist storage not configured")
		return
	}

	status.Backend = ctrl.deps.Storage.Backend()
	if err := ctrl.deps.Storage.Ping(ctx); err != nil {
		logger.Error("Waitlist storage health check failed", "backend", status.Backend, "error", err)
		return
	}
	status.Storage = 1
}
