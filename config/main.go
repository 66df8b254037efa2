package config

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/internal/models"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	"github.com/akeren/aimaker-waitlist/pkg/utils"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	Mongo           *mongo.Client
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Store           *StoreConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: utils.GetEnvInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests, 1),
		RateLimitWindow:   utils.GetEnvDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvDuration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.Mongo != nil {
		CloseMongo(ac.Mongo, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	storeCfg, err := LoadStoreConfig()
	if err != nil {
		return nil, err
	}
	logger.Info("Waitlist storage selected", "backend", storeCfg.Backend)
	if !storeCfg.ListingProtected() {
		logger.Warn("WAITLIST_ADMIN_TOKEN not set; the waitlist listing is publicly readable")
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	appConfig := &ApplicationConfig{
		Logger:          logger,
		Config:          NewAppConfig(),
		Store:           storeCfg,
		TracingShutdown: tracingShutdown,
	}

	if storeCfg.UsesDatabase() {
		db, err := NewDatabase(logger, nil)
		if err != nil {
			appConfig.Cleanup()
			return nil, err
		}
		appConfig.DB = db

		if autoMigrate {
			if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
				appConfig.Cleanup()
				return nil, err
			}
		}
	}

	if storeCfg.Backend == constants.BackendMongo {
		client, err := NewMongoClient(logger, storeCfg.MongoURI)
		if err != nil {
			appConfig.Cleanup()
			return nil, err
		}
		appConfig.Mongo = client
	}

	cacheConfig, err := LoadCacheConfig()
	if err != nil {
		appConfig.Cleanup()
		return nil, err
	}
	// The redis backend cannot fall back to in-memory.
	redisRequired := storeCfg.Backend == constants.BackendRedis
	cache, err := cacheConfig.OpenCache(logger, redisRequired)
	if err != nil {
		appConfig.Cleanup()
		return nil, fmt.Errorf("WAITLIST_BACKEND=%s requires Redis: %w", constants.BackendRedis, err)
	}
	appConfig.Cache = cache

	var allowedOrigins []string
	if storeCfg.Backend == constants.BackendFile && utils.GetEnvTrimmed("CORS_ALLOWED_ORIGIN") == "" {
		allowedOrigins = []string{"*"}
	}

	appConfig.RouterService = router.CreateRouterService(logger, appConfig.Cache, &router.RouterConfig{
		RateLimitRequests: appConfig.Config.RateLimitRequests,
		RateLimitWindow:   appConfig.Config.RateLimitWindow,
		RequestTimeout:    appConfig.Config.RequestTimeout,
		AllowedOrigins:    allowedOrigins,
	})

	logger.Info("Application configuration loaded successfully")

	return appConfig, nil
}
