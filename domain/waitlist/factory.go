package waitlist

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/aimaker-waitlist/config"
	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/pkg/circuitbreaker"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	"github.com/akeren/aimaker-waitlist/pkg/factory"
)

type WaitlistServiceFactory interface {
	CreateRepository(ctx context.Context) (WaitlistRepository, error)
	CreateService(ctx context.Context) (WaitlistService, error)
	ControllerOptions() ControllerOptions
	CreateController(service WaitlistService) *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	appConfig *config.ApplicationConfig
}

func NewWaitlistServiceFactory(appConfig *config.ApplicationConfig) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{appConfig: appConfig}
}

// CreateRepository builds the backend named by WAITLIST_BACKEND. Every backend
// except memory is wrapped in a circuit breaker.
func (f *DefaultWaitlistServiceFactory) CreateRepository(ctx context.Context) (WaitlistRepository, error) {
	store := f.appConfig.Store
	if store == nil {
		return nil, fmt.Errorf("waitlist: store configuration is missing")
	}

	var repository WaitlistRepository

	switch store.Backend {
	case constants.BackendDatabase:
		if f.appConfig.DB == nil {
			return nil, fmt.Errorf("waitlist: backend %q requires a database connection", store.Backend)
		}
		repository = NewGormRepository(f.appConfig.DB)
	case constants.BackendFile:
		repository = NewFileRepository(store.FilePath())
	case constants.BackendRedis:
		client := config.GetRedisClient(f.appConfig.Cache)
		if client == nil {
			return nil, fmt.Errorf("waitlist: backend %q requires a Redis connection", store.Backend)
		}
		repository = NewRedisRepository(client, store.RedisKey)
	case constants.BackendMongo:
		if f.appConfig.Mongo == nil {
			return nil, fmt.Errorf("waitlist: backend %q requires a MongoDB connection", store.Backend)
		}
		mongoRepository, err := NewMongoRepository(ctx, f.appConfig.Mongo, store.MongoDatabase, store.MongoCollection)
		if err != nil {
			return nil, err
		}
		repository = mongoRepository
	case constants.BackendMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("waitlist: unsupported backend %q", store.Backend)
	}

	return NewGuardedRepository(repository, storeBreakerConfig(), f.appConfig.Logger), nil
}

func storeBreakerConfig() *circuitbreaker.Config {
	return &circuitbreaker.Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService(ctx context.Context) (WaitlistService, error) {
	repository, err := f.CreateRepository(ctx)
	if err != nil {
		return nil, err
	}

	var metrics *SubmissionMetrics
	if f.appConfig.RouterService != nil {
		metrics = NewSubmissionMetrics(f.appConfig.RouterService.MetricsRegisterer())
	}

	return NewWaitlistService(f.appConfig.Logger, repository, metrics), nil
}

func (f *DefaultWaitlistServiceFactory) ControllerOptions() ControllerOptions {
	opts := ControllerOptions{
		JoinLimiter: factory.NewDefaultRateLimiterFactory(
			constants.JoinRateLimitRequests,
			time.Minute,
			f.appConfig.Cache,
			f.appConfig.Logger,
		).CreateRateLimiter(),
	}

	if f.appConfig.Store != nil {
		opts.AdminToken = f.appConfig.Store.AdminToken
		opts.ExposeErrorDetails = f.appConfig.Store.ExposeErrorDetails
	}

	return opts
}

func (f *DefaultWaitlistServiceFactory) CreateController(service WaitlistService) *router.RESTController {
	return NewWaitlistController(service, f.ControllerOptions())
}
