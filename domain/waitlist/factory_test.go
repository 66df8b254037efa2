package waitlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/akeren/aimaker-waitlist/config"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/pkg/constants"
	"github.com/akeren/aimaker-waitlist/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactoryTestConfig(store *config.StoreConfig) *config.ApplicationConfig {
	return &config.ApplicationConfig{
		Logger: log.NewLoggerWithJSONOutput(),
		Store:  store,
	}
}

func TestFactory_CreateRepositoryPerBackend(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]*config.ApplicationConfig{
		constants.BackendMemory: newFactoryTestConfig(&config.StoreConfig{Backend: constants.BackendMemory}),
		constants.BackendFile: newFactoryTestConfig(&config.StoreConfig{
			Backend:  constants.BackendFile,
			DataDir:  filepath.Join(dir, "data"),
			FileName: "waitlist.json",
		}),
	}

	dbConfig := newFactoryTestConfig(&config.StoreConfig{Backend: constants.BackendDatabase})
	dbConfig.DB = newSQLiteDB(t)
	cases[constants.BackendDatabase] = dbConfig

	for backend, appConfig := range cases {
		repository, err := NewWaitlistServiceFactory(appConfig).CreateRepository(context.Background())
		require.NoError(t, err, backend)
		assert.Equal(t, backend, repository.Name())
		assert.NoError(t, repository.Ping(context.Background()), backend)
	}
}

func TestFactory_MissingConnections(t *testing.T) {
	for _, backend := range []string{constants.BackendDatabase, constants.BackendRedis, constants.BackendMongo} {
		_, err := NewWaitlistServiceFactory(newFactoryTestConfig(&config.StoreConfig{Backend: backend})).
			CreateRepository(context.Background())
		assert.Error(t, err, backend)
	}
}

func TestFactory_RejectsUnknownBackendAndMissingStore(t *testing.T) {
	_, err := NewWaitlistServiceFactory(newFactoryTestConfig(&config.StoreConfig{Backend: "s3"})).
		CreateRepository(context.Background())
	assert.Error(t, err)

	_, err = NewWaitlistServiceFactory(newFactoryTestConfig(nil)).CreateRepository(context.Background())
	assert.Error(t, err)
}

func TestFactory_ControllerOptions(t *testing.T) {
	f := NewWaitlistServiceFactory(newFactoryTestConfig(&config.StoreConfig{
		Backend:            constants.BackendMemory,
		AdminToken:         "tok",
		ExposeErrorDetails: true,
	}))

	opts := f.ControllerOptions()

	assert.Equal(t, "tok", opts.AdminToken)
	assert.True(t, opts.ExposeErrorDetails)
	require.NotNil(t, opts.JoinLimiter)
	assert.IsType(t, &ratelimit.InMemoryRateLimiter{}, opts.JoinLimiter)
	requests, _ := opts.JoinLimiter.GetLimitDetails()
	assert.Equal(t, constants.JoinRateLimitRequests, requests)
}

func TestFactory_CreateService(t *testing.T) {
	service, err := NewWaitlistServiceFactory(newFactoryTestConfig(&config.StoreConfig{Backend: constants.BackendMemory})).
		CreateService(context.Background())

	require.NoError(t, err)
	assert.Equal(t, constants.BackendMemory, service.Backend())
}
