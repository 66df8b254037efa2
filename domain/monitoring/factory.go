package monitoring

import (
	"strings"

	"github.com/akeren/aimaker-waitlist/config"
	"github.com/akeren/aimaker-waitlist/config/router"
)

type MonitoringControllerFactory interface {
	CreateController(storage Storage) *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	appConfig *config.ApplicationConfig
}

func NewMonitoringControllerFactory(appConfig *config.ApplicationConfig) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{appConfig: appConfig}
}

func (f *DefaultMonitoringControllerFactory) CreateController(storage Storage) *router.RESTController {
	deps := Dependencies{
		DB:      f.appConfig.DB,
		Storage: storage,
		Logger:  f.appConfig.Logger,
		AppEnv:  config.GetAppEnv(),
		HasDatabaseURL: strings.TrimSpace(config.GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")) != "" ||
			strings.TrimSpace(config.GetValueFromEnvironmentVariable("POSTGRES_HOST", "")) != "",
	}

	// A nil config.Cache must stay a nil interface here.
	if f.appConfig.Cache != nil {
		deps.Cache = f.appConfig.Cache
	}

	return NewMonitoringController(deps)
}
