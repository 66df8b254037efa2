package domain

import (
	"context"
	"time"

	"github.com/akeren/aimaker-waitlist/config"
	"github.com/akeren/aimaker-waitlist/domain/monitoring"
	"github.com/akeren/aimaker-waitlist/domain/site"
	"github.com/akeren/aimaker-waitlist/domain/waitlist"
)

// SetupCoreDomain builds the waitlist service for the configured backend and
// mounts every controller that depends on it.
func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	waitlistFactory := waitlist.NewWaitlistServiceFactory(appConfig)

	service, err := waitlistFactory.CreateService(ctx)
	if err != nil {
		return err
	}

	opts := waitlistFactory.ControllerOptions()

	rs := appConfig.RouterService
	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig).CreateController(service))
	rs.MountController(waitlist.NewWaitlistController(service, opts))
	rs.MountController(site.NewSiteController(service, site.PageOptions{
		AdminToken:         opts.AdminToken,
		ExposeErrorDetails: opts.ExposeErrorDetails,
	}))

	appConfig.Logger.Info("Core domain mounted", "backend", service.Backend())
	return nil
}
