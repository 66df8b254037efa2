package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akeren/aimaker-waitlist/config"
	"github.com/akeren/aimaker-waitlist/domain/waitlist"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/akeren/aimaker-waitlist/internal/models"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/akeren/aimaker-waitlist/pkg/migrations"
	"github.com/akeren/aimaker-waitlist/pkg/utils"
)

type serviceLoader func(logger *log.Logger) (waitlist.WaitlistService, func(), error)

type commandLine struct {
	logger      *log.Logger
	stdout      io.Writer
	stderr      io.Writer
	loadService serviceLoader
	migrate     func(logger *log.Logger, down bool) error
}

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	cmd := &commandLine{
		logger:      logger,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		loadService: loadService,
		migrate:     runMigrate,
	}
	os.Exit(cmd.run(os.Args[1:]))
}

// run dispatches a subcommand and returns the process exit code.
func (c *commandLine) run(args []string) int {
	if len(args) == 0 {
		c.printUsage()
		return 1
	}

	switch args[0] {
	case "migrate":
		down := len(args) > 1 && strings.EqualFold(args[1], "down")
		if err := c.migrate(c.logger, down); err != nil {
			c.logger.Error("Database migration failed", "error", err.Error())
			return 1
		}
		return 0

	case "list":
		if err := c.withService(c.list); err != nil {
			c.logger.Error("Failed to list waitlist", "error", err.Error())
			fmt.Fprintln(c.stderr, apperrors.GetHumanReadableMessage(err))
			return 1
		}
		return 0

	case "add":
		if len(args) < 2 {
			fmt.Fprintln(c.stderr, "usage: cli add <email>")
			return 1
		}
		err := c.withService(func(ctx context.Context, service waitlist.WaitlistService) error {
			return c.add(ctx, service, args[1])
		})
		if err != nil {
			fmt.Fprintln(c.stderr, apperrors.GetHumanReadableMessage(err))
			return 1
		}
		return 0

	case "help", "-h", "--help":
		c.printUsage()
		return 0

	default:
		fmt.Fprintf(c.stderr, "unknown command: %s\n", args[0])
		c.printUsage()
		return 1
	}
}

func (c *commandLine) withService(fn func(ctx context.Context, service waitlist.WaitlistService) error) error {
	service, cleanup, err := c.loadService(c.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return fn(ctx, service)
}

func (c *commandLine) list(ctx context.Context, service waitlist.WaitlistService) error {
	response, err := service.List(ctx)
	if err != nil {
		return err
	}

	for _, email := range response.Emails {
		fmt.Fprintln(c.stdout, email)
	}
	fmt.Fprintf(c.stdout, "Total: %d emails\n", response.Count)
	return nil
}

func (c *commandLine) add(ctx context.Context, service waitlist.WaitlistService, email string) error {
	state, response, err := service.Join(ctx, email)
	if err != nil {
		c.logger.Info("Submission finished", "state", state.String())
		return err
	}

	fmt.Fprintf(c.stdout, "%s joined at %s\n", response.Email, response.JoinedAt)
	return nil
}

func (c *commandLine) printUsage() {
	fmt.Fprintln(c.stdout, "Usage: cli <command>")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Commands:")
	fmt.Fprintln(c.stdout, "  migrate [down]   Apply SQL migrations (or roll back the latest one) and exit")
	fmt.Fprintln(c.stdout, "  list             Print every waitlist email in join order")
	fmt.Fprintln(c.stdout, "  add <email>      Add an email to the waitlist using the configured backend")
	fmt.Fprintln(c.stdout, "  help             Show this message")
}

func runMigrate(logger *log.Logger, down bool) error {
	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	// SQL migrations target PostgreSQL; SQLite is migrated from the models.
	if db.Dialector.Name() == config.DBDriverSQLite {
		if down {
			return db.Migrator().DropTable(models.ModelRegistry...)
		}
		return config.AutoMigrate(logger, db, models.ModelRegistry...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance: %w", err)
	}

	migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := migrations.Config{Dir: migrationsDir, Logger: logger}
	if down {
		return migrations.Down(ctx, sqlDB, cfg)
	}
	return migrations.Up(ctx, sqlDB, cfg)
}

func loadService(logger *log.Logger) (waitlist.WaitlistService, func(), error) {
	appConfig, err := config.LoadApplicationConfiguration(logger, false)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	service, err := waitlist.NewWaitlistServiceFactory(appConfig).CreateService(ctx)
	if err != nil {
		appConfig.Cleanup()
		return nil, nil, err
	}
	return service, appConfig.Cleanup, nil
}
