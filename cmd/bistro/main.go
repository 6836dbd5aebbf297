package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/config"
	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/seed"
	"github.com/mmynk/bistro/internal/server"
	"github.com/mmynk/bistro/internal/storage"
	"github.com/mmynk/bistro/internal/storage/memory"
	"github.com/mmynk/bistro/internal/storage/postgres"
	"github.com/mmynk/bistro/internal/storage/sqlite"
	"github.com/mmynk/bistro/pkg/logging"
)

func main() {
	app := &cli.App{
		Name:  "bistro",
		Usage: "restaurant ordering backend",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the Connect API server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "load the demo menu into an empty catalog",
				Action: seedMenu,
			},
			{
				Name:  "grant-role",
				Usage: "set the role of an existing account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "role", Required: true, Usage: "customer, staff or admin"},
				},
				Action: grantRole,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the logger.
func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.Setup(cfg.LogLevel, cfg.LogFormat), nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Storage initialized", "driver", cfg.StorageDriver)
		return store, nil
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; data is lost on exit")
		return memory.New(), nil
	default:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Storage initialized", "driver", cfg.StorageDriver, "database", cfg.SQLitePath)
		return store, nil
	}
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	store, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if cfg.SeedDemoMenu {
		if _, err := seed.Menu(c.Context, store, logger); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(server.Options{
		Store:      store,
		Pricing:    cfg.Pricing(),
		JWT:        auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Logger:     logger,
		Registry:   reg,
		CORSOrigin: cfg.CORSOrigin,
	})
	return srv.Run(c.Context, cfg.HTTPAddr, cfg.ShutdownTimeout)
}

func migrate(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.StorageDriver == config.DriverMemory {
		return fmt.Errorf("nothing to migrate for %s storage", cfg.StorageDriver)
	}
	// Opening a store applies pending migrations.
	store, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	logger.Info("Migrations applied", "driver", cfg.StorageDriver)
	return store.Close()
}

func seedMenu(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	store, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	_, err = seed.Menu(c.Context, store, logger)
	return err
}

func grantRole(c *cli.Context) error {
	role, err := models.ParseRole(c.String("role"))
	if err != nil {
		return err
	}
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	store, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	email := strings.ToLower(strings.TrimSpace(c.String("email")))
	user, err := store.GetUserByEmail(c.Context, email)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", email, err)
	}
	if err := store.SetUserRole(c.Context, user.ID, role); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	logger.Info("Role granted", "user_id", user.ID, "email", user.Email, "from", user.Role, "to", role)
	return nil
}
