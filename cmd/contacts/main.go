// @title			Contacts API
// @version		1.0
// @description	Contact-management backend with MongoDB and PostgreSQL stores.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/contacts/internal/app"
	"github.com/mtlprog/contacts/internal/config"
	"github.com/mtlprog/contacts/internal/logger"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}

	if err := newApp(runServe).Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// serveFunc starts the server with the resolved configuration.
type serveFunc func(c *cli.Context, cfg config.Config) error

func newApp(serve serveFunc) *cli.App {
	serveAction := func(c *cli.Context) error {
		cfg, err := configFromContext(c)
		if err != nil {
			return err
		}
		return serve(c, cfg)
	}

	return &cli.App{
		Name:  "contacts",
		Usage: "Contact-management backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "mongodb-uri",
				Value:   config.DefaultMongoURI,
				Usage:   "MongoDB connection string",
				EnvVars: []string{"MONGODB_URI"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   string(config.StoreMongo),
				Usage:   "Contact store (mongo, postgres)",
				EnvVars: []string{"CONTACT_STORE"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL (postgres store)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.DurationFlag{
				Name:    "shutdown-timeout",
				Value:   config.DefaultShutdownTimeout,
				Usage:   "Graceful shutdown timeout",
				EnvVars: []string{"SHUTDOWN_TIMEOUT"},
			},
			&cli.DurationFlag{
				Name:    "connect-timeout",
				Value:   config.DefaultConnectTimeout,
				Usage:   "MongoDB connect and server selection timeout",
				EnvVars: []string{"MONGODB_CONNECT_TIMEOUT"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the web server",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "Prepare the store schema (postgres migrations or mongo indexes)",
				Action: runMigrate,
			},
		},
		Action: serveAction,
	}
}

// configFromContext resolves flags and environment into a validated Config.
// A blank MongoDB URI counts as unset.
func configFromContext(c *cli.Context) (config.Config, error) {
	mongoURI := c.String("mongodb-uri")
	mongoURISet := c.IsSet("mongodb-uri")
	if strings.TrimSpace(mongoURI) == "" {
		mongoURI = config.DefaultMongoURI
		mongoURISet = false
	}

	cfg := config.Config{
		Port:            c.Int("port"),
		MongoURI:        mongoURI,
		MongoURISet:     mongoURISet,
		Store:           config.Store(c.String("store")),
		DatabaseURL:     c.String("database-url"),
		LogLevel:        c.String("log-level"),
		ShutdownTimeout: c.Duration("shutdown-timeout"),
		ConnectTimeout:  c.Duration("connect-timeout"),
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(c *cli.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := a.Listen(); err != nil {
		a.Close(context.Background())
		return err
	}

	return a.Run(ctx)
}

func runMigrate(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	return app.Migrate(c.Context, cfg)
}
