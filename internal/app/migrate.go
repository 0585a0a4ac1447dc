package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtlprog/contacts/internal/config"
	"github.com/mtlprog/contacts/internal/database"
	"github.com/mtlprog/contacts/internal/logger"
	"github.com/mtlprog/contacts/internal/repository"
)

// Migrate prepares the configured store's schema: goose migrations for
// postgres, collection indexes for mongo. Unlike New, an unreachable
// database is an error here.
func Migrate(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Store {
	case config.StorePostgres:
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close(ctx)

		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

	default:
		m, err := database.NewMongo(ctx, database.MongoOptions{
			URI:            cfg.MongoURI,
			Database:       cfg.DatabaseName(),
			ConnectTimeout: cfg.ConnectTimeout,
			Observer:       database.NewLifecycleLogger(logger.Component(nil, "mongodb")),
		})
		if err != nil {
			return fmt.Errorf("failed to create mongodb client: %w", err)
		}
		defer m.Close(ctx)

		verifyCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		if err := m.Verify(verifyCtx); err != nil {
			return err
		}

		if err := repository.NewMongoContactRepository(m.Database()).EnsureIndexes(ctx); err != nil {
			return err
		}
		slog.Info("mongodb indexes ensured", "database", cfg.DatabaseName())
	}

	return nil
}
