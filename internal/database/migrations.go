package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// contactMigrations returns the embedded contacts schema migrations.
func contactMigrations() (fs.FS, error) {
	return fs.Sub(embedMigrations, "migrations")
}

// RunMigrations brings the contacts schema up to date and logs each applied
// migration and the resulting schema version.
func RunMigrations(ctx context.Context, db *Postgres) error {
	migrations, err := contactMigrations()
	if err != nil {
		return fmt.Errorf("open contact migrations: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool())
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("create migration provider: %w", err)
	}
	defer provider.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply contact migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("contact migration applied",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration,
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("get contacts schema version: %w", err)
	}

	slog.Info("contacts schema up to date", "version", version, "applied", len(results))

	return nil
}
