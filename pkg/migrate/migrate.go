// Package migrate runs the embedded goose migrations.
package migrate

import (
	"context"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// Up applies all pending migrations from fsys against the client's
// database.
func Up(ctx context.Context, client *db.Client, fsys fs.FS, dialect string) error {
	provider, err := newProvider(client, fsys, dialect)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "apply migrations")
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, client *db.Client, fsys fs.FS, dialect string) error {
	provider, err := newProvider(client, fsys, dialect)
	if err != nil {
		return err
	}
	if _, err := provider.Down(ctx); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "roll back migration")
	}
	return nil
}

// Status reports each migration and whether it has been applied.
func Status(ctx context.Context, client *db.Client, fsys fs.FS, dialect string) ([]*goose.MigrationStatus, error) {
	provider, err := newProvider(client, fsys, dialect)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "migration status")
	}
	return statuses, nil
}

func newProvider(client *db.Client, fsys fs.FS, dialect string) (*goose.Provider, error) {
	sqlDB, err := client.Gorm().DB()
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "database handle")
	}
	provider, err := goose.NewProvider(goose.Dialect(dialect), sqlDB, fsys)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "init migration provider")
	}
	return provider, nil
}

// MaybeRunDev applies migrations on boot when the auto-migrate flag is
// set. Production deploys run the migrate command explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, client *db.Client, fsys fs.FS, log *logger.Logger) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	dialect := "postgres"
	if cfg.FeatureFlags.UseSQLite {
		dialect = "sqlite3"
	}
	if err := Up(ctx, client, fsys, dialect); err != nil {
		return err
	}
	log.Info(ctx, "migrations applied")
	return nil
}
