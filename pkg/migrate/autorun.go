package migrate

import (
	"context"
	"fmt"

	"github.com/lojinha-labs/storefront-backend/pkg/config"
	"github.com/lojinha-labs/storefront-backend/pkg/db"
	"github.com/lojinha-labs/storefront-backend/pkg/db/models"
	"github.com/lojinha-labs/storefront-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date automatically when the app runs in
// dev mode with the auto-migrate flag enabled. SQLite (the local dev backend)
// uses gorm's AutoMigrate; Postgres runs the goose migrations.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.FeatureFlags.UseSQLite {
		ctx = logg.WithField(ctx, "backend", "sqlite")
		logg.Info(ctx, "auto-migrating schema (dev sqlite)")
		if err := client.DB().WithContext(ctx).AutoMigrate(&models.KVEntry{}); err != nil {
			return fmt.Errorf("auto-migrating sqlite schema: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, DialectPostgres, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
