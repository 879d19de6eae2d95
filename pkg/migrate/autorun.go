package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// MaybeRunDev prepares the schema when running in dev with AutoMigrate enabled:
// goose migrations on Postgres, model auto-migration on sqlite. Reference data
// is seeded either way.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	dialect := client.DB().Dialector.Name()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir, "dialect": dialect})

	if dialect == "sqlite" {
		logg.Info(ctx, "auto-migrating models (dev sqlite)")
		if err := AutoMigrate(ctx, client.DB()); err != nil {
			return err
		}
	} else {
		sqlDB, err := client.SQL()
		if err != nil {
			return fmt.Errorf("extracting sql.DB: %w", err)
		}
		logg.Info(ctx, "running Goose migrations (dev auto-run)")
		if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
			return fmt.Errorf("running goose up: %w", err)
		}
	}

	seeded, err := SeedISOCountries(ctx, client.DB())
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "iso_countries_seeded", seeded), "migrations completed")
	return nil
}
