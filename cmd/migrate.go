package main

import (
	"context"
	"database/sql"
	root "densitymap"
	"densitymap/internal/config"
	"densitymap/pkg/logger"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateSchema applies the embedded goose migrations creating the zoning tables.
func migrateSchema(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(root.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("could not migrate pgsql: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("could not read schema version: %w", err)
	}
	logger.Info(ctx, "schema migrated", zap.Int64("version", version))

	return nil
}

// migrateRiver brings the job queue tables to the latest River version.
func migrateRiver(ctx context.Context, db *sql.DB) error {
	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return fmt.Errorf("could not create river queue migrator: %w", err)
	}
	versions := migrator.AllVersions()
	latest := versions[len(versions)-1].Version
	current := 0
	existing, err := migrator.ExistingVersions(ctx)
	if err != nil {
		return fmt.Errorf("could not get existing river queue migrations: %w", err)
	}
	if len(existing) > 0 {
		current = existing[len(existing)-1].Version
	}
	if latest > current {
		_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{
			TargetVersion: latest,
		})
		if err != nil {
			return fmt.Errorf("could not migrate river queue database: %w", err)
		}
	}
	logger.Info(ctx, "river queue migrated", zap.Int("from", current), zap.Int("to", latest))

	return nil
}

// migrateCommand constructs the 'migrate' subcommand that applies the zoning
// schema and the River job tables to the latest version.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			db, ok := strg.DB.(*sql.DB)
			if !ok {
				logger.Fatal(ctx, "postgres storage is not backed by *sql.DB")
			}
			if err := migrateSchema(ctx, db); err != nil {
				logger.Fatal(ctx, "could not migrate schema", zap.Error(err))
			}
			if err := migrateRiver(ctx, db); err != nil {
				logger.Fatal(ctx, "could not migrate river queue", zap.Error(err))
			}
		},
	}

	return cmd
}
