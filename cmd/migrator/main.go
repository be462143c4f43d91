package main

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/fastprodman/mmog-microtx/internal/infra/logging"
	"github.com/fastprodman/mmog-microtx/pkg/envconf"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:embed migrations/*.sql
var baseFS embed.FS

//go:embed test_data/*.sql
var devFS embed.FS

const (
	schemaTable = "schema_migrations"
	seedTable   = "seed_migrations"
)

type migratorConfig struct {
	DSN      string        `env:"DATABASE_URL,required"`
	LogLevel zapcore.Level `env:"APP_LOG_LEVEL" envDefault:"info"`
	AppEnv   string        `env:"APP_ENV"       envDefault:"PROD"`
}

func main() {
	cfg := new(migratorConfig)

	err := envconf.Load(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.SetupJSON("mmog-microtx-migrator", cfg.LogLevel)

	err = migrateAll(cfg, log)
	if err != nil {
		log.Error("migration run failed", zap.Error(err))
		logging.Sync(log)
		os.Exit(1)
	}

	log.Info("migration run finished successfully")
	logging.Sync(log)
}

func migrateAll(cfg *migratorConfig, log *zap.Logger) error {
	err := runMigrations(cfg.DSN, baseFS, "migrations", schemaTable)
	if err != nil {
		return fmt.Errorf("base migrations failed: %w", err)
	}

	log.Info("base migrations applied")

	// Seed rows live in their own version table so their numbering never
	// collides with the schema's.
	if cfg.AppEnv == "DEV" {
		err = runMigrations(cfg.DSN, devFS, "test_data", seedTable)
		if err != nil {
			return fmt.Errorf("dev seed migrations failed: %w", err)
		}

		log.Info("dev seed migrations applied")
	}

	return nil
}

// runMigrations uses a pool of its own: closing the migrate instance closes
// the database it was handed.
func runMigrations(dsn string, fsys embed.FS, dir, table string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("ping db: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init postgres driver: %w", err)
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migrate instance: %w", err)
	}
	//nolint:errcheck
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}
