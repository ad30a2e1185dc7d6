// Package migration applies the embedded SQL schema to PostgreSQL with golang-migrate.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"userapi/internal/config"
	"userapi/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Up runs every pending migration. It opens its own connection from the
// migration URL so closing the migrator never touches the application pool.
func Up(c config.DatabaseConfig, logger *slog.Logger) error {
	start := time.Now()
	log := logger.With(
		slog.String("component", "database"),
		slog.String("db_host", c.Host),
	)
	log.Info("db_migration_start")

	fail := func(err error) error {
		log.Error("db_migration_failed",
			slog.String("error_message", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return err
	}

	dbURL, err := database.BuildMigrationURL(c)
	if err != nil {
		return fail(err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fail(fmt.Errorf("open migration source: %w", err))
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fail(fmt.Errorf("create migrator: %w", err))
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn("db_migration_close", slog.Any("source_error", srcErr), slog.Any("db_error", dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("db_migration_skip",
				slog.String("detail", "schema up to date"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return nil
		}
		return fail(fmt.Errorf("apply migrations: %w", err))
	}

	version, dirty, _ := m.Version()
	log.Info("db_migration_success",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
