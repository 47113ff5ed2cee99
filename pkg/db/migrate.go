package db

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	schema "github.com/bcgov/restoration-tracker/db"
)

// MigrationsTable is the golang-migrate bookkeeping table.
const MigrationsTable = "restoration_schema_migrations"

// Migrator applies the versioned SQL migrations. Dir, when set, reads
// migrations from disk instead of the copies embedded in the binary.
type Migrator struct {
	URL string
	Dir string
}

// WithMigrationsTable appends the x-migrations-table parameter to a database URL.
func WithMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}

func (m Migrator) instance() (*migrate.Migrate, error) {
	if m.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	target := WithMigrationsTable(m.URL)

	if m.Dir != "" {
		zap.L().Info("running migrations from disk", zap.String("dir", m.Dir))
		return migrate.New("file://"+m.Dir, target)
	}

	migrationsFS, err := fs.Sub(schema.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", d, target)
}

// Up applies every pending migration and returns the resulting version.
func (m Migrator) Up() (uint, error) {
	mi, err := m.instance()
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = mi.Close() }()

	if err := mi.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}
	version, _, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return version, nil
}

// Down rolls back the given number of migrations.
func (m Migrator) Down(steps int) (uint, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}
	mi, err := m.instance()
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = mi.Close() }()

	if err := mi.Steps(-steps); err != nil {
		return 0, fmt.Errorf("rollback failed: %w", err)
	}
	version, _, err := mi.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return version, nil
}

// Status reports the applied version. ok is false when nothing has been applied.
func (m Migrator) Status() (version uint, dirty bool, ok bool, err error) {
	mi, err := m.instance()
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = mi.Close() }()

	version, dirty, err = mi.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// EmbeddedMigrations lists the embedded up migrations in order.
func EmbeddedMigrations() ([]string, error) {
	migrationsFS, err := fs.Sub(schema.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
