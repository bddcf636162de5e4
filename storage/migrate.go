package storage

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the kv schema of a SQL backend up to date. target is a
// file path for sqlite and a connection URL for postgres.
func Migrate(backend, target string) error {
	var dir, dbURL string
	switch backend {
	case BackendSQLite:
		dir, dbURL = "migrations/sqlite", "sqlite3://"+target
	case BackendPostgres:
		dir, dbURL = "migrations/postgres", pgxMigrateURL(target)
	default:
		return fmt.Errorf("%w: %q has no migrations", ErrUnknownBackend, backend)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", backend, err)
	}
	return nil
}

// pgxMigrateURL rewrites a postgres URL to the scheme the pgx/v5 migrate
// driver registers.
func pgxMigrateURL(u string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(u, prefix) {
			return "pgx5://" + strings.TrimPrefix(u, prefix)
		}
	}
	return u
}
