// Package sqldb stores the group list and run history through sqlx, on SQLite by default
// and on PostgreSQL when configured with a postgres:// URL.
package sqldb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"randalloc/internal/config"
	"randalloc/internal/errors"
	"randalloc/internal/migration"
)

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// SQLiteDSN appends the connection pragmas to a sqlite path or file: URL,
// keeping any query parameters it already carries
func SQLiteDSN(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
		if strings.HasSuffix(url, "?") || strings.HasSuffix(url, "&") {
			sep = ""
		}
	}
	return url + sep + sqlitePragmas
}

// sqlitePath strips a file: scheme and query parameters, leaving the database file path
func sqlitePath(url string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(url, "file:"), "?")
	return path
}

// Open connects to the configured database and applies migrations
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.URL
	if cfg.Driver == config.DriverSQLite {
		if dir := filepath.Dir(sqlitePath(cfg.URL)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.IOError("failed to create database directory", err)
			}
		}
		dsn = SQLiteDSN(cfg.URL)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to open database", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// One writer; the CLI never needs more.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s database", cfg.Driver), err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
