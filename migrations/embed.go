// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the migrate command, and server bootstrap.
// Each supported database driver has its own directory of migrations.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
// Use ForDriver to get the sub-tree for one dialect instead of relying on
// a filesystem path at runtime.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Driver names accepted by ForDriver and NewProvider.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ForDriver returns the goose dialect and migration files for driver.
func ForDriver(driver string) (goose.Dialect, fs.FS, error) {
	var dialect goose.Dialect
	switch driver {
	case DriverPostgres:
		dialect = goose.DialectPostgres
	case DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return "", nil, fmt.Errorf("migrations: unsupported driver %q", driver)
	}
	sub, err := fs.Sub(FS, driver)
	if err != nil {
		return "", nil, fmt.Errorf("migrations: %w", err)
	}
	return dialect, sub, nil
}

// NewProvider builds a goose provider for db using the migrations of driver.
func NewProvider(driver string, db *sql.DB) (*goose.Provider, error) {
	dialect, fsys, err := ForDriver(driver)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: create goose provider: %w", err)
	}
	return provider, nil
}
