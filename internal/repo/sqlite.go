package repo

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the pure Go "sqlite" driver for database/sql
)

// SQLiteDriverName is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriverName = "sqlite"

// OpenSQLite opens a SQLite database with foreign keys enforced.
// The pool is limited to one connection: SQLite allows a single writer, and
// a private in-memory database only lives as long as its connection.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: enable foreign keys: %w", err)
	}
	return db, nil
}

// OpenSQLiteMemory opens a fresh, uniquely named in-memory database.
// Every call gets an isolated database, which makes it suitable for tests
// and for running the server without any external dependency.
func OpenSQLiteMemory() (*sql.DB, error) {
	return OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}
