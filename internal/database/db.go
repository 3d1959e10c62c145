// Package database opens the backing relational store and applies the
// schema. Two drivers are supported: MySQL for deployments and the pure
// Go SQLite driver for local runs and tests. Both are accessed through
// database/sql with portable `?` placeholders; the few statements that
// differ per dialect live behind the DB wrapper.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported driver names for Config.Driver.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config carries the connection parameters for Open. For MySQL the
// User/Pass/Host/Port/Name fields are used; for SQLite only Path.
type Config struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string // sqlite database file; ":memory:" is allowed
}

// DB wraps *sql.DB with the driver name so repositories can pick the
// correct syntax for the handful of dialect-specific statements.
type DB struct {
	*sql.DB
	driver string
}

// Driver returns the driver name this handle was opened with.
func (d *DB) Driver() string { return d.driver }

// InsertIgnore returns the dialect's skip-duplicate INSERT prefix. Rows
// that would violate a unique constraint are silently dropped; the
// statement's RowsAffected reports how many rows were actually written.
func (d *DB) InsertIgnore() string {
	if d.driver == DriverSQLite {
		return "INSERT OR IGNORE INTO"
	}
	return "INSERT IGNORE INTO"
}

// Open connects to the configured store, verifies the connection and
// applies the schema. The returned handle owns a connection pool and
// should be closed on shutdown.
func Open(cfg Config) (*DB, error) {
	switch cfg.Driver {
	case DriverMySQL, "":
		return openMySQL(cfg)
	case DriverSQLite:
		return openSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.Driver)
	}
}

func openMySQL(cfg Config) (*DB, error) {
	auth := cfg.User
	if cfg.Pass != "" {
		auth = fmt.Sprintf("%s:%s", cfg.User, cfg.Pass)
	}
	// Timestamps are stored as Unix seconds, but loc=UTC keeps any
	// incidental DATETIME comparisons consistent.
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&loc=UTC",
		auth, cfg.Host, cfg.Port, cfg.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	h := &DB{DB: db, driver: DriverMySQL}
	if err := migrate(h); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}
	return h, nil
}

func openSQLite(path string) (*DB, error) {
	if path == "" {
		path = "data/checkin.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("database: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	// Concurrent check-in attempts serialize on the write lock instead of
	// surfacing SQLITE_BUSY to callers.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	// SQLite allows one writer at a time; a single pooled connection
	// serializes transactions instead of letting deferred ones deadlock.
	db.SetMaxOpenConns(1)

	h := &DB{DB: db, driver: DriverSQLite}
	if err := migrate(h); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: migrate: %w", err)
	}
	return h, nil
}

// IsDuplicate reports whether err is a unique-constraint violation from
// either supported driver. The occupancy engine leans on this: when two
// concurrent check-ins race, the unique index on open check-ins rejects
// the loser and the rejection is recognised here.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
