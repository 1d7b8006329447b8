// pkg/database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"

	_ "modernc.org/sqlite"
)

// DriverName is the registered database/sql driver.
const DriverName = "sqlite"

// Connection defaults. SQLite is a single-writer store, so the pool is kept
// at one open connection; concurrent writers queue behind it instead of
// hitting SQLITE_BUSY.
const (
	DefaultBusyTimeout  = 5 * time.Second
	DefaultMaxOpenConns = 1
)

type Config struct {
	// Path is the database file path, or ":memory:" for tests.
	Path string

	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig returns a database configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:         "swaad.db",
		BusyTimeout:  DefaultBusyTimeout,
		MaxOpenConns: DefaultMaxOpenConns,
	}
}

type DB struct {
	*sql.DB
	logger *logger.Logger
}

// NewConnection opens the SQLite database, applies pragmas and migrations,
// and seeds the menu catalog when it is empty.
func NewConnection(config Config, log *logger.Logger) (*DB, error) {
	log.Info("Opening database", "path", config.Path)

	db, err := sql.Open(DriverName, config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = DefaultMaxOpenConns
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	if config.BusyTimeout <= 0 {
		config.BusyTimeout = DefaultBusyTimeout
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	if err := SeedMenu(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed menu catalog: %w", err)
	}

	log.Info("Database ready", "path", config.Path)
	return &DB{DB: db, logger: log.WithComponent("database")}, nil
}

// HealthCheck verifies the connection is usable.
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// IsBusy reports whether err is a SQLite busy/locked condition, which is
// retryable rather than fatal.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic. A busy/locked failure is retried once before being
// surfaced to the caller.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	run := func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
		}()
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}

	err := run()
	if IsBusy(err) {
		db.logger.Warn("Transaction hit busy database, retrying once", "error", err)
		err = run()
	}
	return err
}
