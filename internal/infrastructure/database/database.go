package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	dirPermissions  = 0750
	filePermissions = 0600

	// openTimeout bounds the connectivity check at startup.
	openTimeout = 5 * time.Second

	connMaxIdleTime = 30 * time.Minute
)

// DB is the SQLite handle behind the zone status history store. It embeds
// sql.DB so the history repository can query it directly, and adds
// migration and health-check support on top.
type DB struct {
	*sql.DB
}

// Config mirrors the database section of config.yaml.
type Config struct {
	// Path to the SQLite file. The parent directory is created on demand.
	Path string

	// WALMode turns on write-ahead logging so status reads do not block
	// behind the recorder's inserts.
	WALMode bool

	// BusyTimeout in seconds before a locked database turns into an error.
	BusyTimeout int
}

// Open connects to the SQLite file, applying the WAL and busy-timeout
// pragmas from cfg, and verifies the connection with a ping. The pool is
// capped at a single connection since SQLite allows one writer.
func Open(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*1000,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := &DB{DB: sqlDB}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// The file may not exist until the first write, so a chmod failure
	// here is not an error.
	_ = os.Chmod(cfg.Path, filePermissions)

	return db, nil
}

// Close releases the connection. Safe to call on a zero-value DB.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to confirm the connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
