// Package sqlite implements the Store over an embedded SQLite database.
// Every collection is a two-column table of key and raw JSON value; the
// schema version lives in PRAGMA user_version.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/internal/schema"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// DatabaseFile is the name of the database file inside the data directory.
const DatabaseFile = "focusflow.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite. Readers share the lock;
// writers and lifecycle changes hold it exclusively.
type Backend struct {
	mu      sync.RWMutex
	db      *sql.DB
	dataDir string
	log     logger.Logger
}

// NewBackend creates a closed SQLite backend. Call Open to connect.
func NewBackend(log logger.Logger) *Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{log: log.With(logger.String("backend", types.BackendSQLite))}
}

// Open creates the data directory and database file if needed and upgrades
// the schema. Open on an open backend returns nil.
func (b *Backend) Open(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return nil
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("%w: sqlite engine cannot serve %q", types.ErrBackendUnknown, config.Backend)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// A single connection keeps PRAGMA state and transactions on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("configuring %s: %w", dbPath, err)
	}

	if err := b.migrate(ctx, db, dataDir); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.dataDir = dataDir
	b.log.Debug("store opened", logger.String("path", dbPath))
	return nil
}

// Close releases the database handle. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// SchemaVersion returns the persisted schema version.
func (b *Backend) SchemaVersion(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return 0, types.ErrStoreClosed
	}
	return userVersion(ctx, b.db)
}

// migrate runs every pending schema step in its own transaction together
// with the user_version bump, so a failed step leaves the previous version.
func (b *Backend) migrate(ctx context.Context, db *sql.DB, dataDir string) error {
	version, err := userVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > schema.CurrentVersion {
		b.log.Warn("database schema is newer than this build",
			logger.Int("version", version),
			logger.Int("supported", schema.CurrentVersion))
		return nil
	}

	env := schema.Env{DataDir: dataDir, Logger: b.log}
	for _, step := range schema.Pending(version) {
		if err := runStep(ctx, db, step, env); err != nil {
			return fmt.Errorf("schema version %d: %w", step.Version, err)
		}
	}
	return nil
}

func runStep(ctx context.Context, db *sql.DB, step schema.Step, env schema.Env) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer tx.Rollback()

	if err := schema.Run(ctx, step, &schemaTx{q: tx}, env); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step.Version)); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return tx.Commit()
}

func userVersion(ctx context.Context, q querier) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
