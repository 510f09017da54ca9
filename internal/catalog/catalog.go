package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/chemcomp/internal/periodic"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added species_key column with index
const currentSchemaVersion = 1

// Catalog is a durable label→composition index.
type Catalog struct {
	db       *sql.DB
	registry periodic.Registry
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRegistry validates stored compositions against r on read and write.
func WithRegistry(r periodic.Registry) Option {
	return func(c *Catalog) {
		c.registry = r
	}
}

// WithLogger sets the logger used for write and migration events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = l
	}
}

// Open creates or opens a catalog database at path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &Catalog{
		db:       db,
		registry: periodic.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := c.applySchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func (c *Catalog) applySchema() error {
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return c.runMigrations(context.Background())
}

// runMigrations applies incremental schema migrations based on user_version.
func (c *Catalog) runMigrations(ctx context.Context) error {
	var version int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, c.db); err != nil {
			return err
		}
		c.logger.Info("catalog migrated", "from", version, "to", 1)
	}

	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// migrateToV1 adds the species_key column used by FindBySpeciesKey.
func migrateToV1(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`ALTER TABLE compositions ADD COLUMN species_key TEXT NOT NULL DEFAULT ''`,
		`CREATE INDEX IF NOT EXISTS idx_compositions_species_key ON compositions(species_key)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// schemaVersion returns PRAGMA user_version. Used for testing.
func (c *Catalog) schemaVersion() (int, error) {
	var v int
	err := c.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}
