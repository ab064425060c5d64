// Package sqlite owns the process-wide SQLite handle and its schema.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/wtwr/internal/infra/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds configuration for the SQLite database.
type Config struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" envDefault:"var/storage/wtwr.db"`

	// BusyTimeout is how long a connection waits on a locked database
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" envDefault:"5s"`
}

// DB is a migrated SQLite database shared by the repositories.
type DB struct {
	*sql.DB

	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

// Open connects to the database at cfg.DatabasePath, creating its directory
// if needed, and applies all pending migrations.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	log := logging.GetLogger("repo.sqlite").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &DB{
		DB:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func dsn(cfg Config) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	query.Add("_pragma", "journal_mode(WAL)")

	return "file:" + cfg.DatabasePath + "?" + query.Encode()
}

func migrate(ctx context.Context, db *sql.DB, log logging.Logger) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("up: %w", err)
	}

	for _, r := range results {
		log.DebugContext(ctx, "migration applied",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}

	return nil
}

// WithWriteTx runs fn in a transaction while holding the write lock.
// The transaction is committed if fn returns nil and rolled back otherwise.
func (db *DB) WithWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()

	//nolint:exhaustruct
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.ErrorContext(ctx, "rollback failed", "error", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a SQLite uniqueness or primary-key
// constraint failure.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}

	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

// IsForeignKeyViolation reports whether err is a SQLite foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var liteErr *sqlite.Error

	return errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

// Close closes the underlying database.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
