// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ottawafunsports/ofsl/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqliteOptions are added to every DSN that does not set them. Lineup edits
// read and rewrite a tier in one transaction, so transactions take the write
// lock when they begin and waiting writers retry instead of failing fast.
var sqliteOptions = []struct{ key, value string }{
	{"_fk", "1"},
	{"_busy_timeout", "5000"},
	{"_txlock", "immediate"},
}

type DB struct {
	*sql.DB
	Queries *Queries
}

// New opens the SQLite database at dataSourceName and brings its schema up to
// date with the embedded migrations.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", withSQLiteOptions(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrateUp(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &DB{DB: sqlDB, Queries: NewQueries(sqlDB)}, nil
}

// NewFromConfig opens the configured database, creating its directory first.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	if cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return New(cfg.Database.Filename)
}

func withSQLiteOptions(dataSourceName string) string {
	separator := "?"
	if strings.Contains(dataSourceName, "?") {
		separator = "&"
	}
	for _, option := range sqliteOptions {
		if strings.Contains(dataSourceName, option.key+"=") {
			continue
		}
		dataSourceName += separator + option.key + "=" + option.value
		separator = "&"
	}
	return dataSourceName
}

func migrateUp(sqlDB *sql.DB) error {
	driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// WithTx returns a DB whose Queries run inside tx.
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{DB: db.DB, Queries: NewQueries(tx)}
}

func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// RunInTx commits when fn returns nil and rolls back otherwise. fn's error is
// returned as is so callers can inspect it with errors.As.
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) (err error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err != nil {
			err = fmt.Errorf("rollback: %v (original error: %w)", rbErr, err)
		}
	}()

	if err := fn(db.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
