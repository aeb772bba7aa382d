// Package database persists tile catalogs and generated maps in SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect *dialect
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Open connects to the database described by cfg and creates the schema.
func Open(cfg Config) (*Database, error) {
	dl, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var dsn string
	switch dl {
	case postgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dl.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dl != postgresDialect {
		// PRAGMAs are per connection, so SQLite keeps a single one
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dl.init {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database (%s): %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dl}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// OpenSQLite opens or creates the SQLite database at the given path.
func OpenSQLite(path string) (*Database, error) {
	return Open(DefaultConfig(path))
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// schemaStatements returns the CREATE statements of the store. {id}, {blob}
// and {float} are column markers expanded per dialect.
func schemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS catalogs (
			id {id},
			fingerprint TEXT UNIQUE NOT NULL,
			tile_size INTEGER NOT NULL,
			tolerance {float} NOT NULL,
			tile_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Tile images are PNG encoded; neighbors is a JSON object keyed by direction
		`CREATE TABLE IF NOT EXISTS catalog_tiles (
			catalog_id BIGINT NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
			tile_index INTEGER NOT NULL,
			image {blob} NOT NULL,
			neighbors TEXT NOT NULL DEFAULT '{}',
			PRIMARY KEY (catalog_id, tile_index)
		)`,

		`CREATE TABLE IF NOT EXISTS maps (
			id {id},
			catalog_fingerprint TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			layout TEXT NOT NULL,
			plain INTEGER NOT NULL DEFAULT 0,
			rooms TEXT NOT NULL DEFAULT '[]',
			cells TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_maps_catalog ON maps(catalog_fingerprint)`,
	}
}

// migrate creates the database schema if it doesn't exist.
func (d *Database) migrate() error {
	for _, stmt := range schemaStatements() {
		m := d.dialect.schema(stmt)
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// insert runs an INSERT and returns the new row id.
func (d *Database) insert(ex execer, query string, args ...any) (int64, error) {
	if !d.dialect.numbered {
		res, err := ex.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	err := ex.QueryRow(d.dialect.insertQuery(query), args...).Scan(&id)
	return id, err
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}
