package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	// Initialize tables and run migrations
	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	db.migrateSchema()

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConnection returns the underlying database connection
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// createTables creates the necessary tables
func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS points (
			member_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			total_points BIGINT NOT NULL DEFAULT 0,
			last_update TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			body JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// seedPointsFromDocuments copies a points document imported from the JSON
// files into the points table, leaving existing rows alone
const seedPointsFromDocuments = `
	INSERT INTO points (member_id, display_name, total_points, last_update)
	SELECT key, COALESCE(value->>'username', ''), COALESCE((value->>'points')::bigint, 0),
		COALESCE((value->>'lastUpdate')::timestamptz, now())
	FROM documents, jsonb_each(body)
	WHERE name = 'points'
	ON CONFLICT (member_id) DO NOTHING`

var migrations = []string{
	seedPointsFromDocuments,
}

// migrateSchema runs the data migrations after the tables exist
func (db *DB) migrateSchema() {
	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			log.Warn().Err(err).Msg("Migration failed")
		}
	}
}
