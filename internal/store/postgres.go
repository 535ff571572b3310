package store

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBackend stores documents as rows of the documents table
type PostgresBackend struct {
	conn *sql.DB
}

func NewPostgresBackend(conn *sql.DB) *PostgresBackend {
	return &PostgresBackend{conn: conn}
}

func (p *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := p.conn.QueryRowContext(ctx, "SELECT body FROM documents WHERE name = $1", name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (p *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	_, err := p.conn.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		name, data)
	return err
}

// Close is a no-op; the connection belongs to database.DB
func (p *PostgresBackend) Close() error {
	return nil
}
