package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"communitybot/internal/ledger"
	"communitybot/internal/models"
)

// Repository is the Postgres implementation of the points ledger
type Repository struct {
	db  *DB
	now func() time.Time
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Balance returns the member's points, 0 when unknown
func (r *Repository) Balance(ctx context.Context, memberID string) (int64, error) {
	var total int64
	err := r.db.conn.QueryRowContext(ctx,
		"SELECT total_points FROM points WHERE member_id = $1",
		memberID).Scan(&total)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return total, nil
}

// Award adds delta points in a single statement, so concurrent awards never
// lose an update
func (r *Repository) Award(ctx context.Context, memberID, displayName string, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, ledger.ErrInvalidDelta
	}
	var total int64
	err := r.db.conn.QueryRowContext(ctx, `
		INSERT INTO points (member_id, display_name, total_points, last_update)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_id) DO UPDATE SET
			total_points = points.total_points + EXCLUDED.total_points,
			display_name = EXCLUDED.display_name,
			last_update = EXCLUDED.last_update
		RETURNING total_points`,
		memberID, displayName, delta, r.now()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to award points: %w", err)
	}
	return total, nil
}

// Top gets the members with the most points
func (r *Repository) Top(ctx context.Context, limit int) ([]models.PointsRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		"SELECT member_id, display_name, total_points, last_update FROM points ORDER BY total_points DESC, member_id LIMIT $1",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top members: %w", err)
	}
	defer rows.Close()

	var records []models.PointsRecord
	for rows.Next() {
		var rec models.PointsRecord
		if err := rows.Scan(&rec.MemberID, &rec.DisplayName, &rec.Points, &rec.LastUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan points row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ ledger.Ledger = (*Repository)(nil)
