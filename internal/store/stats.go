package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carenshare/carenshare/internal/model"
)

// GetStats computes the admin dashboard counters. Every call re-queries;
// there is deliberately no caching in front of these.
func GetStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	stats := &model.Stats{
		Items:    map[string]int64{},
		Requests: map[string]int64{},
	}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN role = 'admin' THEN 1 ELSE 0 END), 0)
		 FROM users WHERE deleted_at IS NULL`,
	).Scan(&stats.TotalUsers, &stats.AdminUsers)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	stats.RegularUsers = stats.TotalUsers - stats.AdminUsers

	if err := countByStatus(ctx, db, `SELECT status, COUNT(*) FROM items GROUP BY status`, stats.Items); err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	if err := countByStatus(ctx, db, `SELECT status, COUNT(*) FROM requests GROUP BY status`, stats.Requests); err != nil {
		return nil, fmt.Errorf("counting requests: %w", err)
	}

	return stats, nil
}

func countByStatus(ctx context.Context, db *sql.DB, query string, out map[string]int64) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return err
		}
		out[status] = count
	}
	return rows.Err()
}
