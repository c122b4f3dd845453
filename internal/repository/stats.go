package repository

import (
	"context"
	"fmt"

	"github.com/untibullet/hackathon-platform/internal/models"
)

// GetAdminStats собирает сводную статистику платформы
func (r *Repository) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{
		IdeasByStatus: make(map[string]int64),
	}

	query := `
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM ideas),
            (SELECT COUNT(*) FROM applications),
            (SELECT COUNT(*) FROM teams),
            (SELECT COUNT(*) FROM works)
    `
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Users, &stats.Ideas, &stats.Applications, &stats.Teams, &stats.Works,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform counters: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM ideas GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get ideas by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status counter: %w", err)
		}
		stats.IdeasByStatus[status] = count
	}

	return stats, rows.Err()
}
