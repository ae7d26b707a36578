package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"zentra/internal/domain"
)

// ViewEventRepositoryPG implements domain.ViewEventRepository backed by PostgreSQL.
type ViewEventRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewViewEventRepository creates a new ViewEventRepositoryPG.
func NewViewEventRepository(pool *pgxpool.Pool) *ViewEventRepositoryPG {
	return &ViewEventRepositoryPG{pool: pool}
}

// Record inserts one view event.
func (r *ViewEventRepositoryPG) Record(ctx context.Context, event domain.AppViewEvent) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO app_view_events (app_id, country, viewed_at) VALUES ($1, $2, $3);
`, event.AppID, event.Country, event.ViewedAt)
	return err
}

// CountryBreakdown aggregates view counts per country for one app.
func (r *ViewEventRepositoryPG) CountryBreakdown(ctx context.Context, appID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
SELECT country, COUNT(*) FROM app_view_events WHERE app_id = $1 GROUP BY country;
`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var country string
		var n int
		if err := rows.Scan(&country, &n); err != nil {
			return nil, err
		}
		breakdown[country] = n
	}
	return breakdown, rows.Err()
}

var _ domain.ViewEventRepository = (*ViewEventRepositoryPG)(nil)
