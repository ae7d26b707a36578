package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zentra/internal/domain"
)

// AppRepositoryPG implements domain.AppRepository backed by PostgreSQL.
type AppRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAppRepository creates a new AppRepositoryPG.
func NewAppRepository(pool *pgxpool.Pool) *AppRepositoryPG {
	return &AppRepositoryPG{pool: pool}
}

const appColumns = `id, user_id, app_id, title, description, prompt, prompt_language, html_content, css_content, js_content, is_published, is_public, public_url, views, likes, shares, tags, category, generation_time_ms, custom_domain, auth_config, database_config, created_at, updated_at, last_viewed`

// Create inserts a new app record.
func (r *AppRepositoryPG) Create(ctx context.Context, app *domain.App) error {
	query := `
INSERT INTO apps (id, user_id, app_id, title, description, prompt, prompt_language,
                  html_content, css_content, js_content, is_published, is_public,
                  public_url, tags, category, generation_time_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING created_at, updated_at, last_viewed;
`
	row := r.pool.QueryRow(ctx, query,
		app.ID,
		app.UserID,
		app.AppID,
		app.Title,
		app.Description,
		app.Prompt,
		app.PromptLanguage,
		app.HTMLContent,
		app.CSSContent,
		app.JSContent,
		app.IsPublished,
		app.IsPublic,
		app.PublicURL,
		app.Tags,
		app.Category,
		app.GenerationTime,
	)
	return row.Scan(&app.CreatedAt, &app.UpdatedAt, &app.LastViewed)
}

// GetByAppID fetches an app by its artifact identifier.
func (r *AppRepositoryPG) GetByAppID(ctx context.Context, appID string) (*domain.App, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE app_id = $1`, appID)
	return scanApp(row)
}

// GetForOwner fetches an app by artifact identifier scoped to its owner.
func (r *AppRepositoryPG) GetForOwner(ctx context.Context, appID, userID string) (*domain.App, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE app_id = $1 AND user_id = $2`, appID, userID)
	return scanApp(row)
}

// ListByUser returns the user's apps newest first with the total count.
func (r *AppRepositoryPG) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.App, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM apps WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + appColumns + ` FROM apps WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps, err := collectApps(rows)
	return apps, total, err
}

// ListPublic returns published public apps, most viewed first, optionally
// filtered by category.
func (r *AppRepositoryPG) ListPublic(ctx context.Context, category domain.AppCategory, page domain.Page) ([]domain.App, int, error) {
	where := `WHERE is_published AND is_public AND ($1::text IS NULL OR category = $1)`
	cat := nullable(string(category))

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM apps `+where, cat).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + appColumns + ` FROM apps ` + where + ` ORDER BY views DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, cat, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps, err := collectApps(rows)
	return apps, total, err
}

// Update persists metadata and visibility edits.
func (r *AppRepositoryPG) Update(ctx context.Context, app *domain.App) error {
	query := `
UPDATE apps
SET title = $2, description = $3, tags = $4, category = $5, is_public = $6,
    public_url = $7, custom_domain = $8, auth_config = $9, database_config = $10,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		app.ID,
		app.Title,
		app.Description,
		app.Tags,
		app.Category,
		app.IsPublic,
		app.PublicURL,
		app.CustomDomain,
		app.AuthConfig,
		app.DatabaseConfig,
	)
	if err := row.Scan(&app.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// SetPublished flips the published flag and stores the derived public URL.
func (r *AppRepositoryPG) SetPublished(ctx context.Context, id string, published bool, publicURL *string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE apps SET is_published = $2, public_url = $3, updated_at = NOW() WHERE id = $1;
`, id, published, publicURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter and the last-viewed stamp.
func (r *AppRepositoryPG) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE apps SET views = views + 1, last_viewed = NOW() WHERE id = $1`, id)
	return err
}

// IncrementLikes bumps the like counter.
func (r *AppRepositoryPG) IncrementLikes(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE apps SET likes = likes + 1 WHERE id = $1`, id)
	return err
}

// Delete removes the app record.
func (r *AppRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ArtifactIDsByUser lists the artifact identifiers of every app the user owns.
func (r *AppRepositoryPG) ArtifactIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT app_id FROM apps WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteAllByUser removes every app the user owns and reports the count.
func (r *AppRepositoryPG) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM apps WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// StatsByUser aggregates the user's app counters.
func (r *AppRepositoryPG) StatsByUser(ctx context.Context, userID string) (*domain.AppStatsByUser, error) {
	query := `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE is_published),
  COUNT(*) FILTER (WHERE is_public),
  COALESCE(SUM(views), 0),
  COALESCE(SUM(likes), 0)
FROM apps WHERE user_id = $1;
`
	var stats domain.AppStatsByUser
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalApps,
		&stats.PublishedApps,
		&stats.PublicApps,
		&stats.TotalViews,
		&stats.TotalLikes,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminCounts aggregates platform-wide app counters.
func (r *AppRepositoryPG) AdminCounts(ctx context.Context) (*domain.AdminAppCounts, error) {
	counts := &domain.AdminAppCounts{ByCategory: make(map[domain.AppCategory]int)}
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*), COUNT(*) FILTER (WHERE is_published), COUNT(*) FILTER (WHERE is_public) FROM apps;
`).Scan(&counts.Total, &counts.Published, &counts.Public)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM apps GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var cat domain.AppCategory
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		counts.ByCategory[cat] = n
	}
	return counts, rows.Err()
}

func scanApp(row pgx.Row) (*domain.App, error) {
	var a domain.App
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AppID,
		&a.Title,
		&a.Description,
		&a.Prompt,
		&a.PromptLanguage,
		&a.HTMLContent,
		&a.CSSContent,
		&a.JSContent,
		&a.IsPublished,
		&a.IsPublic,
		&a.PublicURL,
		&a.Views,
		&a.Likes,
		&a.Shares,
		&a.Tags,
		&a.Category,
		&a.GenerationTime,
		&a.CustomDomain,
		&a.AuthConfig,
		&a.DatabaseConfig,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.LastViewed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func collectApps(rows pgx.Rows) ([]domain.App, error) {
	var apps []domain.App
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

var _ domain.AppRepository = (*AppRepositoryPG)(nil)
