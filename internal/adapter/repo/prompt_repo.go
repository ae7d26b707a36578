package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zentra/internal/domain"
)

// PromptRepositoryPG implements domain.PromptRepository backed by PostgreSQL.
type PromptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a new PromptRepositoryPG.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepositoryPG {
	return &PromptRepositoryPG{pool: pool}
}

const promptColumns = `id, user_id, prompt_text, app_type, language, status, generated_app_id, error_message, error_code, error_at, word_count, tags, created_at, updated_at`

// Create inserts a new generation request in pending state.
func (r *PromptRepositoryPG) Create(ctx context.Context, prompt *domain.Prompt) error {
	query := `
INSERT INTO prompts (id, user_id, prompt_text, app_type, language, status, word_count, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at;
`
	row := r.pool.QueryRow(ctx, query,
		prompt.ID,
		prompt.UserID,
		prompt.PromptText,
		prompt.AppType,
		prompt.Language,
		prompt.Status,
		prompt.WordCount,
		prompt.Tags,
	)
	return row.Scan(&prompt.CreatedAt, &prompt.UpdatedAt)
}

// GetForUser fetches a prompt owned by userID.
func (r *PromptRepositoryPG) GetForUser(ctx context.Context, id, userID string) (*domain.Prompt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1 AND user_id = $2`, id, userID)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByUser returns the user's prompts newest first, optionally filtered by
// status and app type.
func (r *PromptRepositoryPG) ListByUser(ctx context.Context, userID string, filter domain.PromptFilter) ([]domain.Prompt, int, error) {
	where := `WHERE user_id = $1 AND ($2::text IS NULL OR status = $2) AND ($3::text IS NULL OR app_type = $3)`
	args := []any{userID, nullable(string(filter.Status)), nullable(string(filter.AppType))}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prompts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + promptColumns + ` FROM prompts ` + where + ` ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query, append(args, filter.Page.Limit, filter.Page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var prompts []domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, 0, err
		}
		prompts = append(prompts, *p)
	}
	return prompts, total, rows.Err()
}

// Stats aggregates the user's prompts by status.
func (r *PromptRepositoryPG) Stats(ctx context.Context, userID string) (*domain.PromptStats, error) {
	query := `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE status = 'completed'),
  COUNT(*) FILTER (WHERE status = 'failed'),
  COUNT(*) FILTER (WHERE status = 'pending'),
  COUNT(*) FILTER (WHERE status = 'processing')
FROM prompts WHERE user_id = $1;
`
	var stats domain.PromptStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.Failed,
		&stats.Pending,
		&stats.Processing,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Update persists user edits to text, type and tags.
func (r *PromptRepositoryPG) Update(ctx context.Context, prompt *domain.Prompt) error {
	query := `
UPDATE prompts
SET prompt_text = $2, app_type = $3, tags = $4, word_count = $5, updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`
	row := r.pool.QueryRow(ctx, query, prompt.ID, prompt.PromptText, prompt.AppType, prompt.Tags, prompt.WordCount)
	if err := row.Scan(&prompt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// MarkProcessing moves a pending prompt into processing. The status guard in
// the WHERE clause makes concurrent pipeline starts lose cleanly.
func (r *PromptRepositoryPG) MarkProcessing(ctx context.Context, id string) error {
	return r.transition(ctx, `
UPDATE prompts
SET status = 'processing', updated_at = NOW()
WHERE id = $1 AND status = 'pending';
`, id)
}

// MarkCompleted moves a processing prompt to completed with its app reference.
func (r *PromptRepositoryPG) MarkCompleted(ctx context.Context, id, appID string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE prompts
SET status = 'completed', generated_app_id = $2,
    error_message = NULL, error_code = NULL, error_at = NULL,
    updated_at = NOW()
WHERE id = $1 AND status = 'processing';
`, id, appID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// MarkFailed records the failure on a pending or processing prompt.
func (r *PromptRepositoryPG) MarkFailed(ctx context.Context, id string, perr domain.PromptError) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE prompts
SET status = 'failed', error_message = $2, error_code = $3, error_at = $4, updated_at = NOW()
WHERE id = $1 AND status IN ('pending', 'processing');
`, id, perr.Message, perr.Code, perr.Timestamp)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// ResetForRetry moves a failed prompt back to pending and clears the error.
func (r *PromptRepositoryPG) ResetForRetry(ctx context.Context, id string) error {
	return r.transition(ctx, `
UPDATE prompts
SET status = 'pending', error_message = NULL, error_code = NULL, error_at = NULL, updated_at = NOW()
WHERE id = $1 AND status = 'failed';
`, id)
}

// Delete removes the prompt record.
func (r *PromptRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListStaleProcessing returns prompts stuck in processing longer than age.
func (r *PromptRepositoryPG) ListStaleProcessing(ctx context.Context, age time.Duration, limit int) ([]domain.Prompt, error) {
	query := `
SELECT ` + promptColumns + `
FROM prompts
WHERE status = 'processing' AND updated_at < NOW() - $1::interval
ORDER BY updated_at ASC
LIMIT $2;
`
	rows, err := r.pool.Query(ctx, query, age, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, *p)
	}
	return prompts, rows.Err()
}

func (r *PromptRepositoryPG) transition(ctx context.Context, query, id string) error {
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var p domain.Prompt
	var errMsg, errCode *string
	var errAt *time.Time
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PromptText,
		&p.AppType,
		&p.Language,
		&p.Status,
		&p.GeneratedAppID,
		&errMsg,
		&errCode,
		&errAt,
		&p.WordCount,
		&p.Tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if errMsg != nil {
		perr := domain.PromptError{Message: *errMsg}
		if errCode != nil {
			perr.Code = *errCode
		}
		if errAt != nil {
			perr.Timestamp = *errAt
		}
		p.Error = &perr
	}
	return &p, nil
}

// nullable maps an empty string to NULL for optional filter params.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ domain.PromptRepository = (*PromptRepositoryPG)(nil)
