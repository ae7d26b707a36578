package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zentra/internal/domain"
)

// FeedbackRepositoryPG implements domain.FeedbackRepository backed by PostgreSQL.
type FeedbackRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository creates a new FeedbackRepositoryPG.
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepositoryPG {
	return &FeedbackRepositoryPG{pool: pool}
}

const feedbackColumns = `id, user_id, type, subject, message, app_id, prompt_id, priority, status, rating, is_public, created_at`

// Create inserts a new feedback entry.
func (r *FeedbackRepositoryPG) Create(ctx context.Context, fb *domain.Feedback) error {
	query := `
INSERT INTO feedback (id, user_id, type, subject, message, app_id, prompt_id, priority, status, rating, is_public)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING created_at;
`
	row := r.pool.QueryRow(ctx, query,
		fb.ID,
		fb.UserID,
		fb.Type,
		fb.Subject,
		fb.Message,
		fb.AppID,
		fb.PromptID,
		fb.Priority,
		fb.Status,
		fb.Rating,
		fb.IsPublic,
	)
	return row.Scan(&fb.CreatedAt)
}

// ListByUser returns the user's feedback newest first.
func (r *FeedbackRepositoryPG) ListByUser(ctx context.Context, userID string, filter domain.FeedbackFilter) ([]domain.Feedback, int, error) {
	where := `WHERE user_id = $1 AND ($2::text IS NULL OR type = $2) AND ($3::text IS NULL OR status = $3)`
	args := []any{userID, nullable(string(filter.Type)), nullable(string(filter.Status))}
	return r.list(ctx, where, args, filter.Page)
}

// ListPublic returns public testimonials newest first.
func (r *FeedbackRepositoryPG) ListPublic(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, int, error) {
	where := `WHERE is_public AND ($1::text IS NULL OR type = $1) AND ($2::text IS NULL OR status = $2)`
	args := []any{nullable(string(filter.Type)), nullable(string(filter.Status))}
	return r.list(ctx, where, args, filter.Page)
}

func (r *FeedbackRepositoryPG) list(ctx context.Context, where string, args []any, page domain.Page) ([]domain.Feedback, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM feedback %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		feedbackColumns, where, limitPos, limitPos+1)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *fb)
	}
	return entries, total, rows.Err()
}

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := row.Scan(
		&fb.ID,
		&fb.UserID,
		&fb.Type,
		&fb.Subject,
		&fb.Message,
		&fb.AppID,
		&fb.PromptID,
		&fb.Priority,
		&fb.Status,
		&fb.Rating,
		&fb.IsPublic,
		&fb.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &fb, nil
}

var _ domain.FeedbackRepository = (*FeedbackRepositoryPG)(nil)
