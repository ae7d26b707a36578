package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zentra/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, username, email, password_hash, plan, preferred_language, apps_created, is_active, is_admin, plan_expiry, created_at, last_login`

// Create inserts a new account record.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) error {
	query := `
INSERT INTO users (id, username, email, password_hash, plan, preferred_language, apps_created, is_active, is_admin)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at, last_login;
`
	row := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Plan,
		user.PreferredLanguage,
		user.AppsCreated,
		user.IsActive,
		user.IsAdmin,
	)
	return row.Scan(&user.CreatedAt, &user.LastLogin)
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email address.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

// GetByUsername fetches a user by handle.
func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// UpdateLastLogin stamps the last successful sign-in.
func (r *UserRepositoryPG) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// UpdatePassword replaces the stored credential hash.
func (r *UserRepositoryPG) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePlan assigns a new plan and optional expiry.
func (r *UserRepositoryPG) UpdatePlan(ctx context.Context, id string, plan domain.UserPlan, expiry *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET plan = $2, plan_expiry = $3 WHERE id = $1`, id, plan, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive toggles the account active flag.
func (r *UserRepositoryPG) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementAppsCreated bumps the usage counter with a conditional update so
// concurrent generations cannot race past the plan ceiling.
func (r *UserRepositoryPG) IncrementAppsCreated(ctx context.Context, id string, ceiling int) (int, error) {
	var limit *int
	if ceiling != domain.UnlimitedApps {
		limit = &ceiling
	}
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET apps_created = apps_created + 1
WHERE id = $1 AND ($2::int IS NULL OR apps_created < $2)
RETURNING apps_created;
`, id, limit)
	var count int
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrQuotaExceeded
		}
		return 0, err
	}
	return count, nil
}

// DecrementAppsCreated lowers the usage counter, floored at zero.
func (r *UserRepositoryPG) DecrementAppsCreated(ctx context.Context, id string) (int, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET apps_created = GREATEST(apps_created - 1, 0)
WHERE id = $1
RETURNING apps_created;
`, id)
	var count int
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// Delete removes the account record.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns users newest first with the total count.
func (r *UserRepositoryPG) List(ctx context.Context, page domain.Page) ([]domain.User, int, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountByPlan groups account totals by plan tier.
func (r *UserRepositoryPG) CountByPlan(ctx context.Context) (map[domain.UserPlan]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT plan, COUNT(*) FROM users GROUP BY plan`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.UserPlan]int)
	for rows.Next() {
		var plan domain.UserPlan
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, err
		}
		counts[plan] = n
	}
	return counts, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Plan,
		&u.PreferredLanguage,
		&u.AppsCreated,
		&u.IsActive,
		&u.IsAdmin,
		&u.PlanExpiry,
		&u.CreatedAt,
		&u.LastLogin,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
