package domain

import (
	"context"
	"time"
)

// Page carries skip/limit pagination for list queries.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// UserRepository defines persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdatePlan(ctx context.Context, id string, plan UserPlan, expiry *time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	// IncrementAppsCreated atomically bumps the usage counter while it is
	// below ceiling; pass UnlimitedApps for no ceiling. Returns the new
	// counter value or ErrQuotaExceeded when the conditional update matched
	// no row.
	IncrementAppsCreated(ctx context.Context, id string, ceiling int) (int, error)
	// DecrementAppsCreated lowers the usage counter, floored at zero.
	DecrementAppsCreated(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Page) ([]User, int, error)
	CountByPlan(ctx context.Context) (map[UserPlan]int, error)
}

// PromptFilter narrows prompt listings.
type PromptFilter struct {
	Status  PromptStatus
	AppType AppType
	Page    Page
}

// PromptRepository defines persistence for generation requests.
type PromptRepository interface {
	Create(ctx context.Context, prompt *Prompt) error
	GetForUser(ctx context.Context, id, userID string) (*Prompt, error)
	ListByUser(ctx context.Context, userID string, filter PromptFilter) ([]Prompt, int, error)
	Stats(ctx context.Context, userID string) (*PromptStats, error)
	// Update persists user edits (text, app type, tags, word count).
	Update(ctx context.Context, prompt *Prompt) error
	// MarkProcessing transitions pending → processing; ErrInvalidState when
	// the prompt was not pending.
	MarkProcessing(ctx context.Context, id string) error
	// MarkCompleted transitions processing → completed and sets the app
	// back-reference.
	MarkCompleted(ctx context.Context, id, appID string) error
	// MarkFailed transitions pending|processing → failed with the captured error.
	MarkFailed(ctx context.Context, id string, perr PromptError) error
	// ResetForRetry transitions failed → pending and clears the error.
	ResetForRetry(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// ListStaleProcessing returns prompts stuck in processing longer than age.
	ListStaleProcessing(ctx context.Context, age time.Duration, limit int) ([]Prompt, error)
}

// AppStatsByUser aggregates a user's app counters for the profile view.
type AppStatsByUser struct {
	TotalApps     int `json:"totalApps"`
	PublishedApps int `json:"publishedApps"`
	PublicApps    int `json:"publicApps"`
	TotalViews    int `json:"totalViews"`
	TotalLikes    int `json:"totalLikes"`
}

// AdminAppCounts aggregates platform-wide app counters.
type AdminAppCounts struct {
	Total      int                 `json:"total"`
	Published  int                 `json:"published"`
	Public     int                 `json:"public"`
	ByCategory map[AppCategory]int `json:"byCategory"`
}

// AppRepository defines persistence for generated apps.
type AppRepository interface {
	Create(ctx context.Context, app *App) error
	GetByAppID(ctx context.Context, appID string) (*App, error)
	GetForOwner(ctx context.Context, appID, userID string) (*App, error)
	ListByUser(ctx context.Context, userID string, page Page) ([]App, int, error)
	ListPublic(ctx context.Context, category AppCategory, page Page) ([]App, int, error)
	Update(ctx context.Context, app *App) error
	SetPublished(ctx context.Context, id string, published bool, publicURL *string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// ArtifactIDsByUser lists artifact identifiers of every app the user
	// owns, for file cleanup on account deletion.
	ArtifactIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
	StatsByUser(ctx context.Context, userID string) (*AppStatsByUser, error)
	AdminCounts(ctx context.Context) (*AdminAppCounts, error)
}

// ViewEventRepository records per-view analytics events.
type ViewEventRepository interface {
	Record(ctx context.Context, event AppViewEvent) error
	CountryBreakdown(ctx context.Context, appID string) (map[string]int, error)
}

// FeedbackFilter narrows feedback listings.
type FeedbackFilter struct {
	Type   FeedbackType
	Status FeedbackStatus
	Page   Page
}

// FeedbackRepository defines persistence for feedback entries.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *Feedback) error
	ListByUser(ctx context.Context, userID string, filter FeedbackFilter) ([]Feedback, int, error)
	ListPublic(ctx context.Context, filter FeedbackFilter) ([]Feedback, int, error)
}
