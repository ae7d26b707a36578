package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"zentra/internal/domain"
	"zentra/internal/generator"
	"zentra/internal/infra"
	"zentra/internal/storage"
)

// withURLParam injects a chi route parameter the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newTestApp() (*App, *stubUsers, *stubPrompts, *stubApps, *stubEngine, *stubStore) {
	users := &stubUsers{users: map[string]*domain.User{}}
	prompts := &stubPrompts{prompts: map[string]*domain.Prompt{}}
	apps := &stubApps{apps: map[string]*domain.App{}}
	engine := &stubEngine{}
	store := &stubStore{assets: map[string]storage.Assets{}}
	app := &App{
		Logger:  zerolog.Nop(),
		Config:  &infra.Config{PublicBaseURL: "https://zentra.app", JWTSecret: "test-secret", GenerateTimeout: 5 * time.Second},
		Users:   users,
		Prompts: prompts,
		Apps:    apps,
		Views:   &stubViews{},
		Feedback: &stubFeedback{},
		Engine:  engine,
		Store:   store,
		Notifier: noopNotifier{},
	}
	return app, users, prompts, apps, engine, store
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, string, string, string, map[string]any) error { return nil }

type stubUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (s *stubUsers) Create(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *stubUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUsers) UpdateLastLogin(ctx context.Context, id string) error { return nil }

func (s *stubUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *stubUsers) UpdatePlan(ctx context.Context, id string, plan domain.UserPlan, expiry *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Plan = plan
	u.PlanExpiry = expiry
	return nil
}

func (s *stubUsers) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s *stubUsers) IncrementAppsCreated(ctx context.Context, id string, ceiling int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if ceiling != domain.UnlimitedApps && u.AppsCreated >= ceiling {
		return 0, domain.ErrQuotaExceeded
	}
	u.AppsCreated++
	return u.AppsCreated, nil
}

func (s *stubUsers) DecrementAppsCreated(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if u.AppsCreated > 0 {
		u.AppsCreated--
	}
	return u.AppsCreated, nil
}

func (s *stubUsers) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *stubUsers) List(ctx context.Context, page domain.Page) ([]domain.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *stubUsers) CountByPlan(ctx context.Context) (map[domain.UserPlan]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[domain.UserPlan]int{}
	for _, u := range s.users {
		counts[u.Plan]++
	}
	return counts, nil
}

func (s *stubUsers) appsCreated(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].AppsCreated
}

type stubPrompts struct {
	mu            sync.Mutex
	prompts       map[string]*domain.Prompt
	markFailedErr error
}

func (s *stubPrompts) Create(ctx context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	copied := *p
	s.prompts[p.ID] = &copied
	return nil
}

func (s *stubPrompts) GetForUser(ctx context.Context, id, userID string) (*domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubPrompts) ListByUser(ctx context.Context, userID string, filter domain.PromptFilter) ([]domain.Prompt, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Prompt
	for _, p := range s.prompts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (s *stubPrompts) Stats(ctx context.Context, userID string) (*domain.PromptStats, error) {
	return &domain.PromptStats{}, nil
}

func (s *stubPrompts) Update(ctx context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.prompts[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.PromptText = p.PromptText
	stored.AppType = p.AppType
	stored.Tags = p.Tags
	stored.WordCount = p.WordCount
	return nil
}

func (s *stubPrompts) MarkProcessing(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.PromptStatusPending, domain.PromptStatusProcessing)
}

func (s *stubPrompts) MarkCompleted(ctx context.Context, id, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok || p.Status != domain.PromptStatusProcessing {
		return domain.ErrInvalidState
	}
	p.Status = domain.PromptStatusCompleted
	p.GeneratedAppID = &appID
	p.Error = nil
	return nil
}

func (s *stubPrompts) MarkFailed(ctx context.Context, id string, perr domain.PromptError) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markFailedErr != nil {
		return s.markFailedErr
	}
	p, ok := s.prompts[id]
	if !ok || (p.Status != domain.PromptStatusPending && p.Status != domain.PromptStatusProcessing) {
		return domain.ErrInvalidState
	}
	p.Status = domain.PromptStatusFailed
	p.Error = &perr
	return nil
}

func (s *stubPrompts) ResetForRetry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok || p.Status != domain.PromptStatusFailed {
		return domain.ErrInvalidState
	}
	p.Status = domain.PromptStatusPending
	p.Error = nil
	return nil
}

func (s *stubPrompts) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.prompts, id)
	return nil
}

func (s *stubPrompts) ListStaleProcessing(ctx context.Context, age time.Duration, limit int) ([]domain.Prompt, error) {
	return nil, nil
}

func (s *stubPrompts) transition(ctx context.Context, id string, from, to domain.PromptStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok || p.Status != from {
		return domain.ErrInvalidState
	}
	p.Status = to
	return nil
}

func (s *stubPrompts) get(id string) domain.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.prompts[id]
}

type stubApps struct {
	mu   sync.Mutex
	apps map[string]*domain.App // keyed by artifact app id
}

func (s *stubApps) Create(ctx context.Context, app *domain.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	copied := *app
	s.apps[app.AppID] = &copied
	return nil
}

func (s *stubApps) GetByAppID(ctx context.Context, appID string) (*domain.App, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (s *stubApps) GetForOwner(ctx context.Context, appID, userID string) (*domain.App, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok || app.UserID != userID {
		return nil, domain.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (s *stubApps) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.App, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.App
	for _, app := range s.apps {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	return out, len(out), nil
}

func (s *stubApps) ListPublic(ctx context.Context, category domain.AppCategory, page domain.Page) ([]domain.App, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.App
	for _, app := range s.apps {
		if app.IsPublished && app.IsPublic && (category == "" || app.Category == category) {
			out = append(out, *app)
		}
	}
	return out, len(out), nil
}

func (s *stubApps) Update(ctx context.Context, app *domain.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.apps[app.AppID]
	if !ok {
		return domain.ErrNotFound
	}
	*stored = *app
	return nil
}

func (s *stubApps) SetPublished(ctx context.Context, id string, published bool, publicURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.ID == id {
			app.IsPublished = published
			app.PublicURL = publicURL
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubApps) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.ID == id {
			app.Views++
			app.LastViewed = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubApps) IncrementLikes(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.ID == id {
			app.Likes++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubApps) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, app := range s.apps {
		if app.ID == id {
			delete(s.apps, key)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubApps) ArtifactIDsByUser(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, app := range s.apps {
		if app.UserID == userID {
			ids = append(ids, app.AppID)
		}
	}
	return ids, nil
}

func (s *stubApps) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, app := range s.apps {
		if app.UserID == userID {
			delete(s.apps, key)
			n++
		}
	}
	return n, nil
}

func (s *stubApps) StatsByUser(ctx context.Context, userID string) (*domain.AppStatsByUser, error) {
	return &domain.AppStatsByUser{}, nil
}

func (s *stubApps) AdminCounts(ctx context.Context) (*domain.AdminAppCounts, error) {
	return &domain.AdminAppCounts{ByCategory: map[domain.AppCategory]int{}}, nil
}

func (s *stubApps) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apps)
}

func (s *stubApps) get(appID string) domain.App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.apps[appID]
}

type stubViews struct {
	mu     sync.Mutex
	events []domain.AppViewEvent
}

func (s *stubViews) Record(ctx context.Context, event domain.AppViewEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubViews) CountryBreakdown(ctx context.Context, appID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	breakdown := map[string]int{}
	for _, ev := range s.events {
		if ev.AppID == appID {
			breakdown[ev.Country]++
		}
	}
	return breakdown, nil
}

type stubFeedback struct {
	mu      sync.Mutex
	entries []domain.Feedback
}

func (s *stubFeedback) Create(ctx context.Context, fb *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.CreatedAt = time.Now()
	s.entries = append(s.entries, *fb)
	return nil
}

func (s *stubFeedback) ListByUser(ctx context.Context, userID string, filter domain.FeedbackFilter) ([]domain.Feedback, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range s.entries {
		if fb.UserID == userID {
			out = append(out, fb)
		}
	}
	return out, len(out), nil
}

func (s *stubFeedback) ListPublic(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Feedback
	for _, fb := range s.entries {
		if fb.IsPublic {
			out = append(out, fb)
		}
	}
	return out, len(out), nil
}

type stubEngine struct {
	mu           sync.Mutex
	result       *generator.Result
	err          error
	runUntilDone bool // block until the generation context expires
	calls        int
}

func (s *stubEngine) Generate(ctx context.Context, promptText, userID string) (*generator.Result, error) {
	s.mu.Lock()
	s.calls++
	runUntilDone := s.runUntilDone
	err := s.err
	result := s.result
	s.mu.Unlock()

	if runUntilDone {
		<-ctx.Done()
		return nil, &generator.Error{Code: generator.CodeTimeout}
	}
	if err != nil {
		return nil, err
	}
	copied := *result
	return &copied, nil
}

func (s *stubEngine) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubStore struct {
	mu      sync.Mutex
	assets  map[string]storage.Assets
	deleted []string
}

func (s *stubStore) Read(ctx context.Context, id string) (storage.Assets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assets, ok := s.assets[id]
	if !ok {
		return storage.Assets{}, storage.ErrNotFound
	}
	return assets, nil
}

func (s *stubStore) ReadCombined(ctx context.Context, id string) (string, error) {
	assets, err := s.Read(ctx, id)
	if err != nil {
		return "", err
	}
	return storage.CombineDocument(assets.HTML, assets.CSS, assets.JS), nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, id)
	s.deleted = append(s.deleted, id)
	return nil
}
