package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"zentra/internal/domain"
	"zentra/internal/generator"
	"zentra/internal/infra"
	"zentra/internal/infra/geoip"
	"zentra/internal/middleware"
	"zentra/internal/notify"
	"zentra/internal/storage"
)

// Generator is the slice of the generation engine the handlers need.
type Generator interface {
	Generate(ctx context.Context, promptText, userID string) (*generator.Result, error)
}

// ArtifactStore is the slice of the artifact file store the handlers need.
type ArtifactStore interface {
	Read(ctx context.Context, id string) (storage.Assets, error)
	ReadCombined(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

// App bundles the dependencies shared by every handler.
type App struct {
	Logger   zerolog.Logger
	Config   *infra.Config
	Users    domain.UserRepository
	Prompts  domain.PromptRepository
	Apps     domain.AppRepository
	Views    domain.ViewEventRepository
	Feedback domain.FeedbackRepository
	Engine   Generator
	Store    ArtifactStore
	Notifier notify.Notifier
	Geo      geoip.CountryResolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// pageFromQuery reads limit/offset query params with handler defaults.
func pageFromQuery(r *http.Request, defaultLimit, maxLimit int) domain.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return domain.Page{Limit: limit, Offset: offset}.Normalize(defaultLimit, maxLimit)
}
