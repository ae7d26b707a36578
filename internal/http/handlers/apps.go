package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zentra/internal/domain"
	"zentra/internal/infra/geoip"
	"zentra/internal/middleware"
	zippkg "zentra/pkg/zip"
)

type appDTO struct {
	ID             string                 `json:"id"`
	AppID          string                 `json:"app_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Prompt         string                 `json:"prompt,omitempty"`
	PromptLanguage string                 `json:"prompt_language,omitempty"`
	IsPublished    bool                   `json:"is_published"`
	IsPublic       bool                   `json:"is_public"`
	PublicURL      *string                `json:"public_url,omitempty"`
	Views          int                    `json:"views"`
	Likes          int                    `json:"likes"`
	Shares         int                    `json:"shares"`
	Tags           []string               `json:"tags,omitempty"`
	Category       string                 `json:"category"`
	GenerationTime int64                  `json:"generation_time_ms"`
	CustomDomain   *string                `json:"custom_domain,omitempty"`
	AuthConfig     *domain.AuthConfig     `json:"auth_config,omitempty"`
	DatabaseConfig *domain.DatabaseConfig `json:"database_config,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// appToDTO renders an app for its owner. Public projections go through
// publicAppDTO which drops the prompt.
func appToDTO(app *domain.App) appDTO {
	return appDTO{
		ID:             app.ID,
		AppID:          app.AppID,
		Title:          app.Title,
		Description:    app.Description,
		Prompt:         app.Prompt,
		PromptLanguage: app.PromptLanguage,
		IsPublished:    app.IsPublished,
		IsPublic:       app.IsPublic,
		PublicURL:      app.PublicURL,
		Views:          app.Views,
		Likes:          app.Likes,
		Shares:         app.Shares,
		Tags:           app.Tags,
		Category:       string(app.Category),
		GenerationTime: app.GenerationTime,
		CustomDomain:   app.CustomDomain,
		AuthConfig:     app.AuthConfig,
		DatabaseConfig: app.DatabaseConfig,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

func publicAppDTO(app *domain.App) appDTO {
	dto := appToDTO(app)
	dto.Prompt = ""
	return dto
}

type generateRequest struct {
	PromptText string   `json:"prompt_text"`
	Tags       []string `json:"tags"`
}

// AppGenerate runs the engine synchronously and returns the saved app.
func (a *App) AppGenerate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := strings.TrimSpace(req.PromptText)
	if len(text) < domain.PromptTextMinLen || len(text) > domain.PromptTextMaxLen {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "prompt text must be between 10 and 5000 characters")
		return
	}

	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load account")
		return
	}
	if !user.CanCreateApp() {
		a.error(w, http.StatusForbidden, "quota_exceeded", "app limit reached for your plan")
		return
	}

	ctx := r.Context()

	if _, err := a.Users.IncrementAppsCreated(ctx, user.ID, domain.PlanCeiling(user.Plan)); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			a.error(w, http.StatusForbidden, "quota_exceeded", "app limit reached for your plan")
			return
		}
		a.Logger.Error().Err(err).Msg("reserve quota failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to reserve quota")
		return
	}
	// Cleanup must outlive the generation deadline and a dropped client.
	cleanupCtx := context.WithoutCancel(ctx)
	release := func() {
		if _, err := a.Users.DecrementAppsCreated(cleanupCtx, user.ID); err != nil {
			a.Logger.Error().Err(err).Str("user_id", user.ID).Msg("release quota failed")
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, a.Config.GenerateTimeout)
	defer cancel()

	result, err := a.Engine.Generate(genCtx, text, user.ID)
	if err != nil {
		release()
		a.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", "app generation failed, please try again")
		return
	}

	app := &domain.App{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		AppID:          result.AppID,
		Title:          result.Title,
		Description:    result.Description,
		Prompt:         text,
		PromptLanguage: result.PromptLanguage,
		HTMLContent:    result.HTML,
		CSSContent:     result.CSS,
		JSContent:      result.JS,
		Tags:           req.Tags,
		Category:       result.Category,
		GenerationTime: result.GenerationTime,
	}
	if err := a.Apps.Create(ctx, app); err != nil {
		release()
		if derr := a.Store.Delete(cleanupCtx, result.AppID); derr != nil {
			a.Logger.Error().Err(derr).Str("app_id", result.AppID).Msg("artifact cleanup failed")
		}
		a.Logger.Error().Err(err).Msg("persist app failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save generated app")
		return
	}
	a.json(w, http.StatusCreated, appToDTO(app))
}

func (a *App) AppList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	page := pageFromQuery(r, 20, 100)
	apps, total, err := a.Apps.ListByUser(r.Context(), userID, page)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list apps failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list apps")
		return
	}
	items := make([]appDTO, 0, len(apps))
	for i := range apps {
		items = append(items, appToDTO(&apps[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// AppGet serves a single app. Owners always see their apps; everyone else
// only published public ones. Non-owner reads count as views.
func (a *App) AppGet(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")
	viewerID := a.currentUserID(r)

	app, err := a.Apps.GetByAppID(r.Context(), appID)
	if err != nil {
		a.appError(w, err)
		return
	}

	isOwner := viewerID != "" && viewerID == app.UserID
	if !isOwner {
		if !app.IsPublished || !app.IsPublic {
			a.error(w, http.StatusNotFound, "not_found", "app not found")
			return
		}
		a.recordView(r, app)
		app.Views++
		a.json(w, http.StatusOK, publicAppDTO(app))
		return
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

// recordView bumps the counter and stores a country-tagged view event.
func (a *App) recordView(r *http.Request, app *domain.App) {
	ctx := r.Context()
	if err := a.Apps.IncrementViews(ctx, app.ID); err != nil {
		a.Logger.Warn().Err(err).Str("app_id", app.AppID).Msg("increment views failed")
		return
	}
	country := geoip.UnknownCountry
	if a.Geo != nil {
		country = a.Geo.Country(middleware.ClientIP(r))
	}
	event := domain.AppViewEvent{AppID: app.ID, Country: country, ViewedAt: time.Now()}
	if err := a.Views.Record(ctx, event); err != nil {
		a.Logger.Warn().Err(err).Str("app_id", app.AppID).Msg("record view event failed")
	}
}

// AppContent serves the combined document for rendering in an iframe.
func (a *App) AppContent(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")
	viewerID := a.currentUserID(r)

	app, err := a.Apps.GetByAppID(r.Context(), appID)
	if err != nil {
		a.appError(w, err)
		return
	}
	isOwner := viewerID != "" && viewerID == app.UserID
	if !isOwner && (!app.IsPublished || !app.IsPublic) {
		a.error(w, http.StatusNotFound, "not_found", "app not found")
		return
	}

	doc, err := a.Store.ReadCombined(r.Context(), app.AppID)
	if err != nil {
		a.Logger.Error().Err(err).Str("app_id", app.AppID).Msg("read combined doc failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load app content")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

type appUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"is_public"`
}

func (a *App) AppUpdate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req appUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > 100 {
			a.error(w, http.StatusBadRequest, "bad_request", "title must be 1-100 characters")
			return
		}
		app.Title = title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" || len(desc) > 500 {
			a.error(w, http.StatusBadRequest, "bad_request", "description must be 1-500 characters")
			return
		}
		app.Description = desc
	}
	if req.Category != nil {
		app.Category = domain.NormalizeCategory(*req.Category)
	}
	if req.Tags != nil {
		app.Tags = req.Tags
	}
	if req.IsPublic != nil {
		app.IsPublic = *req.IsPublic
	}
	app.PublicURL = app.ComputePublicURL(a.Config.PublicBaseURL)
	if err := a.Apps.Update(r.Context(), app); err != nil {
		a.Logger.Error().Err(err).Msg("update app failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update app")
		return
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

type publishRequest struct {
	IsPublished bool  `json:"is_published"`
	IsPublic    *bool `json:"is_public"`
}

// AppPublish toggles publication. The public URL exists only while the app is
// both published and public; unpublishing always clears it.
func (a *App) AppPublish(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	app.IsPublished = req.IsPublished
	if req.IsPublic != nil {
		app.IsPublic = *req.IsPublic
	}
	app.PublicURL = app.ComputePublicURL(a.Config.PublicBaseURL)
	if err := a.Apps.SetPublished(r.Context(), app.ID, app.IsPublished, app.PublicURL); err != nil {
		a.Logger.Error().Err(err).Msg("publish app failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update publication")
		return
	}
	if req.IsPublic != nil {
		if err := a.Apps.Update(r.Context(), app); err != nil {
			a.Logger.Error().Err(err).Msg("update visibility failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to update publication")
			return
		}
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

func (a *App) AppLike(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	app, err := a.Apps.GetByAppID(r.Context(), chi.URLParam(r, "appId"))
	if err != nil {
		a.appError(w, err)
		return
	}
	if app.UserID != userID && (!app.IsPublished || !app.IsPublic) {
		a.error(w, http.StatusNotFound, "not_found", "app not found")
		return
	}
	if err := a.Apps.IncrementLikes(r.Context(), app.ID); err != nil {
		a.Logger.Error().Err(err).Msg("increment likes failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to like app")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"likes": app.Likes + 1})
}

func (a *App) AppDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	if err := a.removeApp(r.Context(), app, userID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete app")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// removeApp deletes the row, the artifacts, and releases one quota slot.
func (a *App) removeApp(ctx context.Context, app *domain.App, userID string) error {
	if err := a.Apps.Delete(ctx, app.ID); err != nil {
		a.Logger.Error().Err(err).Str("app_id", app.AppID).Msg("delete app failed")
		return err
	}
	if err := a.Store.Delete(ctx, app.AppID); err != nil {
		a.Logger.Warn().Err(err).Str("app_id", app.AppID).Msg("artifact cleanup failed")
	}
	if _, err := a.Users.DecrementAppsCreated(ctx, userID); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", userID).Msg("decrement usage failed")
	}
	return nil
}

func (a *App) AppDiscover(w http.ResponseWriter, r *http.Request) {
	category := domain.AppCategory(r.URL.Query().Get("category"))
	if category != "" && !domain.ValidCategory(category) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown category")
		return
	}
	page := pageFromQuery(r, 20, 100)
	apps, total, err := a.Apps.ListPublic(r.Context(), category, page)
	if err != nil {
		a.Logger.Error().Err(err).Msg("discover apps failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list apps")
		return
	}
	items := make([]appDTO, 0, len(apps))
	for i := range apps {
		items = append(items, publicAppDTO(&apps[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

type customDomainRequest struct {
	Domain string `json:"domain"`
}

func (a *App) AppCustomDomain(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req customDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	dom := strings.ToLower(strings.TrimSpace(req.Domain))
	if dom == "" || !strings.Contains(dom, ".") || strings.ContainsAny(dom, " /") {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid domain")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	app.CustomDomain = &dom
	if err := a.Apps.Update(r.Context(), app); err != nil {
		a.Logger.Error().Err(err).Msg("set custom domain failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to set custom domain")
		return
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

func (a *App) AppAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	countries, err := a.Views.CountryBreakdown(r.Context(), app.ID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("country breakdown failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load analytics")
		return
	}
	a.json(w, http.StatusOK, domain.AppAnalytics{
		Views:     app.Views,
		Likes:     app.Likes,
		Shares:    app.Shares,
		Countries: countries,
	})
}

func (a *App) AppAuthSetup(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var cfg domain.AuthConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	app.AuthConfig = &cfg
	if err := a.Apps.Update(r.Context(), app); err != nil {
		a.Logger.Error().Err(err).Msg("auth setup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save auth config")
		return
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

func (a *App) AppDatabaseSetup(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var cfg domain.DatabaseConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	app.DatabaseConfig = &cfg
	if err := a.Apps.Update(r.Context(), app); err != nil {
		a.Logger.Error().Err(err).Msg("database setup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save database config")
		return
	}
	a.json(w, http.StatusOK, appToDTO(app))
}

// AppExport streams the app sources as a zip archive.
func (a *App) AppExport(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	app, err := a.Apps.GetForOwner(r.Context(), chi.URLParam(r, "appId"), userID)
	if err != nil {
		a.appError(w, err)
		return
	}
	assets, err := a.Store.Read(r.Context(), app.AppID)
	if err != nil {
		a.Logger.Error().Err(err).Str("app_id", app.AppID).Msg("read artifacts failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to export app")
		return
	}
	archive, err := zippkg.Bundle([]zippkg.File{
		{Name: "index.html", Data: []byte(assets.HTML)},
		{Name: "style.css", Data: []byte(assets.CSS)},
		{Name: "script.js", Data: []byte(assets.JS)},
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("app_id", app.AppID).Msg("build archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+app.AppID+`.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) appError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "app not found")
		return
	}
	a.Logger.Error().Err(err).Msg("app lookup failed")
	a.error(w, http.StatusInternalServerError, "internal", "failed to load app")
}
