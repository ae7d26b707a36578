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
	"zentra/internal/generator"
	"zentra/internal/notify"
)

// codeDBError marks pipeline failures in the persistence step, after the
// engine already succeeded.
const codeDBError = "DB_ERROR"

type promptCreateRequest struct {
	PromptText string   `json:"prompt_text"`
	AppType    string   `json:"app_type"`
	Tags       []string `json:"tags"`
}

type promptUpdateRequest struct {
	PromptText *string  `json:"prompt_text"`
	AppType    *string  `json:"app_type"`
	Tags       []string `json:"tags"`
}

type promptDTO struct {
	ID             string     `json:"id"`
	PromptText     string     `json:"prompt_text"`
	AppType        string     `json:"app_type"`
	Language       string     `json:"language,omitempty"`
	Status         string     `json:"status"`
	GeneratedAppID *string    `json:"generated_app_id,omitempty"`
	Error          *errorDTO  `json:"error,omitempty"`
	WordCount      int        `json:"word_count"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type errorDTO struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

func promptToDTO(p *domain.Prompt) promptDTO {
	dto := promptDTO{
		ID:             p.ID,
		PromptText:     p.PromptText,
		AppType:        string(p.AppType),
		Language:       p.Language,
		Status:         string(p.Status),
		GeneratedAppID: p.GeneratedAppID,
		WordCount:      p.WordCount,
		Tags:           p.Tags,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Error != nil {
		dto.Error = &errorDTO{Message: p.Error.Message, Code: p.Error.Code, Timestamp: p.Error.Timestamp}
	}
	return dto
}

func (a *App) PromptCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req promptCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := strings.TrimSpace(req.PromptText)
	if len(text) < domain.PromptTextMinLen || len(text) > domain.PromptTextMaxLen {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "prompt text must be between 10 and 5000 characters")
		return
	}
	appType := domain.AppType(req.AppType)
	if req.AppType == "" {
		appType = domain.AppTypeWeb
	}
	if !domain.ValidAppType(appType) {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported app type")
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

	prompt := &domain.Prompt{
		ID:         uuid.NewString(),
		UserID:     userID,
		PromptText: text,
		AppType:    appType,
		Language:   generator.DetectLanguage(text),
		Status:     domain.PromptStatusPending,
		WordCount:  domain.CountWords(text),
		Tags:       req.Tags,
	}
	if err := a.Prompts.Create(r.Context(), prompt); err != nil {
		a.Logger.Error().Err(err).Msg("create prompt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create prompt")
		return
	}

	go a.runGeneration(prompt.ID, user)

	a.json(w, http.StatusAccepted, promptToDTO(prompt))
}

// runGeneration drives one prompt through the state machine outside the
// request context. The generation deadline only covers the engine call;
// bookkeeping runs on its own context so a timed-out generation can still be
// recorded. The usage counter is reserved atomically before the prompt enters
// processing, so a prompt in processing always holds one slot, and the actor
// that moves it out of processing (here, or the stale sweeper) releases it.
// A failed attempt nets to zero.
func (a *App) runGeneration(promptID string, user *domain.User) {
	ctx := context.Background()
	log := a.Logger.With().Str("prompt_id", promptID).Str("user_id", user.ID).Logger()

	if _, err := a.Users.IncrementAppsCreated(ctx, user.ID, domain.PlanCeiling(user.Plan)); err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			a.failPrompt(ctx, promptID, "app limit reached for your plan", "QUOTA_EXCEEDED")
			return
		}
		log.Error().Err(err).Msg("reserve quota failed")
		a.failPrompt(ctx, promptID, "failed to reserve quota", codeDBError)
		return
	}
	release := func() {
		if _, err := a.Users.DecrementAppsCreated(ctx, user.ID); err != nil {
			log.Error().Err(err).Msg("release quota failed")
		}
	}

	if err := a.Prompts.MarkProcessing(ctx, promptID); err != nil {
		release()
		log.Warn().Err(err).Msg("prompt no longer pending, skipping")
		return
	}

	// From here on release() only runs when failPrompt won the transition
	// out of processing; otherwise the slot stays held for whoever does.
	prompt, err := a.Prompts.GetForUser(ctx, promptID, user.ID)
	if err != nil {
		log.Error().Err(err).Msg("reload prompt failed")
		if a.failPrompt(ctx, promptID, "failed to reload prompt", codeDBError) {
			release()
		}
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, a.Config.GenerateTimeout)
	defer cancel()

	result, err := a.Engine.Generate(genCtx, prompt.PromptText, user.ID)
	if err != nil {
		log.Warn().Err(err).Msg("generation failed")
		if a.failPrompt(ctx, promptID, err.Error(), generator.ErrorCode(err)) {
			release()
		}
		return
	}

	app := &domain.App{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		AppID:          result.AppID,
		Title:          result.Title,
		Description:    result.Description,
		Prompt:         prompt.PromptText,
		PromptLanguage: result.PromptLanguage,
		HTMLContent:    result.HTML,
		CSSContent:     result.CSS,
		JSContent:      result.JS,
		Tags:           prompt.Tags,
		Category:       result.Category,
		GenerationTime: result.GenerationTime,
	}
	if err := a.Apps.Create(ctx, app); err != nil {
		if derr := a.Store.Delete(ctx, result.AppID); derr != nil {
			log.Error().Err(derr).Str("app_id", result.AppID).Msg("artifact cleanup failed")
		}
		log.Error().Err(err).Msg("persist app failed")
		if a.failPrompt(ctx, promptID, "failed to save generated app", codeDBError) {
			release()
		}
		return
	}

	if err := a.Prompts.MarkCompleted(ctx, promptID, app.AppID); err != nil {
		log.Error().Err(err).Msg("mark completed failed")
		return
	}

	log.Info().Str("app_id", app.AppID).Int64("elapsed_ms", result.GenerationTime).Msg("prompt completed")

	appURL := a.Config.PublicBaseURL + "/app/" + app.AppID
	err = a.Notifier.Send(ctx, user.Email, "Your app is ready", notify.TemplateAppGenerated, map[string]any{
		"Username": user.Username,
		"Title":    app.Title,
		"AppURL":   appURL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("app-generated mail failed")
	}
}

// failPrompt records the failure and reports whether this call won the
// transition into failed.
func (a *App) failPrompt(ctx context.Context, promptID, message, code string) bool {
	perr := domain.PromptError{Message: message, Code: code, Timestamp: time.Now()}
	if err := a.Prompts.MarkFailed(ctx, promptID, perr); err != nil {
		a.Logger.Error().Err(err).Str("prompt_id", promptID).Msg("mark failed failed")
		return false
	}
	return true
}

func (a *App) PromptList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	filter := domain.PromptFilter{
		Status:  domain.PromptStatus(r.URL.Query().Get("status")),
		AppType: domain.AppType(r.URL.Query().Get("app_type")),
		Page:    pageFromQuery(r, 20, 100),
	}
	prompts, total, err := a.Prompts.ListByUser(r.Context(), userID, filter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list prompts failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list prompts")
		return
	}
	items := make([]promptDTO, 0, len(prompts))
	for i := range prompts {
		items = append(items, promptToDTO(&prompts[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (a *App) PromptStats(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	stats, err := a.Prompts.Stats(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("prompt stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	a.json(w, http.StatusOK, stats)
}

func (a *App) PromptGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	prompt, err := a.Prompts.GetForUser(r.Context(), chi.URLParam(r, "promptId"), userID)
	if err != nil {
		a.promptError(w, err)
		return
	}
	a.json(w, http.StatusOK, promptToDTO(prompt))
}

func (a *App) PromptUpdate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req promptUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	prompt, err := a.Prompts.GetForUser(r.Context(), chi.URLParam(r, "promptId"), userID)
	if err != nil {
		a.promptError(w, err)
		return
	}
	if !prompt.Editable() {
		a.error(w, http.StatusConflict, "invalid_state", "prompt is being processed")
		return
	}
	if req.PromptText != nil {
		text := strings.TrimSpace(*req.PromptText)
		if len(text) < domain.PromptTextMinLen || len(text) > domain.PromptTextMaxLen {
			a.error(w, http.StatusBadRequest, "invalid_prompt", "prompt text must be between 10 and 5000 characters")
			return
		}
		prompt.PromptText = text
		prompt.WordCount = domain.CountWords(text)
	}
	if req.AppType != nil {
		appType := domain.AppType(*req.AppType)
		if !domain.ValidAppType(appType) {
			a.error(w, http.StatusBadRequest, "bad_request", "unsupported app type")
			return
		}
		prompt.AppType = appType
	}
	if req.Tags != nil {
		prompt.Tags = req.Tags
	}
	if err := a.Prompts.Update(r.Context(), prompt); err != nil {
		a.Logger.Error().Err(err).Msg("update prompt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update prompt")
		return
	}
	a.json(w, http.StatusOK, promptToDTO(prompt))
}

func (a *App) PromptDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	prompt, err := a.Prompts.GetForUser(r.Context(), chi.URLParam(r, "promptId"), userID)
	if err != nil {
		a.promptError(w, err)
		return
	}

	// Cascade over the generated app, if any.
	if prompt.GeneratedAppID != nil {
		if app, err := a.Apps.GetForOwner(r.Context(), *prompt.GeneratedAppID, userID); err == nil {
			a.removeApp(r.Context(), app, userID)
		}
	}

	if err := a.Prompts.Delete(r.Context(), prompt.ID); err != nil {
		a.Logger.Error().Err(err).Msg("delete prompt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete prompt")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) PromptRetry(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	prompt, err := a.Prompts.GetForUser(r.Context(), chi.URLParam(r, "promptId"), userID)
	if err != nil {
		a.promptError(w, err)
		return
	}
	if !prompt.CanRetry() {
		a.error(w, http.StatusConflict, "invalid_state", "only failed prompts can be retried")
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

	if err := a.Prompts.ResetForRetry(r.Context(), prompt.ID); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			a.error(w, http.StatusConflict, "invalid_state", "only failed prompts can be retried")
			return
		}
		a.Logger.Error().Err(err).Msg("reset prompt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to retry prompt")
		return
	}

	go a.runGeneration(prompt.ID, user)

	prompt.Status = domain.PromptStatusPending
	prompt.Error = nil
	a.json(w, http.StatusAccepted, promptToDTO(prompt))
}

func (a *App) promptError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "prompt not found")
		return
	}
	a.Logger.Error().Err(err).Msg("prompt lookup failed")
	a.error(w, http.StatusInternalServerError, "internal", "failed to load prompt")
}
