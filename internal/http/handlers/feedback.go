package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"zentra/internal/domain"
)

type feedbackCreateRequest struct {
	Type     string  `json:"type"`
	Subject  string  `json:"subject"`
	Message  string  `json:"message"`
	AppID    *string `json:"app_id"`
	PromptID *string `json:"prompt_id"`
	Priority string  `json:"priority"`
	Rating   *int    `json:"rating"`
	IsPublic bool    `json:"is_public"`
}

type feedbackDTO struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Subject  string  `json:"subject"`
	Message  string  `json:"message"`
	AppID    *string `json:"app_id,omitempty"`
	PromptID *string `json:"prompt_id,omitempty"`
	Priority string  `json:"priority"`
	Status   string  `json:"status"`
	Rating   *int    `json:"rating,omitempty"`
	IsPublic bool    `json:"is_public"`
}

func feedbackToDTO(fb *domain.Feedback) feedbackDTO {
	return feedbackDTO{
		ID:       fb.ID,
		Type:     string(fb.Type),
		Subject:  fb.Subject,
		Message:  fb.Message,
		AppID:    fb.AppID,
		PromptID: fb.PromptID,
		Priority: fb.Priority,
		Status:   string(fb.Status),
		Rating:   fb.Rating,
		IsPublic: fb.IsPublic,
	}
}

func (a *App) FeedbackCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req feedbackCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	fbType := domain.FeedbackType(req.Type)
	if !domain.ValidFeedbackType(fbType) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown feedback type")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || len(req.Subject) > 200 {
		a.error(w, http.StatusBadRequest, "bad_request", "subject must be 1-200 characters")
		return
	}
	if req.Message == "" || len(req.Message) > 2000 {
		a.error(w, http.StatusBadRequest, "bad_request", "message must be 1-2000 characters")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		a.error(w, http.StatusBadRequest, "bad_request", "rating must be between 1 and 5")
		return
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = "medium"
	case "low", "medium", "high", "critical":
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "unknown priority")
		return
	}

	fb := &domain.Feedback{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     fbType,
		Subject:  req.Subject,
		Message:  req.Message,
		AppID:    req.AppID,
		PromptID: req.PromptID,
		Priority: priority,
		Status:   domain.FeedbackNew,
		Rating:   req.Rating,
		IsPublic: req.IsPublic,
	}
	if err := a.Feedback.Create(r.Context(), fb); err != nil {
		a.Logger.Error().Err(err).Msg("create feedback failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to submit feedback")
		return
	}
	a.json(w, http.StatusCreated, feedbackToDTO(fb))
}

func (a *App) FeedbackListMine(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	filter := domain.FeedbackFilter{
		Type:   domain.FeedbackType(r.URL.Query().Get("type")),
		Status: domain.FeedbackStatus(r.URL.Query().Get("status")),
		Page:   pageFromQuery(r, 20, 100),
	}
	entries, total, err := a.Feedback.ListByUser(r.Context(), userID, filter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list feedback failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list feedback")
		return
	}
	items := make([]feedbackDTO, 0, len(entries))
	for i := range entries {
		items = append(items, feedbackToDTO(&entries[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (a *App) FeedbackListPublic(w http.ResponseWriter, r *http.Request) {
	filter := domain.FeedbackFilter{
		Type: domain.FeedbackType(r.URL.Query().Get("type")),
		Page: pageFromQuery(r, 20, 100),
	}
	entries, total, err := a.Feedback.ListPublic(r.Context(), filter)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list public feedback failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list feedback")
		return
	}
	items := make([]feedbackDTO, 0, len(entries))
	for i := range entries {
		items = append(items, feedbackToDTO(&entries[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}
