package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"zentra/internal/domain"
)

func (a *App) UserStats(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load account")
		return
	}
	appStats, err := a.Apps.StatsByUser(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("app stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	promptStats, err := a.Prompts.Stats(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("prompt stats failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	remaining := any(user.RemainingApps())
	if user.RemainingApps() == domain.UnlimitedApps {
		remaining = "unlimited"
	}
	a.json(w, http.StatusOK, map[string]any{
		"plan":           user.Plan,
		"apps_created":   user.AppsCreated,
		"remaining_apps": remaining,
		"apps":           appStats,
		"prompts":        promptStats,
	})
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *App) UserChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.NewPassword) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load account")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to change password")
		return
	}
	if err := a.Users.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		a.Logger.Error().Err(err).Msg("update password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to change password")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// UserDeleteAccount removes the account with all owned apps and artifacts.
func (a *App) UserDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}

	artifactIDs, err := a.Apps.ArtifactIDsByUser(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list artifacts failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete account")
		return
	}
	if _, err := a.Apps.DeleteAllByUser(r.Context(), userID); err != nil {
		a.Logger.Error().Err(err).Msg("delete apps failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete account")
		return
	}
	for _, id := range artifactIDs {
		if err := a.Store.Delete(r.Context(), id); err != nil {
			a.Logger.Warn().Err(err).Str("app_id", id).Msg("artifact cleanup failed")
		}
	}
	if err := a.Users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete account")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "account deleted"})
}
