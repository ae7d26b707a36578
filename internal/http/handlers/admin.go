package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zentra/internal/domain"
	"zentra/internal/middleware"
)

// requireAdmin enforces the admin claim; returns false after writing the
// error response.
func (a *App) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if a.currentUserID(r) == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return false
	}
	if !middleware.IsAdminFromContext(r.Context()) {
		a.error(w, http.StatusForbidden, "forbidden", "admin access required")
		return false
	}
	return true
}

func (a *App) AdminStats(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	usersByPlan, err := a.Users.CountByPlan(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("count users failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	appCounts, err := a.Apps.AdminCounts(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("count apps failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	totalUsers := 0
	for _, n := range usersByPlan {
		totalUsers += n
	}
	a.json(w, http.StatusOK, map[string]any{
		"users": map[string]any{"total": totalUsers, "by_plan": usersByPlan},
		"apps":  appCounts,
	})
}

func (a *App) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	page := pageFromQuery(r, 50, 200)
	users, total, err := a.Users.List(r.Context(), page)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list users failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list users")
		return
	}
	items := make([]userProfileDTO, 0, len(users))
	for i := range users {
		items = append(items, profileDTO(&users[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

type userStatusRequest struct {
	IsActive bool `json:"is_active"`
}

func (a *App) AdminSetUserStatus(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	var req userStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	userID := chi.URLParam(r, "userId")
	if userID == a.currentUserID(r) && !req.IsActive {
		a.error(w, http.StatusBadRequest, "bad_request", "cannot disable your own account")
		return
	}
	if err := a.Users.SetActive(r.Context(), userID, req.IsActive); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		a.Logger.Error().Err(err).Msg("set user status failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update user")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user_id": userID, "is_active": req.IsActive})
}
