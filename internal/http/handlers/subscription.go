package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"zentra/internal/domain"
	"zentra/internal/middleware"
	"zentra/internal/notify"
)

type planDTO struct {
	Name     string   `json:"name"`
	AppLimit any      `json:"app_limit"`
	Features []string `json:"features"`
}

func planLimit(p domain.UserPlan) any {
	if c := domain.PlanCeiling(p); c != domain.UnlimitedApps {
		return c
	}
	return "unlimited"
}

// SubscriptionPlans lists the plan catalog with limits and features.
func (a *App) SubscriptionPlans(w http.ResponseWriter, r *http.Request) {
	plans := []domain.UserPlan{
		domain.UserPlanFree,
		domain.UserPlanStarter,
		domain.UserPlanBuilder,
		domain.UserPlanPro,
	}
	items := make([]planDTO, 0, len(plans))
	for _, p := range plans {
		items = append(items, planDTO{
			Name:     string(p),
			AppLimit: planLimit(p),
			Features: middleware.PlanFeatures(string(p)),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"plans": items})
}

func (a *App) SubscriptionCurrent(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load subscription")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"plan":         user.Plan,
		"app_limit":    planLimit(user.Plan),
		"apps_created": user.AppsCreated,
		"features":     middleware.PlanFeatures(string(user.Plan)),
		"plan_expiry":  user.PlanExpiry,
	})
}

type changePlanRequest struct {
	Plan string `json:"plan"`
}

// SubscriptionChangePlan switches the account plan. Paid plans get a rolling
// 30 day expiry; free clears it.
func (a *App) SubscriptionChangePlan(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req changePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	plan := domain.UserPlan(req.Plan)
	if !domain.ValidPlan(plan) {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown plan")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to change plan")
		return
	}
	if user.Plan == plan {
		a.error(w, http.StatusConflict, "conflict", "already on this plan")
		return
	}

	var expiry *time.Time
	if plan != domain.UserPlanFree {
		t := time.Now().AddDate(0, 0, 30)
		expiry = &t
	}
	if err := a.Users.UpdatePlan(r.Context(), userID, plan, expiry); err != nil {
		a.Logger.Error().Err(err).Msg("update plan failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to change plan")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := a.Notifier.Send(ctx, user.Email, "Your Zentra plan changed", notify.TemplatePlanChanged, map[string]any{
			"Username": user.Username,
			"Plan":     plan,
			"AppLimit": planLimit(plan),
		})
		if err != nil {
			a.Logger.Warn().Err(err).Str("user_id", userID).Msg("plan-changed mail failed")
		}
	}()

	a.json(w, http.StatusOK, map[string]any{
		"plan":        plan,
		"app_limit":   planLimit(plan),
		"plan_expiry": expiry,
	})
}
