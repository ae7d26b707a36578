package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zentra/internal/domain"
	"zentra/internal/middleware"
	"zentra/internal/notify"
)

const bcryptCost = 12

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Language string `json:"preferred_language"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Plan              string     `json:"plan"`
	PreferredLanguage string     `json:"preferred_language"`
	AppsCreated       int        `json:"apps_created"`
	RemainingApps     int        `json:"remaining_apps"`
	IsAdmin           bool       `json:"is_admin,omitempty"`
	PlanExpiry        *time.Time `json:"plan_expiry,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func profileDTO(u *domain.User) userProfileDTO {
	return userProfileDTO{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Plan:              string(u.Plan),
		PreferredLanguage: u.PreferredLanguage,
		AppsCreated:       u.AppsCreated,
		RemainingApps:     u.RemainingApps(),
		IsAdmin:           u.IsAdmin,
		PlanExpiry:        u.PlanExpiry,
		CreatedAt:         u.CreatedAt,
	}
}

func (a *App) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Username) < 3 {
		a.error(w, http.StatusBadRequest, "bad_request", "username must be at least 3 characters")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}
	if req.Language == "" {
		req.Language = middleware.LocaleFromContext(r.Context())
	}

	if _, err := a.Users.GetByEmail(r.Context(), req.Email); err == nil {
		a.error(w, http.StatusConflict, "conflict", "email already registered")
		return
	}
	if _, err := a.Users.GetByUsername(r.Context(), req.Username); err == nil {
		a.error(w, http.StatusConflict, "conflict", "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		a.Logger.Error().Err(err).Msg("hash password failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	user := &domain.User{
		ID:                uuid.NewString(),
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      string(hash),
		Plan:              domain.UserPlanFree,
		PreferredLanguage: req.Language,
		IsActive:          true,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.Logger.Error().Err(err).Msg("create user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	token, err := middleware.SignToken(a.Config.JWTSecret, user.ID, string(user.Plan), user.IsAdmin)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := a.Notifier.Send(ctx, user.Email, "Welcome to Zentra", notify.TemplateWelcome, map[string]any{
			"Username": user.Username,
			"Plan":     user.Plan,
			"BaseURL":  a.Config.PublicBaseURL,
		})
		if err != nil {
			a.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("welcome mail failed")
		}
	}()

	a.json(w, http.StatusCreated, authResponse{Token: token, User: profileDTO(user)})
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "login failed")
		return
	}
	if !user.IsActive {
		a.error(w, http.StatusForbidden, "account_disabled", "account is disabled")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	if err := a.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		a.Logger.Warn().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}

	token, err := middleware.SignToken(a.Config.JWTSecret, user.ID, string(user.Plan), user.IsAdmin)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, authResponse{Token: token, User: profileDTO(user)})
}

func (a *App) AuthMe(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusUnauthorized, "unauthorized", "account no longer exists")
			return
		}
		a.Logger.Error().Err(err).Msg("fetch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load profile")
		return
	}
	a.json(w, http.StatusOK, profileDTO(user))
}
