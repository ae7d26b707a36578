package httpapi

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"zentra/internal/http/handlers"
	"zentra/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.Locale("en"),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	auth := middleware.AuthJWT(app.Config.JWTSecret)
	optionalAuth := middleware.OptionalAuthJWT(app.Config.JWTSecret)
	planLookup := middleware.PlanLookup(func(ctx context.Context, userID string) (string, error) {
		user, err := app.Users.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return string(user.Plan), nil
	})

	r.Get("/api/health", app.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", app.AuthRegister)
		r.Post("/login", app.AuthLogin)
		r.With(auth).Get("/me", app.AuthMe)
	})

	r.Route("/api/apps", func(r chi.Router) {
		r.Get("/public/discover", app.AppDiscover)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/{appId}", app.AppGet)
			r.Get("/{appId}/content", app.AppContent)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/generate", app.AppGenerate)
			r.Get("/my-apps", app.AppList)
			r.Put("/{appId}", app.AppUpdate)
			r.Patch("/{appId}/publish", app.AppPublish)
			r.Post("/{appId}/like", app.AppLike)
			r.Delete("/{appId}", app.AppDelete)
			r.Get("/{appId}/export", app.AppExport)

			r.With(middleware.RequireFeature(middleware.FeatureCustomDomains, planLookup)).
				Post("/{appId}/custom-domain", app.AppCustomDomain)
			r.With(middleware.RequireFeature(middleware.FeatureAnalytics, planLookup)).
				Get("/{appId}/analytics", app.AppAnalytics)
			r.With(middleware.RequireFeature(middleware.FeatureAuthSystem, planLookup)).
				Post("/{appId}/auth-setup", app.AppAuthSetup)
			r.With(middleware.RequireFeature(middleware.FeatureDatabase, planLookup)).
				Post("/{appId}/database-setup", app.AppDatabaseSetup)
		})
	})

	r.Route("/api/prompts", func(r chi.Router) {
		r.Use(auth)
		r.Post("/create", app.PromptCreate)
		r.Get("/my-prompts", app.PromptList)
		r.Get("/stats", app.PromptStats)
		r.Get("/{promptId}", app.PromptGet)
		r.Put("/{promptId}", app.PromptUpdate)
		r.Delete("/{promptId}", app.PromptDelete)
		r.Post("/{promptId}/retry", app.PromptRetry)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(auth)
		r.Get("/stats", app.UserStats)
		r.Patch("/password", app.UserChangePassword)
		r.Delete("/account", app.UserDeleteAccount)
	})

	r.Route("/api/subscription", func(r chi.Router) {
		r.Get("/plans", app.SubscriptionPlans)
		r.With(auth).Get("/current", app.SubscriptionCurrent)
		r.With(auth).Post("/change-plan", app.SubscriptionChangePlan)
	})

	r.Route("/api/feedback", func(r chi.Router) {
		r.Get("/public", app.FeedbackListPublic)
		r.With(auth).Post("/", app.FeedbackCreate)
		r.With(auth).Get("/my-feedback", app.FeedbackListMine)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth)
		r.Get("/stats", app.AdminStats)
		r.Get("/users", app.AdminListUsers)
		r.Patch("/users/{userId}/status", app.AdminSetUserStatus)
	})

	return r
}
