package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// Feature slugs gated by plan.
const (
	FeatureAppCreation    = "app_creation"
	FeatureCodeEditing    = "code_editing"
	FeatureCustomDomains  = "custom_domains"
	FeatureGithubExport   = "github_integration"
	FeatureAnalytics      = "analytics_dashboard"
	FeatureAuthSystem     = "authentication_system"
	FeatureDatabase       = "database_functionality"
	FeatureBetaFeatures   = "beta_features"
	FeatureWhiteLabel     = "white_label"
	FeaturePrioritySupprt = "priority_support"
)

// featureMatrix maps each plan to the features it unlocks.
var featureMatrix = map[string][]string{
	"free": {
		FeatureAppCreation,
		FeatureCodeEditing,
	},
	"starter": {
		FeatureAppCreation,
		FeatureCodeEditing,
		FeatureCustomDomains,
		FeatureGithubExport,
		FeaturePrioritySupprt,
	},
	"builder": {
		FeatureAppCreation,
		FeatureCodeEditing,
		FeatureCustomDomains,
		FeatureGithubExport,
		FeatureAnalytics,
		FeatureAuthSystem,
		FeatureDatabase,
		FeaturePrioritySupprt,
	},
	"pro": {
		FeatureAppCreation,
		FeatureCodeEditing,
		FeatureCustomDomains,
		FeatureGithubExport,
		FeatureAnalytics,
		FeatureAuthSystem,
		FeatureDatabase,
		FeatureBetaFeatures,
		FeatureWhiteLabel,
		FeaturePrioritySupprt,
	},
}

// PlanFeatures returns the feature slugs the plan unlocks.
func PlanFeatures(plan string) []string {
	features := featureMatrix[plan]
	out := make([]string, len(features))
	copy(out, features)
	return out
}

// HasFeature reports whether the plan unlocks the feature.
func HasFeature(plan, feature string) bool {
	for _, f := range featureMatrix[plan] {
		if f == feature {
			return true
		}
	}
	return false
}

// RequiredPlan returns the cheapest plan that unlocks the feature.
func RequiredPlan(feature string) string {
	for _, plan := range []string{"free", "starter", "builder", "pro"} {
		if HasFeature(plan, feature) {
			return plan
		}
	}
	return "pro"
}

// PlanLookup resolves the current plan for a user id. The lookup goes to the
// record store so a plan change takes effect without re-issuing tokens.
type PlanLookup func(ctx context.Context, userID string) (string, error)

// RequireFeature rejects requests whose account plan does not unlock feature.
// Must run after AuthJWT.
func RequireFeature(feature string, lookup PlanLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			plan, err := lookup(r.Context(), userID)
			if err != nil {
				http.Error(w, "failed to check feature access", http.StatusInternalServerError)
				return
			}
			if !HasFeature(plan, feature) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":        "feature_not_available",
					"message":      "This feature requires a higher plan. Your current plan: " + plan,
					"requiredPlan": RequiredPlan(feature),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
