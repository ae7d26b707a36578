package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree    UserPlan = "free"
	UserPlanStarter UserPlan = "starter"
	UserPlanBuilder UserPlan = "builder"
	UserPlanPro     UserPlan = "pro"
)

// UnlimitedApps marks a plan without an app ceiling.
const UnlimitedApps = -1

// planCeilings maps each plan to the number of apps it may create.
var planCeilings = map[UserPlan]int{
	UserPlanFree:    3,
	UserPlanStarter: 25,
	UserPlanBuilder: 100,
	UserPlanPro:     UnlimitedApps,
}

// ValidPlan reports whether the plan belongs to the supported set.
func ValidPlan(p UserPlan) bool {
	_, ok := planCeilings[p]
	return ok
}

// PlanCeiling returns the app ceiling for the plan, or UnlimitedApps.
// Unknown plans fall back to the free ceiling.
func PlanCeiling(p UserPlan) int {
	if c, ok := planCeilings[p]; ok {
		return c
	}
	return planCeilings[UserPlanFree]
}

// User represents a registered account.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Plan              UserPlan
	PreferredLanguage string
	AppsCreated       int
	IsActive          bool
	IsAdmin           bool
	PlanExpiry        *time.Time
	CreatedAt         time.Time
	LastLogin         time.Time
}

// CanCreateApp reports whether the user is below the plan ceiling.
// The check is evaluated against the live counter on every attempt.
func (u User) CanCreateApp() bool {
	ceiling := PlanCeiling(u.Plan)
	if ceiling == UnlimitedApps {
		return true
	}
	return u.AppsCreated < ceiling
}

// RemainingApps returns the number of apps the user may still create,
// or UnlimitedApps for plans without a ceiling. Never negative.
func (u User) RemainingApps() int {
	ceiling := PlanCeiling(u.Plan)
	if ceiling == UnlimitedApps {
		return UnlimitedApps
	}
	remaining := ceiling - u.AppsCreated
	if remaining < 0 {
		return 0
	}
	return remaining
}
