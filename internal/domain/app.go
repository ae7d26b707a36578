package domain

import "time"

// AppCategory enumerates the fixed category set for generated apps.
type AppCategory string

const (
	CategoryBusiness      AppCategory = "business"
	CategoryEducation     AppCategory = "education"
	CategoryEntertainment AppCategory = "entertainment"
	CategoryProductivity  AppCategory = "productivity"
	CategorySocial        AppCategory = "social"
	CategoryUtility       AppCategory = "utility"
	CategoryOther         AppCategory = "other"
)

// ValidCategory reports whether c belongs to the fixed category set.
func ValidCategory(c AppCategory) bool {
	switch c {
	case CategoryBusiness, CategoryEducation, CategoryEntertainment,
		CategoryProductivity, CategorySocial, CategoryUtility, CategoryOther:
		return true
	}
	return false
}

// NormalizeCategory maps an arbitrary category string onto the fixed set,
// defaulting to "other" for anything the engine invented.
func NormalizeCategory(raw string) AppCategory {
	c := AppCategory(raw)
	if ValidCategory(c) {
		return c
	}
	return CategoryOther
}

// AuthConfig is the optional per-app authentication add-on.
type AuthConfig struct {
	Enabled   bool     `json:"enabled"`
	Type      string   `json:"type"`
	Providers []string `json:"providers,omitempty"`
}

// DatabaseConfig is the optional per-app database add-on.
type DatabaseConfig struct {
	Enabled     bool     `json:"enabled"`
	Type        string   `json:"type"`
	Collections []string `json:"collections,omitempty"`
}

// App is a saved generated application owned by exactly one user.
type App struct {
	ID             string
	UserID         string
	AppID          string // artifact identifier, distinct from the row id
	Title          string
	Description    string
	Prompt         string
	PromptLanguage string
	HTMLContent    string
	CSSContent     string
	JSContent      string
	IsPublished    bool
	IsPublic       bool
	PublicURL      *string
	Views          int
	Likes          int
	Shares         int
	Tags           []string
	Category       AppCategory
	GenerationTime int64 // milliseconds
	CustomDomain   *string
	AuthConfig     *AuthConfig
	DatabaseConfig *DatabaseConfig
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastViewed     time.Time
}

// ComputePublicURL returns the public URL for the app, or nil unless the app
// is both published and public.
func (a App) ComputePublicURL(baseURL string) *string {
	if !a.IsPublished || !a.IsPublic {
		return nil
	}
	url := baseURL + "/app/" + a.AppID
	return &url
}

// AppViewEvent records a single non-owner view for analytics.
type AppViewEvent struct {
	AppID    string
	Country  string
	ViewedAt time.Time
}

// AppAnalytics summarizes interaction counters for one app.
type AppAnalytics struct {
	Views     int            `json:"views"`
	Likes     int            `json:"likes"`
	Shares    int            `json:"shares"`
	Countries map[string]int `json:"countries"`
}
