package domain

import (
	"strings"
	"time"
)

// PromptStatus enumerates generation request lifecycle states.
type PromptStatus string

const (
	PromptStatusPending    PromptStatus = "pending"
	PromptStatusProcessing PromptStatus = "processing"
	PromptStatusCompleted  PromptStatus = "completed"
	PromptStatusFailed     PromptStatus = "failed"
)

// AppType enumerates requested output categories for a prompt.
type AppType string

const (
	AppTypeWeb       AppType = "web"
	AppTypeMobile    AppType = "mobile"
	AppTypeDesktop   AppType = "desktop"
	AppTypeAPI       AppType = "api"
	AppTypeFullstack AppType = "fullstack"
	AppTypeOther     AppType = "other"
)

// ValidAppType reports whether t is a supported app type.
func ValidAppType(t AppType) bool {
	switch t {
	case AppTypeWeb, AppTypeMobile, AppTypeDesktop, AppTypeAPI, AppTypeFullstack, AppTypeOther:
		return true
	}
	return false
}

// Prompt text length bounds. The wider queued-prompt bound is used for every
// submission path so direct and queued generation behave identically.
const (
	PromptTextMinLen = 10
	PromptTextMaxLen = 5000
)

// PromptError captures the failure detail of a failed generation attempt.
type PromptError struct {
	Message   string
	Code      string
	Timestamp time.Time
}

// Prompt is one generation request and its lifecycle record.
type Prompt struct {
	ID             string
	UserID         string
	PromptText     string
	AppType        AppType
	Language       string
	Status         PromptStatus
	GeneratedAppID *string
	Error          *PromptError
	WordCount      int
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CountWords returns the whitespace-separated word count of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CanTransition reports whether moving from the current status to next is a
// legal state-machine step. Forward transitions only, except the failed →
// pending retry edge.
func (p Prompt) CanTransition(next PromptStatus) bool {
	switch p.Status {
	case PromptStatusPending:
		return next == PromptStatusProcessing || next == PromptStatusFailed
	case PromptStatusProcessing:
		return next == PromptStatusCompleted || next == PromptStatusFailed
	case PromptStatusFailed:
		return next == PromptStatusPending
	}
	return false
}

// CanRetry reports whether the prompt is eligible for a retry.
func (p Prompt) CanRetry() bool {
	return p.Status == PromptStatusFailed
}

// Editable reports whether user edits are currently allowed.
func (p Prompt) Editable() bool {
	return p.Status != PromptStatusProcessing
}

// PromptStats aggregates a user's prompts by status.
type PromptStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
}
