package domain

import "time"

// FeedbackType enumerates feedback categories.
type FeedbackType string

const (
	FeedbackBug         FeedbackType = "bug"
	FeedbackFeature     FeedbackType = "feature"
	FeedbackImprovement FeedbackType = "improvement"
	FeedbackComplaint   FeedbackType = "complaint"
	FeedbackPraise      FeedbackType = "praise"
	FeedbackOther       FeedbackType = "other"
)

// ValidFeedbackType reports whether t is a supported feedback type.
func ValidFeedbackType(t FeedbackType) bool {
	switch t {
	case FeedbackBug, FeedbackFeature, FeedbackImprovement, FeedbackComplaint, FeedbackPraise, FeedbackOther:
		return true
	}
	return false
}

// FeedbackStatus enumerates triage states for feedback.
type FeedbackStatus string

const (
	FeedbackNew        FeedbackStatus = "new"
	FeedbackInReview   FeedbackStatus = "in-review"
	FeedbackInProgress FeedbackStatus = "in-progress"
	FeedbackResolved   FeedbackStatus = "resolved"
	FeedbackClosed     FeedbackStatus = "closed"
	FeedbackWontFix    FeedbackStatus = "wont-fix"
)

// Feedback is a user-submitted report or testimonial.
type Feedback struct {
	ID        string
	UserID    string
	Type      FeedbackType
	Subject   string
	Message   string
	AppID     *string
	PromptID  *string
	Priority  string
	Status    FeedbackStatus
	Rating    *int
	IsPublic  bool
	CreatedAt time.Time
}
