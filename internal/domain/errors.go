package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrEngineFailure    = errors.New("generation engine failure")
	ErrDuplicateArtifact = errors.New("artifact already exists")
)
