package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zentra/internal/domain"
	"zentra/internal/storage"
)

// Failure codes surfaced on the prompt record when a generation attempt dies.
const (
	CodeCompletionFailed   = "COMPLETION_FAILED"
	CodeParseError         = "PARSE_ERROR"
	CodeIncompleteResponse = "INCOMPLETE_RESPONSE"
	CodeTimeout            = "TIMEOUT"
	CodeStorageError       = "STORAGE_ERROR"
	CodeUnknown            = "UNKNOWN_ERROR"
)

// Error classifies an engine failure with a stable code.
type Error struct {
	Code string
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.err)
}

func (e *Error) Unwrap() error { return e.err }

func engineErr(code string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		code = CodeTimeout
	}
	return &Error{Code: code, err: err}
}

// ErrorCode extracts the engine failure code from err, defaulting to the
// generic sentinel.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeUnknown
}

// ArtifactWriter is the slice of the artifact store the engine needs.
type ArtifactWriter interface {
	Write(ctx context.Context, id string, assets storage.Assets) error
}

// Result is a successful generation: the persisted artifact id plus the
// parsed metadata and assets. The caller owns all record mutations.
type Result struct {
	AppID          string
	Title          string
	Description    string
	Category       domain.AppCategory
	HTML           string
	CSS            string
	JS             string
	PromptLanguage string
	GenerationTime int64 // milliseconds
}

// Engine turns one free-text instruction into a stored set of app assets.
// The completion client is injected; there is no ambient singleton.
type Engine struct {
	completer Completer
	store     ArtifactWriter
	logger    zerolog.Logger
}

// NewEngine builds an Engine around a completion client and artifact store.
func NewEngine(completer Completer, store ArtifactWriter, logger zerolog.Logger) *Engine {
	return &Engine{completer: completer, store: store, logger: logger}
}

// Generate runs the full pipeline: detect language, build the instruction
// pair, call the completion service once, parse and validate the reply, and
// persist the assets under a fresh artifact id. No retry on transient
// failure; every error carries a classification code.
func (e *Engine) Generate(ctx context.Context, promptText, userID string) (*Result, error) {
	start := time.Now()
	language := DetectLanguage(promptText)

	e.logger.Info().
		Str("user_id", userID).
		Str("language", language).
		Int("prompt_len", len(promptText)).
		Msg("generating app")

	raw, err := e.completer.Complete(ctx, systemPrompt(language), userPrompt(promptText, language))
	if err != nil {
		return nil, engineErr(CodeCompletionFailed, err)
	}

	payload, err := parseAppPayload(raw)
	if err != nil {
		return nil, engineErr(CodeParseError, err)
	}
	if payload.HTML == "" || payload.CSS == "" || payload.JS == "" || payload.Title == "" {
		return nil, engineErr(CodeIncompleteResponse, errors.New("incomplete app data received from model"))
	}
	// Category and description may be defaulted; the assets above may not.
	description := payload.Description
	if description == "" {
		description = "Generated web application"
	}
	category := domain.NormalizeCategory(payload.Category)

	appID := uuid.NewString()
	assets := storage.Assets{HTML: payload.HTML, CSS: payload.CSS, JS: payload.JS}
	if err := e.store.Write(ctx, appID, assets); err != nil {
		return nil, engineErr(CodeStorageError, err)
	}

	elapsed := time.Since(start).Milliseconds()
	e.logger.Info().
		Str("user_id", userID).
		Str("app_id", appID).
		Int64("elapsed_ms", elapsed).
		Msg("app generated")

	return &Result{
		AppID:          appID,
		Title:          payload.Title,
		Description:    description,
		Category:       category,
		HTML:           payload.HTML,
		CSS:            payload.CSS,
		JS:             payload.JS,
		PromptLanguage: language,
		GenerationTime: elapsed,
	}, nil
}
