package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"zentra/internal/domain"
	"zentra/internal/storage"
)

type stubCompleter struct {
	reply string
	err   error
	// captured inputs
	system string
	user   string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type memWriter struct {
	writes map[string]storage.Assets
	err    error
}

func (m *memWriter) Write(ctx context.Context, id string, assets storage.Assets) error {
	if m.err != nil {
		return m.err
	}
	if m.writes == nil {
		m.writes = make(map[string]storage.Assets)
	}
	m.writes[id] = assets
	return nil
}

const validReply = `{"title":"Todo List","description":"Track tasks","category":"productivity",` +
	`"html":"<!DOCTYPE html><html><body><ul id=\"list\"></ul></body></html>","css":"ul{margin:0}","js":"console.log(1)"}`

func newTestEngine(c Completer, w ArtifactWriter) *Engine {
	return NewEngine(c, w, zerolog.Nop())
}

func TestGenerateSuccess(t *testing.T) {
	completer := &stubCompleter{reply: "Here it is:\n" + validReply}
	writer := &memWriter{}
	engine := newTestEngine(completer, writer)

	res, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.PromptLanguage != "en" {
		t.Errorf("PromptLanguage = %s, want en", res.PromptLanguage)
	}
	if res.Title != "Todo List" || res.Category != domain.CategoryProductivity {
		t.Errorf("metadata = %q/%s", res.Title, res.Category)
	}
	if res.AppID == "" {
		t.Error("missing artifact id")
	}
	stored, ok := writer.writes[res.AppID]
	if !ok {
		t.Fatal("assets not written under artifact id")
	}
	if stored.CSS != "ul{margin:0}" {
		t.Errorf("stored css = %q", stored.CSS)
	}
	if !strings.Contains(completer.user, "Create a todo list app") {
		t.Error("user prompt does not embed the instruction")
	}
	if !strings.Contains(completer.system, "Return a JSON object") {
		t.Error("system prompt missing response format rules")
	}
}

func TestGenerateArabicPromptSelectsArabicTemplate(t *testing.T) {
	completer := &stubCompleter{reply: validReply}
	engine := newTestEngine(completer, &memWriter{})

	res, err := engine.Generate(context.Background(), "أنشئ تطبيق متجر", "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.PromptLanguage != "ar" {
		t.Errorf("PromptLanguage = %s, want ar", res.PromptLanguage)
	}
	if completer.system == systemPromptEN {
		t.Error("expected the Arabic system prompt")
	}
}

func TestGenerateNoJSONInReply(t *testing.T) {
	completer := &stubCompleter{reply: "I could not produce an app."}
	writer := &memWriter{}
	engine := newTestEngine(completer, writer)

	_, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ErrorCode(err); code != CodeParseError {
		t.Fatalf("code = %s, want PARSE_ERROR", code)
	}
	if len(writer.writes) != 0 {
		t.Error("no artifact should be written on parse failure")
	}
}

func TestGenerateMissingRequiredAssets(t *testing.T) {
	// css/js present but html absent: hard failure, no defaulting.
	completer := &stubCompleter{reply: `{"title":"X","css":"a{}","js":";"}`}
	engine := newTestEngine(completer, &memWriter{})

	_, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if code := ErrorCode(err); code != CodeIncompleteResponse {
		t.Fatalf("code = %s, want INCOMPLETE_RESPONSE", code)
	}
}

func TestGenerateLenientDefaults(t *testing.T) {
	// category and description absent: defaulted, not failed.
	completer := &stubCompleter{reply: `{"title":"X","html":"<p>a</p>","css":"a{}","js":";"}`}
	engine := newTestEngine(completer, &memWriter{})

	res, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Category != domain.CategoryOther {
		t.Errorf("Category = %s, want other", res.Category)
	}
	if res.Description != "Generated web application" {
		t.Errorf("Description = %q", res.Description)
	}
}

func TestGenerateCompletionFailure(t *testing.T) {
	completer := &stubCompleter{err: errors.New("connection refused")}
	engine := newTestEngine(completer, &memWriter{})

	_, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if code := ErrorCode(err); code != CodeCompletionFailed {
		t.Fatalf("code = %s, want COMPLETION_FAILED", code)
	}
}

func TestGenerateTimeoutClassified(t *testing.T) {
	completer := &stubCompleter{err: context.DeadlineExceeded}
	engine := newTestEngine(completer, &memWriter{})

	_, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if code := ErrorCode(err); code != CodeTimeout {
		t.Fatalf("code = %s, want TIMEOUT", code)
	}
}

func TestGenerateStorageFailure(t *testing.T) {
	completer := &stubCompleter{reply: validReply}
	writer := &memWriter{err: errors.New("disk full")}
	engine := newTestEngine(completer, writer)

	_, err := engine.Generate(context.Background(), "Create a todo list app", "user-1")
	if code := ErrorCode(err); code != CodeStorageError {
		t.Fatalf("code = %s, want STORAGE_ERROR", code)
	}
}

func TestErrorCodeUnknown(t *testing.T) {
	if code := ErrorCode(errors.New("misc")); code != CodeUnknown {
		t.Fatalf("code = %s, want UNKNOWN_ERROR", code)
	}
}
