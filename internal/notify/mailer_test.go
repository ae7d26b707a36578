package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMailerTemplates(t *testing.T) {
	m, err := NewMailer(MailerOptions{Host: "localhost", Port: 1025, From: "noreply@zentra.app"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMailer() error = %v", err)
	}

	tests := []struct {
		template string
		data     map[string]any
		want     string
	}{
		{
			template: TemplateWelcome,
			data:     map[string]any{"Username": "amira", "Plan": "free", "AppLimit": 3, "BaseURL": "https://zentra.app"},
			want:     "amira",
		},
		{
			template: TemplateAppGenerated,
			data:     map[string]any{"Username": "amira", "Title": "Todo Board", "AppURL": "https://zentra.app/app/abc"},
			want:     "Todo Board",
		},
		{
			template: TemplatePlanChanged,
			data:     map[string]any{"Username": "amira", "Plan": "builder", "AppLimit": 100},
			want:     "builder",
		},
	}

	for _, tc := range tests {
		t.Run(tc.template, func(t *testing.T) {
			var buf bytes.Buffer
			if err := m.templates.ExecuteTemplate(&buf, tc.template+".html", tc.data); err != nil {
				t.Fatalf("render %s: %v", tc.template, err)
			}
			if !strings.Contains(buf.String(), tc.want) {
				t.Fatalf("rendered %s does not contain %q", tc.template, tc.want)
			}
		})
	}
}
