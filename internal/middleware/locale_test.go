package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "AR")
				r.Header.Set("Accept-Language", "en-US")
			},
			want: "ar",
		},
		{
			name: "accept-language english",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "en",
		},
		{
			name: "accept-language arabic preference",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ar-EG,en;q=0.8")
			},
			want: "ar",
		},
		{
			name: "accept-language unsupported falls back to en",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-FR,de;q=0.7")
			},
			fallback: "ar",
			want:     "en",
		},
		{
			name: "regional arabic narrowed to base",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ar-SA")
			},
			want: "ar",
		},
		{
			name: "unsupported language falls back to en",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "fr")
			},
			want: "en",
		},
		{
			name:     "configured fallback",
			fallback: "ar",
			want:     "ar",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			if got := resolveLocale(req, tc.fallback); got != tc.want {
				t.Fatalf("resolveLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "ar")
	if got := LocaleFromContext(ctx); got != "ar" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "ar")
	}
}
