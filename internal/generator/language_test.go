package generator

import "testing"

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"Create a todo list app", "en"},
		{"", "en"},
		{"Créer une application", "en"}, // not Arabic, defaults to en
		{"أنشئ تطبيق قائمة مهام", "ar"},
		{"Build an app for متجر صغير", "ar"}, // any Arabic character wins
		{"ﭐ", "ar"},                     // presentation forms range
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.prompt); got != tc.want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", tc.prompt, got, tc.want)
		}
	}
}
