package generator

import (
	"encoding/json"
	"errors"
	"strings"
)

// appPayload is the JSON shape the completion service is instructed to return.
type appPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	HTML        string `json:"html"`
	CSS         string `json:"css"`
	JS          string `json:"js"`
}

var (
	errNoJSON        = errors.New("no JSON object found in response")
	errTruncatedJSON = errors.New("unbalanced JSON object in response")
)

// extractJSONObject returns the first balanced {...} span in raw. Model
// replies routinely wrap the object in prose or code fences, so fences are
// stripped first and brace counting ignores braces inside JSON strings.
func extractJSONObject(raw string) (string, error) {
	text := trimCodeFence(raw)
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errTruncatedJSON
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// parseAppPayload extracts and decodes the payload from a raw model reply.
func parseAppPayload(raw string) (*appPayload, error) {
	fragment, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var payload appPayload
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
