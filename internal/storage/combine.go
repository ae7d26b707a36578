package storage

import (
	"fmt"
	"regexp"
)

var (
	bodyRe = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	headRe = regexp.MustCompile(`(?is)<head[^>]*>(.*?)</head>`)
)

// CombineDocument merges the three assets into a single renderable document:
// the markup's head content is preserved, the styles are inlined in a style
// block and the script is appended at the end of body. When the markup has no
// body tag it is used verbatim as the body content.
func CombineDocument(html, css, js string) string {
	bodyContent := html
	if m := bodyRe.FindStringSubmatch(html); m != nil {
		bodyContent = m[1]
	}
	headContent := ""
	if m := headRe.FindStringSubmatch(html); m != nil {
		headContent = m[1]
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    %s
    <style>
        %s
    </style>
</head>
<body>
    %s
    <script>
        %s
    </script>
</body>
</html>`, headContent, css, bodyContent, js)
}
