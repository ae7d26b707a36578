package storage

import (
	"strings"
	"testing"
)

func TestCombineDocumentExtractsHeadAndBody(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title>Todo</title><meta name="x" content="y"></head>
<body class="app"><main id="root">content</main></body>
</html>`
	doc := CombineDocument(html, "main { padding: 1rem; }", "init();")

	if !strings.Contains(doc, "<title>Todo</title>") {
		t.Error("head content not preserved")
	}
	if !strings.Contains(doc, `<main id="root">content</main>`) {
		t.Error("body content not extracted")
	}
	if strings.Contains(doc, `class="app"`) {
		t.Error("outer body tag should be stripped")
	}
	if !strings.Contains(doc, "main { padding: 1rem; }") {
		t.Error("css not inlined verbatim")
	}
	if !strings.Contains(doc, "init();") {
		t.Error("js not inlined verbatim")
	}
	// Script is appended at the end of body, after the markup content.
	if strings.Index(doc, "init();") < strings.Index(doc, "content") {
		t.Error("script not placed after body content")
	}
}

func TestCombineDocumentWithoutBodyTag(t *testing.T) {
	raw := `<div class="fragment">no document shell</div>`
	doc := CombineDocument(raw, ".fragment{}", "run()")
	if !strings.Contains(doc, raw) {
		t.Error("raw markup not used verbatim as body content")
	}
}

func TestCombineDocumentCaseInsensitiveTags(t *testing.T) {
	html := `<HTML><HEAD><title>Up</title></HEAD><BODY><p>upper</p></BODY></HTML>`
	doc := CombineDocument(html, "", "")
	if !strings.Contains(doc, "<p>upper</p>") {
		t.Error("uppercase body tag not matched")
	}
	if !strings.Contains(doc, "<title>Up</title>") {
		t.Error("uppercase head tag not matched")
	}
}
