package markdown

import (
	"strings"
	"testing"
)

func TestRenderToHTML_Table(t *testing.T) {
	input := "| ID | Count |\n|---|---:|\n| `123` | 4 |\n| `1A` | 2 |\n"

	result := RenderToHTML(input)

	expectedElements := []string{
		"<table>",
		"<thead>", "<tbody>",
		"<th>ID</th>",
		`align="right"`,
		">4</td>",
		"<code>123</code>",
		"<code>1A</code>",
	}
	for _, expected := range expectedElements {
		if !strings.Contains(result, expected) {
			t.Errorf("Table markdown missing expected element: %q\nResult: %s", expected, result)
		}
	}
}

func TestRenderToHTML_Heading(t *testing.T) {
	result := RenderToHTML("# CAN traffic\n\n3 frames.")

	for _, expected := range []string{"<h1", `id="can-traffic"`, "CAN traffic</h1>", "<p>3 frames.</p>"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderToHTML() missing %q\nResult: %s", expected, result)
		}
	}
}

func TestRenderToHTML_XSSPrevention(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		shouldBlock string
	}{
		{
			name:        "script tag",
			input:       "<script>alert('xss')</script>",
			shouldBlock: "<script>",
		},
		{
			name:        "script in table cell",
			input:       "| ID |\n|---|\n| <script>alert(1)</script> |\n",
			shouldBlock: "<script>",
		},
		{
			name:        "onclick handler",
			input:       "<a href=\"#\" onclick=\"alert('xss')\">Click me</a>",
			shouldBlock: "onclick",
		},
		{
			name:        "bad alignment attribute",
			input:       "<table><tr><td align=\"javascript:x\">1</td></tr></table>",
			shouldBlock: "javascript:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderToHTML(tt.input)

			if strings.Contains(result, tt.shouldBlock) {
				t.Errorf("XSS vector not blocked.\nInput: %s\nBlocked string: %q\nResult: %s",
					tt.input, tt.shouldBlock, result)
			}
		})
	}
}

func TestRenderToHTML_Empty(t *testing.T) {
	if result := strings.TrimSpace(RenderToHTML("")); result != "" {
		t.Errorf("RenderToHTML() = %q, want empty string", result)
	}
}

func TestDocument(t *testing.T) {
	result := Document("A <b> title", "| ID |\n|---|\n| `7` |\n")

	if !strings.HasPrefix(result, "<!DOCTYPE html>") {
		t.Errorf("Document() should start with a doctype, got %q", result[:20])
	}
	if !strings.Contains(result, "<title>A &lt;b&gt; title</title>") {
		t.Error("Document() should escape the title")
	}
	if !strings.Contains(result, "<code>7</code>") {
		t.Error("Document() should contain the rendered body")
	}
}
