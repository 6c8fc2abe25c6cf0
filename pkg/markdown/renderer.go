package markdown

import (
	"fmt"
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var alignment = regexp.MustCompile(`^(left|right|center)$`)

// RenderToHTML converts a markdown report to sanitized HTML. Tables keep
// their column alignment.
func RenderToHTML(markdown string) string {
	unsafeHTML := blackfriday.Run(
		[]byte(markdown),
		blackfriday.WithExtensions(
			blackfriday.CommonExtensions|
				blackfriday.AutoHeadingIDs,
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowTables()
	policy.AllowAttrs("align").Matching(alignment).OnElements("td", "th")
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3")

	return string(policy.SanitizeBytes(unsafeHTML))
}

// Document wraps RenderToHTML output in a standalone HTML page.
func Document(title, markdown string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
table { border-collapse: collapse; font-family: monospace; }
th, td { border: 1px solid #ccc; padding: 2px 8px; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), RenderToHTML(markdown))
}
