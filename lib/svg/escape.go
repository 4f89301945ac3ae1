package svg

import "strings"

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
	"\n", "&#xA;",
)

// EscapeText escapes s for SVG text content and attribute values.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
