package format

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes text for Telegram's HTML parse mode.
// Only &, < and > are significant there; quotes are left as is.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// EscapeLines escapes every line and joins them with newlines.
func EscapeLines(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = EscapeHTML(l)
	}
	return strings.Join(escaped, "\n")
}

// Bold wraps already escaped text in <b>.
func Bold(text string) string {
	return "<b>" + text + "</b>"
}
