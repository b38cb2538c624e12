// Package xmlescape escapes the five XML metacharacters in free-text values
// before they are interpolated into generated documents. Downstream
// validators reject raw metacharacters, so no text field may bypass this.
package xmlescape

import "strings"

var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape returns s with &, <, >, " and ' replaced by their entity forms.
func Escape(s string) string {
	return replacer.Replace(s)
}
