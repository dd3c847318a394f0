package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips all markup from user-supplied plain text such as
// names, group names and notes. The policy escapes the text it keeps, so the
// entities are decoded again: the API stores and returns plain text and
// escaping happens wherever it is rendered.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
}
