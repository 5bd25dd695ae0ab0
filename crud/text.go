package crud

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every tag from user supplied text.
var strictPolicy = bluemonday.StrictPolicy()

// plainText strips any markup from s and trims its whitespaces.
// The sanitizer escapes the text it keeps, the result is unescaped again,
// so "Tom & Jerry" is stored as sent and not as "Tom &amp; Jerry".
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
