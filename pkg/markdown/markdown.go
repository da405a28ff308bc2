package markdown

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday"
)

// ErrEmptyContent is returned for blank input.
var ErrEmptyContent = errors.New("content must not be empty")

var policy = bluemonday.UGCPolicy()

// Render converts markdown to sanitized HTML. Script tags and event
// handlers are stripped before the result is stored.
func Render(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	unsafe := blackfriday.MarkdownCommon([]byte(content))
	return policy.Sanitize(string(unsafe)), nil
}

// SanitizePlain strips every HTML tag from user-supplied text, keeping only
// its text content. Used for titles and short fields.
func SanitizePlain(content string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(content))
}
