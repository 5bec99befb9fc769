package utils

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// RenderMarkdown converts raw markdown to HTML, auto-linking bare URLs, then
// strips disallowed tags and attributes.
func RenderMarkdown(raw string) string {
	rendered := blackfriday.Run([]byte(raw),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.Autolink))
	return string(sanitizer.SanitizeBytes(rendered))
}
