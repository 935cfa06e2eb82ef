// Package sanitize renders model output for display in the client.
package sanitize

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts markdown to HTML that is safe to inject in a page.
type Renderer struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewRenderer creates a Renderer that keeps formatting tags and tables and
// strips scripts, styles and event handlers.
func NewRenderer() *Renderer {
	return &Renderer{
		policy:   bluemonday.UGCPolicy(),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML renders text as sanitized HTML. If the markdown cannot be converted
// the escaped text is returned.
func (r *Renderer) HTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	return r.policy.Sanitize(buf.String())
}
