// Package markdown converts inline Markdown, as translators sometimes write
// messages, into XML message text.
package markdown

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ErrNotInline is returned for Markdown that renders to anything other than
// a single paragraph.
var ErrNotInline = errors.New("markdown: message must be a single paragraph")

// ToXML renders md as XHTML and returns the content of its single paragraph.
// Inline tags already present in md are kept as is, and ICU arguments pass
// through untouched.
func ToXML(md string) (string, error) {
	opts := html.RendererOptions{
		Flags: html.UseXHTML,
	}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.NoIntraEmphasis | parser.Strikethrough)
	out := strings.TrimSpace(string(markdown.Render(p.Parse([]byte(md)), renderer)))

	if out == "" {
		return "", nil
	}
	inner, ok := strings.CutPrefix(out, "<p>")
	if !ok {
		return "", ErrNotInline
	}
	inner, ok = strings.CutSuffix(inner, "</p>")
	if !ok || strings.Contains(inner, "<p>") {
		return "", ErrNotInline
	}
	return inner, nil
}

// StripTags removes everything between < and >.
func StripTags(text string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range text {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}
