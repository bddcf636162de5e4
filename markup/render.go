package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML is passed through so color spans survive the preview. Content is
// authored by the only user of the instance.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts note content to an HTML fragment. Tables, strikethrough,
// task lists and autolinks follow GitHub Flavored Markdown.
func Render(content string) (string, error) {
	var b bytes.Buffer
	if err := mdRenderer.Convert([]byte(content), &b); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return b.String(), nil
}
