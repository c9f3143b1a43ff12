package render

import (
	"bytes"
	"html"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders message content to HTML for the chat page scrollback.
type Markdown struct {
	parser goldmark.Markdown
}

// NewMarkdown creates a renderer with GitHub-flavored markdown extensions.
func NewMarkdown() *Markdown {
	return &Markdown{
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Table,
				extension.TaskList,
				extension.Strikethrough,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithHardWraps(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render converts markdown content to HTML. On a conversion failure the content
// is returned escaped instead, so a message is never dropped from the page.
func (m *Markdown) Render(content string) string {
	var buf bytes.Buffer
	if err := m.parser.Convert([]byte(content), &buf); err != nil {
		slog.Warn("markdown conversion failed, falling back to escaped text", "error", err)
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}
