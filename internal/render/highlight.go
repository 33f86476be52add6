// Package render turns cell content into styled terminal text.
package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// Highlighter applies syntax highlighting to code cells based on their
// language tag.
type Highlighter struct {
	theme string
}

// NewHighlighter creates a highlighter using the given chroma theme name.
func NewHighlighter(theme string) *Highlighter {
	if theme == "" {
		theme = "monokai"
	}
	return &Highlighter{theme: theme}
}

// Cell highlights the content of a cell in the given language. Text cells
// and unknown languages come back unchanged.
func (h *Highlighter) Cell(language, content string) string {
	if content == "" {
		return ""
	}
	lexerName := lexerFor(language)
	if lexerName == "" {
		return content
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, lexerName, "terminal16m", h.theme); err != nil {
		return content
	}
	return strings.TrimRight(buf.String(), "\n")
}

// lexerFor maps a notebook language tag to a chroma lexer name. An empty
// result means render plain.
func lexerFor(language string) string {
	switch language {
	case "", "text":
		return ""
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
