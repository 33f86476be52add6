package render

import (
	"strings"
	"testing"
)

func TestCellTextPassesThrough(t *testing.T) {
	h := NewHighlighter("monokai")
	content := "# Heading\nplain prose"
	if got := h.Cell("text", content); got != content {
		t.Fatalf("text cell altered: %q", got)
	}
}

func TestCellUnknownLanguagePassesThrough(t *testing.T) {
	h := NewHighlighter("monokai")
	content := "whatever 42"
	if got := h.Cell("nosuchlang-xyz", content); got != content {
		t.Fatalf("unknown language altered content: %q", got)
	}
}

func TestCellCodeGainsEscapes(t *testing.T) {
	h := NewHighlighter("monokai")
	got := h.Cell("python", "def f():\n    return 1\n")
	if !strings.Contains(got, "\x1b[") {
		t.Fatal("expected ANSI escapes in highlighted code")
	}
	if !strings.Contains(got, "return") {
		t.Fatalf("code text lost: %q", got)
	}
}

func TestCellEmptyContent(t *testing.T) {
	h := NewHighlighter("")
	if got := h.Cell("python", ""); got != "" {
		t.Fatalf("empty content produced output: %q", got)
	}
}
