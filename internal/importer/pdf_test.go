package importer

import (
	"strings"
	"testing"

	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/toc"
)

const sampleText = `Some preamble before the paper starts.

1 Introduction
We present a thing.

2 Method
It works like this.

2.1 Details
More depth here.
`

func TestFromTextSplitsSections(t *testing.T) {
	nb := FromText(sampleText, "paper")
	if nb.Name != "paper" {
		t.Fatalf("name = %q", nb.Name)
	}
	if len(nb.Cells) != 4 {
		t.Fatalf("expected preamble + 3 sections, got %d cells", len(nb.Cells))
	}
	for i, cell := range nb.Cells {
		if cell.ID != i {
			t.Fatalf("cell %d has id %d", i, cell.ID)
		}
		if cell.Language != notebook.LanguageText {
			t.Fatalf("cell %d language = %q", i, cell.Language)
		}
	}
	if !strings.HasPrefix(nb.Cells[1].Content, "# 1 Introduction") {
		t.Fatalf("section heading missing: %q", nb.Cells[1].Content)
	}
}

func TestFromTextSectionsFeedTheTOC(t *testing.T) {
	nb := FromText(sampleText, "paper")
	table := toc.FromCells(nb.CellMap())
	total := 0
	for _, headings := range table {
		total += len(headings)
	}
	if total != 3 {
		t.Fatalf("expected 3 headings across cells, got %d", total)
	}
}

func TestFromTextEmptyInput(t *testing.T) {
	nb := FromText("", "blank")
	if len(nb.Cells) != 1 {
		t.Fatalf("expected single fallback cell, got %d", len(nb.Cells))
	}
	if !strings.HasPrefix(nb.Cells[0].Content, "# blank") {
		t.Fatalf("fallback cell content = %q", nb.Cells[0].Content)
	}
}

func TestFromPDFMissingFile(t *testing.T) {
	if _, err := FromPDF("/no/such/file.pdf", "x"); err == nil {
		t.Fatal("expected error for missing pdf")
	}
}
