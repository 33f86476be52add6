// Package importer converts external documents into notebooks of text cells.
package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ahuret/polynote/internal/notebook"
)

var extraneousWhitespace = regexp.MustCompile(`[ \t]{2,}`)

// sectionStart matches lines that look like numbered section titles
// ("1 Introduction", "2.3 Results").
var sectionStart = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\S`)

// FromPDF extracts the plain text of a PDF into a notebook: one text cell
// per detected section, each opened with a heading line so the table of
// contents picks the sections up.
func FromPDF(path, name string) (*notebook.Notebook, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return nil, err
	}
	return FromText(builder.String(), name), nil
}

// FromText builds the notebook from already-extracted text. Split out so the
// sectioning logic is testable without PDF fixtures.
func FromText(text, name string) *notebook.Notebook {
	nb := &notebook.Notebook{Name: name}
	for _, section := range splitSections(text) {
		nb.Cells = append(nb.Cells, notebook.Cell{
			ID:       nb.NextCellID(),
			Language: notebook.LanguageText,
			Content:  section,
		})
	}
	if len(nb.Cells) == 0 {
		nb.Cells = append(nb.Cells, notebook.Cell{
			ID:       nb.NextCellID(),
			Language: notebook.LanguageText,
			Content:  "# " + name + "\n",
		})
	}
	return nb
}

// splitSections cuts text at numbered section titles; each section becomes a
// chunk whose first line is rewritten as a heading. Text before the first
// section title becomes an untitled preamble cell.
func splitSections(text string) []string {
	lines := strings.Split(normalize(text), "\n")
	var sections []string
	var current []string

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(current, "\n"))
		if chunk != "" {
			sections = append(sections, chunk+"\n")
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if sectionStart.MatchString(trimmed) {
			flush()
			current = append(current, "# "+trimmed)
			continue
		}
		current = append(current, line)
	}
	flush()
	return sections
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return extraneousWhitespace.ReplaceAllString(text, " ")
}
