// Package toc derives a table of contents from notebook text cells: heading
// lines are extracted per cell and tracked against the notebook's cell order.
package toc

import (
	"regexp"
	"strings"

	"github.com/ahuret/polynote/internal/notebook"
)

// Level is a heading nesting depth, h1 through h6.
type Level int

const (
	H1 Level = iota + 1
	H2
	H3
	H4
	H5
	H6
)

// Tag returns the semantic marker for the level ("h1".."h6").
func (l Level) Tag() string {
	switch l {
	case H1:
		return "h1"
	case H2:
		return "h2"
	case H3:
		return "h3"
	case H4:
		return "h4"
	case H5:
		return "h5"
	case H6:
		return "h6"
	default:
		return "h6"
	}
}

// Heading is one extracted heading line from a text cell.
type Heading struct {
	Title  string
	CellID int
	Level  Level
	Active bool
}

// Table maps a cell id to its headings in document order. A nil Table means
// no notebook is bound; lookups and mutations on nil are safe no-ops.
type Table map[int][]Heading

// headingLine matches 1-6 marker characters followed by at least one
// non-newline character, anywhere in the content (multiline).
var headingLine = regexp.MustCompile(`(?m)#{1,6}[^\n]+`)

// Extract scans content for heading lines and returns one Heading per match,
// in document order, all inactive.
//
// Each match is trimmed and split at its first space: the left part must be a
// run of 1-6 '#' characters (the level), the right part becomes the title.
// Lines whose marker has no following space, runs longer than six, and
// markers mixed with other characters are skipped rather than producing a
// malformed entry.
func Extract(cellID int, content string) []Heading {
	var headings []Heading
	for _, match := range headingLine.FindAllString(content, -1) {
		line := strings.TrimSpace(match)
		cut := strings.Index(line, " ")
		if cut < 0 {
			continue
		}
		marker, title := line[:cut], line[cut+1:]
		if len(marker) > 6 || strings.Count(marker, "#") != len(marker) {
			continue
		}
		if title == "" {
			continue
		}
		headings = append(headings, Heading{
			Title:  title,
			CellID: cellID,
			Level:  Level(len(marker)),
		})
	}
	return headings
}

// Replace re-extracts headings for a cell, carrying the active flag over to
// the first new heading when the cell's previous first heading was active.
// The flag does not otherwise survive re-extraction.
func (t Table) Replace(cellID int, content string) {
	if t == nil {
		return
	}
	headings := Extract(cellID, content)
	if prev, ok := t[cellID]; ok && len(prev) > 0 && prev[0].Active && len(headings) > 0 {
		headings[0].Active = true
	}
	t[cellID] = headings
}

// MarkActive sets the active flag on newCellID's first heading, clearing it
// from oldCellID's first heading when oldCellID is supplied (>= 0). Only the
// first heading of a cell ever carries the flag. Safe on a nil table.
func (t Table) MarkActive(newCellID, oldCellID int) {
	if t == nil {
		return
	}
	if oldCellID >= 0 {
		if prev, ok := t[oldCellID]; ok && len(prev) > 0 {
			prev[0].Active = false
		}
	}
	if next, ok := t[newCellID]; ok && len(next) > 0 {
		next[0].Active = true
	}
}

// ClearActive removes the active flag from every heading in the table.
func (t Table) ClearActive() {
	for _, headings := range t {
		for i := range headings {
			headings[i].Active = false
		}
	}
}

// ActiveCell returns the id of the cell whose first heading is active, or
// false when no heading is marked.
func (t Table) ActiveCell() (int, bool) {
	for id, headings := range t {
		if len(headings) > 0 && headings[0].Active {
			return id, true
		}
	}
	return 0, false
}

// Empty reports whether the table holds no headings at all.
func (t Table) Empty() bool {
	for _, headings := range t {
		if len(headings) > 0 {
			return false
		}
	}
	return true
}

// NearestCell locates activeCell in order and walks backward to the closest
// cell at or above it that has at least one heading. The second return value
// is false when order is empty, activeCell is absent, or no prior cell has
// headings.
func (t Table) NearestCell(order []int, activeCell int) (int, bool) {
	if t == nil || t.Empty() {
		return 0, false
	}
	pos := -1
	for i, id := range order {
		if id == activeCell {
			pos = i
			break
		}
	}
	for i := pos; i >= 0; i-- {
		if len(t[order[i]]) > 0 {
			return order[i], true
		}
	}
	return 0, false
}

// FromCells builds a fresh table covering every text cell in cells.
func FromCells(cells map[int]notebook.Cell) Table {
	t := make(Table, len(cells))
	for id, cell := range cells {
		if !cell.IsText() {
			continue
		}
		t[id] = Extract(id, cell.Content)
	}
	return t
}
