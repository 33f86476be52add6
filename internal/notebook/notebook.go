// Package notebook defines the on-disk notebook format: a named list of
// cells, each carrying a language tag and textual content.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LanguageText marks cells whose content is prose with markdown-style
// headings. Every other language tag is treated as executable code.
const LanguageText = "text"

// Cell is one addressable unit of notebook content.
type Cell struct {
	ID       int    `json:"id"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

// IsText reports whether the cell holds prose rather than code.
func (c Cell) IsText() bool {
	return c.Language == LanguageText
}

// Notebook is the persisted document: cell order matters and ids are unique.
type Notebook struct {
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

// Extension is the file suffix notebooks are stored under.
const Extension = ".pnb.json"

// Load reads and validates a notebook file.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("notebook %s: %w", filepath.Base(path), err)
	}
	seen := make(map[int]struct{}, len(nb.Cells))
	for _, cell := range nb.Cells {
		if _, dup := seen[cell.ID]; dup {
			return nil, fmt.Errorf("notebook %s: duplicate cell id %d", filepath.Base(path), cell.ID)
		}
		seen[cell.ID] = struct{}{}
	}
	if nb.Name == "" {
		nb.Name = DisplayName(path)
	}
	return &nb, nil
}

// Save writes the notebook to path, creating parent directories as needed.
func Save(path string, nb *Notebook) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(nb, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NextCellID returns an id one past the highest in use.
func (nb *Notebook) NextCellID() int {
	next := 0
	for _, cell := range nb.Cells {
		if cell.ID >= next {
			next = cell.ID + 1
		}
	}
	return next
}

// Order returns the cell ids in document order.
func (nb *Notebook) Order() []int {
	order := make([]int, 0, len(nb.Cells))
	for _, cell := range nb.Cells {
		order = append(order, cell.ID)
	}
	return order
}

// CellMap returns the cells keyed by id.
func (nb *Notebook) CellMap() map[int]Cell {
	cells := make(map[int]Cell, len(nb.Cells))
	for _, cell := range nb.Cells {
		cells[cell.ID] = cell
	}
	return cells
}

// DisplayName derives a human-readable name from a notebook path.
func DisplayName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, Extension)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListDir returns the notebook files directly under dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
