package notebook

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plans"+Extension)
	nb := &Notebook{
		Name: "plans",
		Cells: []Cell{
			{ID: 0, Language: LanguageText, Content: "# Intro\nhello"},
			{ID: 3, Language: "scala", Content: "val x = 1"},
		},
	}
	if err := Save(path, nb); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "plans" {
		t.Fatalf("name mismatch: %q", loaded.Name)
	}
	if len(loaded.Cells) != 2 || loaded.Cells[1].Language != "scala" {
		t.Fatalf("cells not preserved: %#v", loaded.Cells)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup"+Extension)
	payload := `{"name":"dup","cells":[{"id":1,"language":"text","content":""},{"id":1,"language":"text","content":""}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "untitled"+Extension)
	if err := os.WriteFile(path, []byte(`{"cells":[]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	nb, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if nb.Name != "untitled" {
		t.Fatalf("derived name mismatch: %q", nb.Name)
	}
}

func TestNextCellID(t *testing.T) {
	nb := &Notebook{Cells: []Cell{{ID: 2}, {ID: 7}, {ID: 4}}}
	if got := nb.NextCellID(); got != 8 {
		t.Fatalf("next id = %d, want 8", got)
	}
	empty := &Notebook{}
	if got := empty.NextCellID(); got != 0 {
		t.Fatalf("next id on empty notebook = %d, want 0", got)
	}
}

func TestOrderAndCellMap(t *testing.T) {
	nb := &Notebook{Cells: []Cell{{ID: 5}, {ID: 1}, {ID: 9}}}
	order := nb.Order()
	if len(order) != 3 || order[0] != 5 || order[1] != 1 || order[2] != 9 {
		t.Fatalf("order mismatch: %v", order)
	}
	cells := nb.CellMap()
	if _, ok := cells[9]; !ok || len(cells) != 3 {
		t.Fatalf("cell map mismatch: %v", cells)
	}
}

func TestListDirFiltersExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a" + Extension, "b" + Extension, "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{"cells":[]}`), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	paths, err := ListDir(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 notebooks, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a"+Extension {
		t.Fatalf("expected sorted order, got %v", paths)
	}
}
