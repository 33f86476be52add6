package tui

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ahuret/polynote/internal/notebook"
)

func TestScanWorkspaceJobListsNotebooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a"+notebook.Extension)
	nb := &notebook.Notebook{Name: "a", Cells: []notebook.Cell{{ID: 1, Language: notebook.LanguageText}}}
	if err := notebook.Save(path, nb); err != nil {
		t.Fatalf("save: %v", err)
	}
	msg, err := scanWorkspaceJob(dir)(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	scanned, ok := msg.(workspaceScannedMsg)
	if !ok {
		t.Fatalf("payload type %T", msg)
	}
	if len(scanned.paths) != 1 || scanned.paths[0] != path {
		t.Fatalf("paths = %v", scanned.paths)
	}
}

func TestReloadNotebookJobSurfacesLoadError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone"+notebook.Extension)
	msg, err := reloadNotebookJob(missing)(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}
	reloaded, ok := msg.(notebookReloadedMsg)
	if !ok {
		t.Fatalf("payload type %T", msg)
	}
	if reloaded.err == nil || reloaded.path != missing {
		t.Fatalf("envelope = %+v", reloaded)
	}
}
