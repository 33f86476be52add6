package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ahuret/polynote/internal/config"
	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/state"
	"github.com/ahuret/polynote/internal/watch"
)

func newTestModel(t *testing.T) (*model, string) {
	t.Helper()
	dir := t.TempDir()
	nb := &notebook.Notebook{
		Name: "guide",
		Cells: []notebook.Cell{
			{ID: 1, Language: notebook.LanguageText, Content: "# Intro\n"},
			{ID: 2, Language: "scala", Content: "val x = 1\n"},
			{ID: 3, Language: notebook.LanguageText, Content: "# Results\n"},
		},
	}
	path := filepath.Join(dir, "guide"+notebook.Extension)
	if err := notebook.Save(path, nb); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	m := New(Config{Workspace: dir, Settings: config.DefaultConfig()}).(*model)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, path
}

func pressKey(m *model, key string) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m.Update(msg)
}

func TestModelScanMovesToHome(t *testing.T) {
	m, path := newTestModel(t)
	if m.stage != stageScanning {
		t.Fatalf("initial stage = %v, want scanning", m.stage)
	}
	m.Update(workspaceScannedMsg{paths: []string{path}})
	if m.stage != stageHome {
		t.Fatalf("stage after scan = %v, want home", m.stage)
	}
	if len(m.notebooks) != 1 || m.notebooks[0] != path {
		t.Fatalf("notebooks = %v", m.notebooks)
	}
}

func TestModelScanErrorSurfacesMessage(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(workspaceScannedMsg{err: os.ErrPermission})
	if m.stage != stageHome {
		t.Fatalf("stage = %v, want home despite error", m.stage)
	}
	if m.errorMessage == "" {
		t.Fatal("scan failure should surface an error message")
	}
}

func TestModelOpenNotebookFromPicker(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")
	if m.stage != stageNotebook {
		t.Fatalf("stage = %v, want notebook", m.stage)
	}
	if m.handle == nil || m.handle.Name != "guide" {
		t.Fatalf("handle not bound: %+v", m.handle)
	}
	if m.selection.Current() != path {
		t.Fatalf("selection = %q, want %q", m.selection.Current(), path)
	}
	if got := len(m.panel.Rows()); got != 2 {
		t.Fatalf("panel rows = %d, want 2", got)
	}
}

func TestModelPendingOpenAfterScan(t *testing.T) {
	m, path := newTestModel(t)
	m.pendingOpen = path
	m.Update(workspaceScannedMsg{paths: []string{path}})
	if m.stage != stageNotebook {
		t.Fatalf("stage = %v, want notebook via pending open", m.stage)
	}
}

func TestModelHomeKeyReturnsToPicker(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")
	pressKey(m, "esc")
	if m.stage != stageHome {
		t.Fatalf("stage = %v, want home", m.stage)
	}
	if m.selection.Current() != state.HomePath {
		t.Fatalf("selection = %q, want home sentinel", m.selection.Current())
	}
	if len(m.handleSubs) != 0 {
		t.Fatalf("root still holds %d handle subscriptions", len(m.handleSubs))
	}
}

func TestModelStepCellFollowsOrder(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")
	pressKey(m, "J")
	if m.handle.ActiveCellID() != 1 {
		t.Fatalf("active = %d, want 1 after first step", m.handle.ActiveCellID())
	}
	pressKey(m, "J")
	pressKey(m, "J")
	pressKey(m, "J")
	if m.handle.ActiveCellID() != 3 {
		t.Fatalf("active should clamp at last cell, got %d", m.handle.ActiveCellID())
	}
	pressKey(m, "K")
	if m.handle.ActiveCellID() != 2 {
		t.Fatalf("active = %d, want 2 after step back", m.handle.ActiveCellID())
	}
}

func TestModelWatchRemovalEvictsOpenNotebook(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")

	m.Update(watchEventMsg{event: watch.Event{Path: path, Removed: true}})
	if m.stage != stageHome {
		t.Fatalf("stage = %v, want home after removal", m.stage)
	}
	if _, ok := m.registry.Lookup(path); ok {
		t.Fatal("removed notebook should be evicted from the registry")
	}
}

func TestModelReloadRefreshesPanel(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")

	m.Update(notebookReloadedMsg{path: path, nb: &notebook.Notebook{
		Name: "guide",
		Cells: []notebook.Cell{
			{ID: 1, Language: notebook.LanguageText, Content: "# Rewritten\n"},
		},
	}})
	rows := m.panel.Rows()
	if len(rows) != 1 || rows[0].title != "Rewritten" {
		t.Fatalf("panel rows after reload = %+v", rows)
	}
	if !m.viewportDirty {
		t.Fatal("reload should mark the transcript pane dirty")
	}
}

func TestModelTogglePanel(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")
	pressKey(m, "t")
	if m.panelVisible {
		t.Fatal("panel should hide on toggle")
	}
	if !strings.Contains(m.View(), "guide") {
		t.Fatal("notebook view should still render without the panel")
	}
	pressKey(m, "t")
	if !m.panelVisible {
		t.Fatal("panel should return on second toggle")
	}
}

func TestModelNotebookViewShowsHeadings(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "enter")
	view := m.View()
	for _, want := range []string{"Contents", "Intro", "Results"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m, path := newTestModel(t)
	m.Update(workspaceScannedMsg{paths: []string{path}})
	pressKey(m, "?")
	if !m.helpVisible {
		t.Fatal("help should open")
	}
	pressKey(m, "x")
	if m.helpVisible {
		t.Fatal("any key should close help")
	}
}
