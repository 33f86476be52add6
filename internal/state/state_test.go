package state

import (
	"path/filepath"
	"testing"

	"github.com/ahuret/polynote/internal/notebook"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture"+notebook.Extension)
	nb := &notebook.Notebook{
		Name: "fixture",
		Cells: []notebook.Cell{
			{ID: 1, Language: notebook.LanguageText, Content: "# Hello\n"},
			{ID: 2, Language: "scala", Content: "val x = 1"},
		},
	}
	if err := notebook.Save(path, nb); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

func TestSelectionNotifiesSynchronously(t *testing.T) {
	sel := NewSelection()
	var seen []Update
	sub := sel.Observe(func(newPath string, update Update) {
		if newPath != update.NewValue {
			t.Fatalf("new value mismatch: %q vs %q", newPath, update.NewValue)
		}
		seen = append(seen, update)
	})
	defer sub.Dispose()

	sel.Set("a.pnb.json")
	if len(seen) != 1 {
		t.Fatalf("observer did not fire synchronously: %d", len(seen))
	}
	if seen[0].OldValue != HomePath {
		t.Fatalf("old value = %q, want home sentinel", seen[0].OldValue)
	}
	// Re-selecting the same path still notifies: it forces a rebind.
	sel.Set("a.pnb.json")
	if len(seen) != 2 {
		t.Fatalf("re-selection did not notify: %d", len(seen))
	}
}

func TestSubscriptionDisposeIsIdempotent(t *testing.T) {
	sel := NewSelection()
	fired := 0
	sub := sel.Observe(func(string, Update) { fired++ })
	sub.Dispose()
	sub.Dispose()
	sel.Set("x")
	if fired != 0 {
		t.Fatalf("disposed observer fired %d times", fired)
	}
}

func TestObserversFireInRegistrationOrder(t *testing.T) {
	sel := NewSelection()
	var order []int
	sel.Observe(func(string, Update) { order = append(order, 1) })
	sel.Observe(func(string, Update) { order = append(order, 2) })
	sel.Set("x")
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("delivery order = %v", order)
	}
}

func TestRegistryResolveAndCache(t *testing.T) {
	path := writeFixture(t)
	reg := NewRegistry()
	first, err := reg.ResolveOrCreate(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := reg.ResolveOrCreate(path)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first != second {
		t.Fatal("registry did not cache the handle")
	}
	if first.Name != "fixture" {
		t.Fatalf("handle name = %q", first.Name)
	}
}

func TestRegistryResolveFailure(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.ResolveOrCreate("/no/such/notebook.pnb.json"); err == nil {
		t.Fatal("expected resolve error for missing file")
	}
	if _, ok := reg.Lookup("/no/such/notebook.pnb.json"); ok {
		t.Fatal("failed resolve must not cache a handle")
	}
}

func TestHandleSelectCellNotifies(t *testing.T) {
	path := writeFixture(t)
	reg := NewRegistry()
	handle, err := reg.ResolveOrCreate(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var gotNew, gotOld int
	handle.ObserveActiveCell(func(newID, oldID int) {
		gotNew, gotOld = newID, oldID
	})
	handle.SelectCell(2, SelectOptions{Edit: true})
	if gotNew != 2 || gotOld != NoCell {
		t.Fatalf("active change = (%d, %d), want (2, %d)", gotNew, gotOld, NoCell)
	}
	if handle.ActiveCellID() != 2 {
		t.Fatalf("active cell = %d", handle.ActiveCellID())
	}
	// Unknown ids are ignored.
	handle.SelectCell(99, SelectOptions{})
	if handle.ActiveCellID() != 2 {
		t.Fatal("unknown cell id changed focus")
	}
}

func TestHandleUpdateCellCarriesDiff(t *testing.T) {
	path := writeFixture(t)
	reg := NewRegistry()
	handle, _ := reg.ResolveOrCreate(path)
	var got CellsUpdate
	handle.ObserveCells(func(_ map[int]notebook.Cell, update CellsUpdate) {
		got = update
	})
	handle.UpdateCell(1, "# Changed\n")
	field, ok := got.Fields[1]
	if !ok || field.Content == nil {
		t.Fatalf("diff missing content field: %+v", got)
	}
	if *field.Content != "# Changed\n" {
		t.Fatalf("diff content = %q", *field.Content)
	}
	cell, _ := handle.Cell(1)
	if cell.Content != "# Changed\n" {
		t.Fatalf("cell content not applied: %q", cell.Content)
	}
}

func TestHandleSetOrderNotifies(t *testing.T) {
	path := writeFixture(t)
	reg := NewRegistry()
	handle, _ := reg.ResolveOrCreate(path)
	var got []int
	handle.ObserveCellOrder(func(order []int) { got = order })
	handle.SetOrder([]int{2, 1})
	if len(got) != 2 || got[0] != 2 {
		t.Fatalf("order notification = %v", got)
	}
}

func TestHandleReplaceAllResetsMissingActiveCell(t *testing.T) {
	path := writeFixture(t)
	reg := NewRegistry()
	handle, _ := reg.ResolveOrCreate(path)
	handle.SelectCell(2, SelectOptions{})

	cellsFired := false
	orderFired := false
	handle.ObserveCells(func(_ map[int]notebook.Cell, update CellsUpdate) {
		cellsFired = true
		field, ok := update.Fields[1]
		if !ok || field.Content == nil || *field.Content != "# Only\n" {
			t.Fatalf("reload diff should cover changed cell 1, got %+v", update)
		}
		if _, ok := update.Fields[2]; ok {
			t.Fatalf("removed cell must not appear in the diff: %+v", update)
		}
	})
	handle.ObserveCellOrder(func([]int) { orderFired = true })

	handle.ReplaceAll(&notebook.Notebook{
		Name:  "fixture",
		Cells: []notebook.Cell{{ID: 1, Language: notebook.LanguageText, Content: "# Only\n"}},
	})
	if !cellsFired || !orderFired {
		t.Fatalf("reload notifications: cells=%v order=%v", cellsFired, orderFired)
	}
	if handle.ActiveCellID() != NoCell {
		t.Fatalf("active cell should reset when removed, got %d", handle.ActiveCellID())
	}
}
