// Package state holds the reactive notebook state the UI observes: a
// selection store naming the current notebook, a registry resolving notebook
// paths to live handles, and per-handle observable fields.
//
// Observers fire synchronously, on the mutating goroutine, in registration
// order. All mutation is expected to happen on the UI loop; the store does
// not lock, reorder, or batch.
package state

import (
	"fmt"

	"github.com/ahuret/polynote/internal/notebook"
)

// HomePath is the sentinel selection value for the notebook picker; it is
// never a loadable notebook.
const HomePath = "home"

// NoCell marks the absence of an active cell.
const NoCell = -1

// Subscription detaches an observer when disposed. Disposing twice is a
// no-op; a disposed observer never fires again.
type Subscription struct {
	cancel func()
}

// Dispose removes the observer immediately.
func (s *Subscription) Dispose() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

type observerList[T any] struct {
	nextID    int
	observers []struct {
		id int
		fn T
	}
}

func (l *observerList[T]) add(fn T) *Subscription {
	id := l.nextID
	l.nextID++
	l.observers = append(l.observers, struct {
		id int
		fn T
	}{id, fn})
	return &Subscription{cancel: func() {
		for i, obs := range l.observers {
			if obs.id == id {
				l.observers = append(l.observers[:i], l.observers[i+1:]...)
				return
			}
		}
	}}
}

func (l *observerList[T]) snapshot() []T {
	fns := make([]T, len(l.observers))
	for i, obs := range l.observers {
		fns[i] = obs.fn
	}
	return fns
}

// Update describes a selection change delivered alongside the new value.
type Update struct {
	NewValue string
	OldValue string
}

// Selection is the observable "current notebook path" field.
type Selection struct {
	current   string
	observers observerList[func(newPath string, update Update)]
}

// NewSelection starts at the home sentinel.
func NewSelection() *Selection {
	return &Selection{current: HomePath}
}

// Current returns the selected notebook path (or HomePath).
func (s *Selection) Current() string {
	return s.current
}

// Observe registers an observer for selection changes.
func (s *Selection) Observe(fn func(newPath string, update Update)) *Subscription {
	return s.observers.add(fn)
}

// Set changes the selection and notifies observers, even when the value is
// unchanged: re-selecting a notebook forces a rebind downstream.
func (s *Selection) Set(path string) {
	update := Update{NewValue: path, OldValue: s.current}
	s.current = path
	for _, fn := range s.observers.snapshot() {
		fn(path, update)
	}
}

// CellUpdate carries a per-field diff for one cell.
type CellUpdate struct {
	Content *string
}

// CellsUpdate describes which cells changed which fields in a cells-map
// notification. A nil Fields map means the change could not be attributed.
type CellsUpdate struct {
	Fields map[int]CellUpdate
}

// Handle is the live state of one loaded notebook.
type Handle struct {
	Path string
	Name string

	activeCellID int
	cellOrder    []int
	cells        map[int]notebook.Cell

	activeObservers observerList[func(newID, oldID int)]
	orderObservers  observerList[func(order []int)]
	cellsObservers  observerList[func(cells map[int]notebook.Cell, update CellsUpdate)]
}

// SelectOptions controls what SelectCell asks of the editor. Edit requests
// that focus land in editing position; the browser itself has no editor, so
// the flag is advisory and only meaningful to hosts that embed one.
type SelectOptions struct {
	Edit bool
}

func newHandle(path string, nb *notebook.Notebook) *Handle {
	return &Handle{
		Path:         path,
		Name:         nb.Name,
		activeCellID: NoCell,
		cellOrder:    nb.Order(),
		cells:        nb.CellMap(),
	}
}

// ActiveCellID returns the focused cell id, or NoCell.
func (h *Handle) ActiveCellID() int {
	return h.activeCellID
}

// CellOrder returns the notebook's authoritative cell ordering.
func (h *Handle) CellOrder() []int {
	return append([]int(nil), h.cellOrder...)
}

// Cells returns the cells keyed by id. The map is shared; callers must not
// mutate it.
func (h *Handle) Cells() map[int]notebook.Cell {
	return h.cells
}

// Cell looks up one cell by id.
func (h *Handle) Cell(id int) (notebook.Cell, bool) {
	cell, ok := h.cells[id]
	return cell, ok
}

// ObserveActiveCell registers an observer for active-cell changes.
func (h *Handle) ObserveActiveCell(fn func(newID, oldID int)) *Subscription {
	return h.activeObservers.add(fn)
}

// ObserveCellOrder registers an observer for cell-order changes.
func (h *Handle) ObserveCellOrder(fn func(order []int)) *Subscription {
	return h.orderObservers.add(fn)
}

// ObserveCells registers an observer for cells-map changes.
func (h *Handle) ObserveCells(fn func(cells map[int]notebook.Cell, update CellsUpdate)) *Subscription {
	return h.cellsObservers.add(fn)
}

// SelectCell moves editor focus to the given cell and notifies observers.
// Unknown ids are ignored. opts is advisory; see SelectOptions.
func (h *Handle) SelectCell(id int, opts SelectOptions) {
	if _, ok := h.cells[id]; !ok && id != NoCell {
		return
	}
	old := h.activeCellID
	h.activeCellID = id
	for _, fn := range h.activeObservers.snapshot() {
		fn(id, old)
	}
}

// UpdateCell replaces a cell's content and notifies cells-map observers with
// a content diff for that cell.
func (h *Handle) UpdateCell(id int, content string) {
	cell, ok := h.cells[id]
	if !ok {
		return
	}
	cell.Content = content
	h.cells[id] = cell
	update := CellsUpdate{Fields: map[int]CellUpdate{id: {Content: &content}}}
	for _, fn := range h.cellsObservers.snapshot() {
		fn(h.cells, update)
	}
}

// SetOrder replaces the cell ordering and notifies order observers.
func (h *Handle) SetOrder(order []int) {
	h.cellOrder = append([]int(nil), order...)
	for _, fn := range h.orderObservers.snapshot() {
		fn(h.CellOrder())
	}
}

// ReplaceAll swaps in a freshly loaded notebook (used when the file changed
// on disk). Cells observers receive a diff covering every cell whose content
// differs from the previous state, including newly added cells; order
// observers fire afterwards.
func (h *Handle) ReplaceAll(nb *notebook.Notebook) {
	old := h.cells
	h.Name = nb.Name
	h.cells = nb.CellMap()
	h.cellOrder = nb.Order()
	if _, ok := h.cells[h.activeCellID]; !ok {
		h.activeCellID = NoCell
	}
	fields := map[int]CellUpdate{}
	for id, cell := range h.cells {
		if prev, ok := old[id]; ok && prev.Content == cell.Content {
			continue
		}
		content := cell.Content
		fields[id] = CellUpdate{Content: &content}
	}
	update := CellsUpdate{}
	if len(fields) > 0 {
		update.Fields = fields
	}
	for _, fn := range h.cellsObservers.snapshot() {
		fn(h.cells, update)
	}
	for _, fn := range h.orderObservers.snapshot() {
		fn(h.CellOrder())
	}
}

// Registry resolves notebook paths to live handles, loading lazily and
// caching the result so repeated selections share one handle.
type Registry struct {
	handles map[string]*Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: map[string]*Handle{}}
}

// ResolveOrCreate returns the handle for path, loading the notebook on first
// use. A load failure is returned to the caller; no handle is cached.
func (r *Registry) ResolveOrCreate(path string) (*Handle, error) {
	if handle, ok := r.handles[path]; ok {
		return handle, nil
	}
	nb, err := notebook.Load(path)
	if err != nil {
		return nil, fmt.Errorf("resolve notebook: %w", err)
	}
	handle := newHandle(path, nb)
	r.handles[path] = handle
	return handle, nil
}

// Lookup returns a cached handle without loading.
func (r *Registry) Lookup(path string) (*Handle, bool) {
	handle, ok := r.handles[path]
	return handle, ok
}

// Invalidate drops the cached handle for path; the next resolve reloads it.
func (r *Registry) Invalidate(path string) {
	delete(r.handles, path)
}
