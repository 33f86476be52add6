package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ahuret/polynote/internal/config"
	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/state"
	"github.com/ahuret/polynote/internal/toc"
)

type panelState int

const (
	panelUnbound panelState = iota
	panelBound
	panelError
)

// renderedRow is one displayed heading line: the view model the panel
// regenerates in full on every change. No diffing against the previous
// rows takes place.
type renderedRow struct {
	cellID int
	level  toc.Level
	title  string
	active bool
}

// TocPanel lists the headings extracted from a notebook's text cells and
// keeps the listing synchronized with the externally active cell. It owns
// its derived state exclusively: the heading table and cell order are only
// mutated from its own observer callbacks.
type TocPanel struct {
	registry *state.Registry
	cfg      *config.Config

	st      panelState
	errText string
	handle  *state.Handle
	table   toc.Table
	order   []int
	subs    []*state.Subscription

	rows   []renderedRow
	cursor int
	scroll int

	width  int
	height int

	borderStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	activeStyle      lipgloss.Style
	placeholderStyle lipgloss.Style
	errorStyle       lipgloss.Style
	levelStyles      []lipgloss.Style
}

// NewTocPanel builds an unbound panel. Wire HandleSelectionChange into the
// selection store to bind it.
func NewTocPanel(registry *state.Registry, cfg *config.Config) *TocPanel {
	p := &TocPanel{
		registry:         registry,
		cfg:              cfg,
		width:            cfg.Display.PanelWidth,
		height:           10,
		borderStyle:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(cfg.Theme.PanelBorder)).Padding(0, 1),
		titleStyle:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Theme.ActiveHeading)),
		activeStyle:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Theme.ActiveHeading)).Underline(true),
		placeholderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Placeholder)),
		errorStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Error)),
	}
	for level := 1; level <= 6; level++ {
		p.levelStyles = append(p.levelStyles,
			lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.LevelColor(level))))
	}
	return p
}

// HandleSelectionChange rebinds the panel to a newly selected notebook. The
// derived heading table and cell order are always discarded first, so no
// stale entries survive into the new binding. All previously held
// subscriptions are released before any new one is created.
func (p *TocPanel) HandleSelectionChange(newPath string) {
	p.table = nil
	p.order = nil
	p.rows = nil
	p.handle = nil
	p.errText = ""
	p.disposeSubscriptions()

	if newPath == "" || newPath == state.HomePath {
		p.st = panelUnbound
		p.rebuildRows()
		return
	}

	handle, err := p.registry.ResolveOrCreate(newPath)
	if err != nil {
		p.st = panelError
		p.errText = "could not load notebook state"
		p.rebuildRows()
		return
	}

	p.st = panelBound
	p.handle = handle
	p.subscribe(handle)

	// Seed from the handle's current state: a fresh table over every text
	// cell, then an unconditional row rebuild so nothing from the previous
	// binding survives even when the new notebook yields no headings.
	p.order = handle.CellOrder()
	p.table = toc.FromCells(handle.Cells())
	p.rebuildRows()
	p.findNearestHeader()
}

func (p *TocPanel) subscribe(handle *state.Handle) {
	p.subs = append(p.subs,
		handle.ObserveActiveCell(func(newID, oldID int) {
			p.findNearestHeader()
		}),
		handle.ObserveCellOrder(func(order []int) {
			p.order = order
			p.rebuildRows()
		}),
		handle.ObserveCells(p.handleCellsChanged),
	)
}

// handleCellsChanged recomputes headings for the cells the update touched.
// With no derived table yet every cell is a candidate; otherwise only cells
// whose diff shows a content change and whose language is currently "text"
// qualify.
func (p *TocPanel) handleCellsChanged(cells map[int]notebook.Cell, update state.CellsUpdate) {
	var candidates []int
	if p.table == nil {
		p.table = toc.Table{}
		for id, cell := range cells {
			if cell.IsText() {
				candidates = append(candidates, id)
			}
		}
	} else {
		for id, field := range update.Fields {
			if field.Content == nil {
				continue
			}
			cell, ok := cells[id]
			if !ok || !cell.IsText() {
				continue
			}
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return
	}
	for _, id := range candidates {
		cell, ok := cells[id]
		if !ok {
			continue
		}
		p.table.Replace(id, cell.Content)
	}
	p.rebuildRows()
}

// findNearestHeader marks the heading belonging to the closest cell at or
// above the active cell. Without a derived table this is a no-op.
func (p *TocPanel) findNearestHeader() {
	if p.table == nil {
		return
	}
	active := state.NoCell
	if p.handle != nil {
		active = p.handle.ActiveCellID()
	}
	if active == state.NoCell || p.table.Empty() {
		p.selectHeaderFromCell(state.NoCell)
		return
	}
	if id, ok := p.table.NearestCell(p.order, active); ok {
		p.selectHeaderFromCell(id)
		return
	}
	p.selectHeaderFromCell(state.NoCell)
}

// selectHeaderFromCell unmarks the currently active rendered heading and,
// when a cell id is supplied, marks that cell's first rendered heading.
func (p *TocPanel) selectHeaderFromCell(cellID int) {
	for i := range p.rows {
		p.rows[i].active = false
	}
	p.table.ClearActive()
	if cellID == state.NoCell {
		return
	}
	for i := range p.rows {
		if p.rows[i].cellID == cellID {
			p.rows[i].active = true
			break
		}
	}
	p.table.MarkActive(cellID, state.NoCell)
}

// Activate handles a click (or Enter) on the rendered heading at index.
func (p *TocPanel) Activate(index int) {
	if index < 0 || index >= len(p.rows) {
		return
	}
	row := p.rows[index]
	if p.handle == nil {
		return
	}
	if p.handle.ActiveCellID() != row.cellID {
		prev := state.NoCell
		if id, ok := p.table.ActiveCell(); ok {
			prev = id
		}
		p.handle.SelectCell(row.cellID, state.SelectOptions{Edit: true})
		p.table.MarkActive(row.cellID, prev)
		p.syncRowsToTable()
		return
	}
	// Clicking inside the already-active cell: swap the rendered mark onto
	// the clicked row, even when it is not the cell's first heading, and
	// move the bookkeeping flag accordingly.
	prev := state.NoCell
	for i := range p.rows {
		if p.rows[i].active {
			prev = p.rows[i].cellID
			p.rows[i].active = false
		}
	}
	p.rows[index].active = true
	p.table.MarkActive(row.cellID, prev)
}

// ActivateCursor activates the heading under the cursor.
func (p *TocPanel) ActivateCursor() {
	p.Activate(p.cursor)
}

// syncRowsToTable re-derives the rendered active marks from the table flags.
func (p *TocPanel) syncRowsToTable() {
	activeCell, ok := p.table.ActiveCell()
	marked := false
	for i := range p.rows {
		p.rows[i].active = false
		if ok && !marked && p.rows[i].cellID == activeCell {
			p.rows[i].active = true
			marked = true
		}
	}
}

// rebuildRows regenerates the displayed list from scratch. Rendering order
// follows the cell order, never the table's map order; cells whose current
// language is not "text" are skipped even when headings were extracted for
// them.
func (p *TocPanel) rebuildRows() {
	p.rows = nil
	if p.st != panelBound || p.table == nil || p.table.Empty() || len(p.order) == 0 {
		p.clampCursor()
		return
	}
	for _, id := range p.order {
		headings := p.table[id]
		if len(headings) == 0 {
			continue
		}
		if p.handle != nil {
			if cell, ok := p.handle.Cell(id); !ok || !cell.IsText() {
				continue
			}
		}
		for _, h := range headings {
			p.rows = append(p.rows, renderedRow{
				cellID: id,
				level:  h.Level,
				title:  h.Title,
				active: h.Active,
			})
		}
	}
	p.clampCursor()
}

// Dispose releases every subscription the panel holds.
func (p *TocPanel) Dispose() {
	p.disposeSubscriptions()
}

func (p *TocPanel) disposeSubscriptions() {
	for _, sub := range p.subs {
		sub.Dispose()
	}
	p.subs = nil
}

// Rows exposes the current view model for the root layout and tests.
func (p *TocPanel) Rows() []renderedRow {
	return p.rows
}

// SetSize fixes the panel's outer dimensions.
func (p *TocPanel) SetSize(width, height int) {
	if width > 0 {
		p.width = width
	}
	if height > 0 {
		p.height = height
	}
	p.clampCursor()
}

// CursorUp moves the panel cursor toward the first heading.
func (p *TocPanel) CursorUp() {
	if p.cursor > 0 {
		p.cursor--
	}
	p.ensureCursorVisible()
}

// CursorDown moves the panel cursor toward the last heading.
func (p *TocPanel) CursorDown() {
	if p.cursor < len(p.rows)-1 {
		p.cursor++
	}
	p.ensureCursorVisible()
}

func (p *TocPanel) clampCursor() {
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureCursorVisible()
}

func (p *TocPanel) ensureCursorVisible() {
	visible := p.innerHeight()
	if visible <= 0 {
		return
	}
	if p.cursor < p.scroll {
		p.scroll = p.cursor
	}
	if p.cursor >= p.scroll+visible {
		p.scroll = p.cursor - visible + 1
	}
	if p.scroll < 0 {
		p.scroll = 0
	}
}

// innerHeight is the number of heading lines that fit inside the frame
// (border, padding, and title line subtracted).
func (p *TocPanel) innerHeight() int {
	return p.height - 3
}

// RowAt maps a terminal line inside the panel (0 = the panel's top border)
// to a rendered heading index, for mouse support. The second return value
// is false for chrome lines and out-of-range clicks.
func (p *TocPanel) RowAt(line int) (int, bool) {
	// border (1) + title line (1) precede the first heading line.
	index := line - 2 + p.scroll
	if index < 0 || index >= len(p.rows) {
		return 0, false
	}
	return index, true
}

// View renders the panel box.
func (p *TocPanel) View() string {
	var lines []string
	switch {
	case p.st == panelError:
		lines = append(lines, p.errorStyle.Render(p.errText))
	case p.st == panelUnbound:
		lines = append(lines, p.placeholderStyle.Render("Not a notebook."))
		lines = append(lines, p.placeholderStyle.Render("Pick one to browse."))
	case len(p.rows) == 0:
		lines = append(lines, p.placeholderStyle.Render("No headings yet."))
		lines = append(lines, p.placeholderStyle.Render("Add # lines to a"))
		lines = append(lines, p.placeholderStyle.Render("text cell."))
	default:
		visible := p.innerHeight()
		end := p.scroll + visible
		if end > len(p.rows) {
			end = len(p.rows)
		}
		for i := p.scroll; i < end; i++ {
			lines = append(lines, p.renderRow(i))
		}
	}
	body := p.titleStyle.Render("Contents") + "\n" + strings.Join(lines, "\n")
	return p.borderStyle.Width(p.width - 2).Height(p.height - 2).Render(body)
}

func (p *TocPanel) renderRow(i int) string {
	row := p.rows[i]
	indent := strings.Repeat(" ", int(row.level)-1)
	label := indent + row.title
	if p.cfg.Display.ShowLevels {
		label = indent + row.level.Tag() + " " + row.title
	}
	width := p.width - 6
	if width > 0 && lipgloss.Width(label) > width {
		label = truncate(label, width)
	}
	style := p.levelStyles[int(row.level)-1]
	if row.active {
		style = p.activeStyle
	}
	cursor := "  "
	if i == p.cursor {
		cursor = "> "
	}
	return cursor + style.Render(label)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
