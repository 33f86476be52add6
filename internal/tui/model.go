package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ahuret/polynote/internal/config"
	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/render"
	"github.com/ahuret/polynote/internal/state"
	"github.com/ahuret/polynote/internal/watch"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Workspace    string
	NotebookPath string
	Settings     *config.Config
	WatchEvents  <-chan watch.Event
}

// New returns a tea.Model ready to be mounted into a Program.
func New(cfg Config) tea.Model {
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultConfig()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	registry := state.NewRegistry()
	m := &model{
		config:        cfg,
		stage:         stageScanning,
		registry:      registry,
		selection:     state.NewSelection(),
		panel:         NewTocPanel(registry, cfg.Settings),
		highlighter:   render.NewHighlighter(cfg.Settings.Theme.SyntaxTheme),
		spinner:       spin,
		viewport:      vp,
		jobs:          newJobBus(),
		watchEvents:   cfg.WatchEvents,
		panelVisible:  true,
		viewportDirty: true,
		cellAnchors:   map[int]int{},
		pendingOpen:   cfg.NotebookPath,
		infoMessage:   heroTagline,
	}
	// The panel's observer registers first so its heading table is already
	// rebound by the time the root reacts to the same selection change.
	m.selection.Observe(func(newPath string, _ state.Update) {
		m.panel.HandleSelectionChange(newPath)
		m.bindNotebook(newPath)
	})
	return m
}

type model struct {
	config Config

	stage     stage
	registry  *state.Registry
	selection *state.Selection
	panel     *TocPanel

	handle     *state.Handle
	handleSubs []*state.Subscription

	highlighter *render.Highlighter
	spinner     spinner.Model
	viewport    viewport.Model
	jobs        *jobBus
	activeJob   *jobSnapshot
	watchEvents <-chan watch.Event

	notebooks    []string
	pickerCursor int
	pendingOpen  string

	panelVisible  bool
	helpVisible   bool
	viewportDirty bool
	cellAnchors   map[int]int

	infoMessage  string
	errorMessage string

	width  int
	height int
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.jobs.Start(jobKindScan, scanWorkspaceJob(m.config.Workspace)),
	}
	if cmd := waitForWatchCmd(m.watchEvents); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// bindNotebook follows a selection change on the root side: it swaps the
// model's handle reference and its own observers over to the newly selected
// notebook. Every previously held subscription is released first.
func (m *model) bindNotebook(path string) {
	for _, sub := range m.handleSubs {
		sub.Dispose()
	}
	m.handleSubs = nil
	m.handle = nil
	m.errorMessage = ""
	m.markViewportDirty()

	if path == "" || path == state.HomePath {
		m.stage = stageHome
		return
	}
	m.stage = stageNotebook
	handle, ok := m.registry.Lookup(path)
	if !ok {
		m.errorMessage = "could not open " + notebook.DisplayName(path)
		return
	}
	m.handle = handle
	m.handleSubs = append(m.handleSubs,
		handle.ObserveActiveCell(func(newID, oldID int) {
			m.markViewportDirty()
			m.scrollToCell(newID)
		}),
		handle.ObserveCellOrder(func([]int) { m.markViewportDirty() }),
		handle.ObserveCells(func(map[int]notebook.Cell, state.CellsUpdate) { m.markViewportDirty() }),
	)
	m.infoMessage = "Opened " + handle.Name + "."
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil

	case spinner.TickMsg:
		if m.stage != stageScanning && m.activeJob == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobSignalMsg:
		snapshot := msg.Snapshot
		m.activeJob = &snapshot
		return m, m.spinner.Tick

	case jobResultEnvelope:
		m.activeJob = nil
		if msg.Snapshot.Status == jobStatusFailed && msg.Payload == nil {
			m.errorMessage = msg.Snapshot.Err
			return m, nil
		}
		if msg.Payload != nil {
			return m.Update(msg.Payload)
		}
		return m, nil

	case workspaceScannedMsg:
		return m.handleWorkspaceScanned(msg)

	case notebookReloadedMsg:
		return m.handleNotebookReloaded(msg)

	case watchEventMsg:
		return m.handleWatchEvent(msg)

	case watchClosedMsg:
		m.watchEvents = nil
		return m, nil
	}
	return m, nil
}

func (m *model) handleWorkspaceScanned(msg workspaceScannedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMessage = "workspace scan failed: " + msg.err.Error()
		if m.stage == stageScanning {
			m.stage = stageHome
		}
		return m, nil
	}
	m.notebooks = msg.paths
	if m.pickerCursor >= len(m.notebooks) {
		m.pickerCursor = len(m.notebooks) - 1
	}
	if m.pickerCursor < 0 {
		m.pickerCursor = 0
	}
	if m.stage == stageScanning {
		m.stage = stageHome
	}
	if m.pendingOpen != "" {
		path := m.pendingOpen
		m.pendingOpen = ""
		m.selection.Set(path)
	}
	return m, nil
}

func (m *model) handleNotebookReloaded(msg notebookReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errorMessage = "reload failed: " + msg.err.Error()
		return m, nil
	}
	if handle, ok := m.registry.Lookup(msg.path); ok {
		handle.ReplaceAll(msg.nb)
		m.infoMessage = "Reloaded " + handle.Name + " from disk."
	}
	return m, nil
}

func (m *model) handleWatchEvent(msg watchEventMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.jobs.Start(jobKindScan, scanWorkspaceJob(m.config.Workspace))}
	event := msg.event
	if event.Removed {
		m.registry.Invalidate(event.Path)
		if m.selection.Current() == event.Path {
			m.infoMessage = notebook.DisplayName(event.Path) + " was removed."
			m.selection.Set(state.HomePath)
		}
	} else if _, ok := m.registry.Lookup(event.Path); ok {
		cmds = append(cmds, m.jobs.Start(jobKindReload, reloadNotebookJob(event.Path)))
	}
	if cmd := waitForWatchCmd(m.watchEvents); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	pressed := key.String()
	kb := m.config.Settings.Keybindings

	if pressed == "ctrl+c" || keyMatches(pressed, kb.Quit) {
		return m, tea.Quit
	}
	if m.helpVisible {
		m.helpVisible = false
		return m, nil
	}
	if keyMatches(pressed, kb.Help) {
		m.helpVisible = true
		return m, nil
	}

	switch m.stage {
	case stageHome:
		return m.handleHomeKey(pressed, kb)
	case stageNotebook:
		return m.handleNotebookKey(pressed, kb)
	}
	return m, nil
}

func (m *model) handleHomeKey(pressed string, kb config.KeybindingConfig) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(pressed, kb.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case keyMatches(pressed, kb.Down):
		if m.pickerCursor < len(m.notebooks)-1 {
			m.pickerCursor++
		}
	case keyMatches(pressed, kb.Activate):
		if m.pickerCursor < len(m.notebooks) {
			m.selection.Set(m.notebooks[m.pickerCursor])
		}
	}
	return m, nil
}

func (m *model) handleNotebookKey(pressed string, kb config.KeybindingConfig) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(pressed, kb.Home):
		m.selection.Set(state.HomePath)
	case keyMatches(pressed, kb.Up):
		m.panel.CursorUp()
	case keyMatches(pressed, kb.Down):
		m.panel.CursorDown()
	case keyMatches(pressed, kb.Activate):
		m.panel.ActivateCursor()
	case keyMatches(pressed, kb.TogglePanel):
		m.panelVisible = !m.panelVisible
		m.applyLayout()
	case keyMatches(pressed, kb.NextCell):
		m.stepCell(1)
	case keyMatches(pressed, kb.PrevCell):
		m.stepCell(-1)
	case pressed == "pgup":
		m.viewport.HalfViewUp()
	case pressed == "pgdown":
		m.viewport.HalfViewDown()
	}
	return m, nil
}

// stepCell moves the notebook's active cell forward or backward along the
// cell order, mimicking an editor cursor crossing cell boundaries.
func (m *model) stepCell(delta int) {
	if m.handle == nil {
		return
	}
	order := m.handle.CellOrder()
	if len(order) == 0 {
		return
	}
	active := m.handle.ActiveCellID()
	index := -1
	for i, id := range order {
		if id == active {
			index = i
			break
		}
	}
	index += delta
	if index < 0 {
		index = 0
	}
	if index >= len(order) {
		index = len(order) - 1
	}
	m.handle.SelectCell(order[index], state.SelectOptions{})
}

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.config.Settings.Display.MouseEnable {
		return m, nil
	}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.viewport.LineUp(3)
		return m, nil
	case tea.MouseWheelDown:
		m.viewport.LineDown(3)
		return m, nil
	case tea.MouseLeft:
		if m.stage != stageNotebook || !m.panelVisible {
			return m, nil
		}
		if msg.X >= m.panelWidth() {
			return m, nil
		}
		// One header line precedes the panel box.
		if index, ok := m.panel.RowAt(msg.Y - 1); ok {
			m.panel.Activate(index)
		}
	}
	return m, nil
}

func (m *model) panelWidth() int {
	if !m.panelVisible {
		return 0
	}
	width := m.config.Settings.Display.PanelWidth
	if width < minPanelWidth {
		width = minPanelWidth
	}
	if m.width > 0 && width > m.width-minMainWidth {
		width = m.width - minMainWidth
	}
	if width < 0 {
		width = 0
	}
	return width
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	body := m.height - chromeHeight
	if body < 3 {
		body = 3
	}
	panelWidth := m.panelWidth()
	m.panel.SetSize(panelWidth, body)
	main := m.width - panelWidth
	if main < minMainWidth {
		main = minMainWidth
	}
	m.viewport.Width = main - 2
	m.viewport.Height = body - 2
	m.markViewportDirty()
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewportDirty = false
	m.refreshViewport()
}

// refreshViewport regenerates the main transcript pane: every cell in order,
// a header rule per cell, syntax-highlighted content below it. Line anchors
// per cell are recorded so active-cell changes can scroll the pane.
func (m *model) refreshViewport() {
	m.cellAnchors = map[int]int{}
	if m.handle == nil {
		m.viewport.SetContent("")
		return
	}
	width := m.viewport.Width
	if width < 10 {
		width = 10
	}
	active := m.handle.ActiveCellID()
	var b strings.Builder
	line := 0
	for _, id := range m.handle.CellOrder() {
		cell, ok := m.handle.Cell(id)
		if !ok {
			continue
		}
		m.cellAnchors[id] = line
		marker := "  "
		if id == active {
			marker = "▌ "
		}
		header := fmt.Sprintf("%scell %d · %s", marker, id, cell.Language)
		b.WriteString(m.cellHeaderStyle(id == active).Render(header))
		b.WriteString("\n")
		line++

		content := m.highlighter.Cell(cell.Language, cell.Content)
		wrapped := wordwrap.String(content, width)
		cellLines := strings.Split(wrapped, "\n")
		if len(cellLines) > transcriptCellLimit {
			cellLines = append(cellLines[:transcriptCellLimit], "…")
		}
		for _, l := range cellLines {
			b.WriteString("  " + l + "\n")
			line++
		}
		b.WriteString("\n")
		line++
	}
	m.viewport.SetContent(b.String())
}

func (m *model) scrollToCell(id int) {
	m.refreshViewportIfDirty()
	anchor, ok := m.cellAnchors[id]
	if !ok {
		return
	}
	if anchor > m.viewport.TotalLineCount()-m.viewport.Height {
		anchor = m.viewport.TotalLineCount() - m.viewport.Height
	}
	if anchor < 0 {
		anchor = 0
	}
	m.viewport.SetYOffset(anchor)
}
