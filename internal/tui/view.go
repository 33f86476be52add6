package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/state"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	taglineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	helperStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pickerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pickerCurrent    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	mainPaneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	cellHeaderOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Bold(true)
	cellHeaderOn     = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	keyStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	helpBoxStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	errorStyleRoot   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	appTitle         = "polynote"
	scanningEllipsis = "Scanning workspace…"
)

func (m *model) cellHeaderStyle(active bool) lipgloss.Style {
	if active {
		return cellHeaderOn
	}
	return cellHeaderOff
}

func (m *model) View() string {
	switch m.stage {
	case stageScanning:
		return m.viewScanning()
	case stageHome:
		return m.viewHome()
	case stageNotebook:
		return m.viewNotebook()
	default:
		return ""
	}
}

func (m *model) viewScanning() string {
	header := titleStyle.Render(appTitle) + "  " + taglineStyle.Render(heroTagline)
	return header + "\n\n" + fmt.Sprintf("%s %s", m.spinner.View(), scanningEllipsis)
}

func (m *model) viewHome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("  ")
	b.WriteString(taglineStyle.Render(heroTagline))
	b.WriteString("\n\n")

	if m.helpVisible {
		b.WriteString(m.helpView())
		return b.String()
	}

	if len(m.notebooks) == 0 {
		b.WriteString(helperStyle.Render("No notebooks found in " + m.config.Workspace + "."))
		b.WriteString("\n")
		b.WriteString(helperStyle.Render("Create a file ending in " + notebook.Extension + " to get started."))
	} else {
		b.WriteString(helperStyle.Render("Notebooks"))
		b.WriteString("\n")
		for i, path := range m.notebooks {
			cursor := "  "
			style := pickerStyle
			if i == m.pickerCursor {
				cursor = "> "
				style = pickerCurrent
			}
			b.WriteString(cursor + style.Render(notebook.DisplayName(path)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.messageLine())
	b.WriteString("\n")
	b.WriteString(m.keyLegendView())
	return b.String()
}

func (m *model) viewNotebook() string {
	name := ""
	if m.handle != nil {
		name = m.handle.Name
	} else if current := m.selection.Current(); current != "" && current != state.HomePath {
		name = notebook.DisplayName(current)
	}
	header := titleStyle.Render(appTitle) + "  " + taglineStyle.Render(name)

	if m.helpVisible {
		return header + "\n\n" + m.helpView()
	}

	m.refreshViewportIfDirty()
	main := mainPaneStyle.Render(m.viewport.View())
	body := main
	if m.panelVisible {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.panel.View(), main)
	}

	parts := []string{header, body, m.statusBarView()}
	if line := m.messageLine(); line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}

func (m *model) messageLine() string {
	if m.errorMessage != "" {
		return errorStyleRoot.Render(m.errorMessage)
	}
	if m.infoMessage != "" {
		return infoStyle.Render(m.infoMessage)
	}
	return ""
}

func (m *model) statusBarView() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.config.Settings.Theme.StatusBarText)).
		Background(lipgloss.Color(m.config.Settings.Theme.StatusBar)).
		Padding(0, 1)
	stats := []string{fmt.Sprintf("Notebooks %d", len(m.notebooks))}
	if m.handle != nil {
		stats = append(stats, fmt.Sprintf("Cells %d", len(m.handle.CellOrder())))
		stats = append(stats, fmt.Sprintf("Headings %d", len(m.panel.Rows())))
		if active := m.handle.ActiveCellID(); active != state.NoCell {
			stats = append(stats, fmt.Sprintf("Active cell %d", active))
		}
	}
	if m.activeJob != nil {
		stats = append(stats, fmt.Sprintf("%s %s…", m.spinner.View(), m.activeJob.Kind))
	}
	return style.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	kb := m.config.Settings.Keybindings
	hints := []keyHint{
		{firstKey(kb.Up) + "/" + firstKey(kb.Down), "Move"},
		{firstKey(kb.Activate), "Open / jump"},
		{firstKey(kb.Home), "Back to list"},
		{firstKey(kb.TogglePanel), "Toggle contents"},
		{firstKey(kb.NextCell) + "/" + firstKey(kb.PrevCell), "Next/prev cell"},
		{firstKey(kb.Help), "Help"},
		{firstKey(kb.Quit), "Quit"},
	}
	var cells []string
	for _, hint := range hints {
		key := keyStyle.Render(hint.Key)
		desc := keyDescStyle.Render(" " + hint.Description)
		cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc)+"  ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *model) helpView() string {
	lines := []string{
		titleStyle.Render("Keys"),
		helperStyle.Render("• The contents panel lists every # heading found in text cells, one line per heading, indented by level."),
		helperStyle.Render("• Enter on a heading jumps the notebook to that cell; the heading nearest the active cell is highlighted."),
		helperStyle.Render("• Cells keep their headings listed while their language is text; switching a cell away hides its entries."),
		helperStyle.Render("• Notebook files are watched on disk, so edits from another program show up on their own."),
		helperStyle.Render("• Press any key to close this help."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func firstKey(bindings []string) string {
	if len(bindings) == 0 {
		return "?"
	}
	return bindings[0]
}
