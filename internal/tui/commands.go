package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/watch"
)

type workspaceScannedMsg struct {
	paths []string
	err   error
}

type notebookReloadedMsg struct {
	path string
	nb   *notebook.Notebook
	err  error
}

type watchEventMsg struct {
	event watch.Event
}

type watchClosedMsg struct{}

func scanWorkspaceJob(dir string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		paths, err := notebook.ListDir(dir)
		if err != nil {
			return workspaceScannedMsg{err: err}, err
		}
		return workspaceScannedMsg{paths: paths}, nil
	}
}

func reloadNotebookJob(path string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		nb, err := notebook.Load(path)
		if err != nil {
			return notebookReloadedMsg{path: path, err: err}, err
		}
		return notebookReloadedMsg{path: path, nb: nb}, nil
	}
}

// waitForWatchCmd blocks on the watcher channel and resurfaces the next
// filesystem event as a message. The model re-issues it after each event.
func waitForWatchCmd(events <-chan watch.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg{event: event}
	}
}
