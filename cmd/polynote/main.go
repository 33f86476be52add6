package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ahuret/polynote/internal/config"
	"github.com/ahuret/polynote/internal/importer"
	"github.com/ahuret/polynote/internal/notebook"
	"github.com/ahuret/polynote/internal/tui"
	"github.com/ahuret/polynote/internal/watch"
)

func main() {
	notebookPath := flag.String("notebook", "", "open this notebook directly instead of the picker")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	importPDF := flag.String("import-pdf", "", "convert a PDF into a notebook in the workspace, then exit")
	configPath := flag.String("config", "", "path to a config file (default: $XDG_CONFIG_HOME/polynote/config.toml)")
	flag.Parse()

	workspace := flag.Arg(0)
	if workspace == "" {
		workspace = "."
	}
	workspace, err := filepath.Abs(workspace)
	if err != nil {
		fmt.Println("failed to resolve workspace path:", err)
		os.Exit(1)
	}

	if *importPDF != "" {
		if err := runImport(*importPDF, workspace); err != nil {
			fmt.Println("import failed:", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("failed to load config:", err)
		os.Exit(1)
	}

	events, err := watch.Watch(context.Background(), workspace)
	if err != nil {
		// The browser still works without live reloads.
		fmt.Fprintln(os.Stderr, "file watching disabled:", err)
		events = nil
	}

	opts := []tea.ProgramOption{}
	if !*noAltScreen && cfg.Display.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.Display.MouseEnable {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	program := tea.NewProgram(
		tui.New(tui.Config{
			Workspace:    workspace,
			NotebookPath: *notebookPath,
			Settings:     cfg,
			WatchEvents:  events,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func runImport(pdfPath, workspace string) error {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	nb, err := importer.FromPDF(pdfPath, base)
	if err != nil {
		return err
	}
	target := filepath.Join(workspace, base+notebook.Extension)
	if err := notebook.Save(target, nb); err != nil {
		return err
	}
	fmt.Println("imported", pdfPath, "->", target)
	return nil
}
