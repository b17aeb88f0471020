package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vaultgraph/internal/adapters/editor"
	"vaultgraph/internal/adapters/obsidian"
	"vaultgraph/internal/adapters/tui"
	"vaultgraph/internal/application"
	"vaultgraph/internal/config"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "config file")
	vaultFlag := flag.String("vault", "", "path to the vault (overrides config)")
	logFlag := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: vaultgraph [flags] [document...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *vaultFlag != "" {
		cfg.Vault.Path = *vaultFlag
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere
	logOut := io.Discard
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := cfg.Log.NewLogger(logOut)

	seeds := make([]domain.VizID, 0, flag.NArg())
	for _, arg := range flag.Args() {
		id, err := application.ValidateNodeID("document", arg)
		if err != nil {
			return err
		}
		seeds = append(seeds, id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := session.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	ws, _, err := sess.NewWorkspace()
	if err != nil {
		return err
	}
	if err := ws.Open(ctx, seeds); err != nil {
		return err
	}
	if err := sess.Watch(ctx); err != nil {
		logger.Warn("file watching disabled", "error", err)
	}

	app := tui.NewApp(ws, sess.Vault(), tui.Options{
		Editor:       editor.NewOpener(),
		Obsidian:     obsidian.NewOpener(sess.Vault().Root(), cfg.Vault.ObsidianName),
		PreviewStyle: cfg.TUI.PreviewStyle,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
