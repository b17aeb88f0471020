// Package tui is the interactive terminal browser over a live graph
package tui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"vaultgraph/internal/adapters/filesystem"
	"vaultgraph/internal/adapters/tui/views"
	"vaultgraph/internal/application/workspace"
	"vaultgraph/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewGraph ViewState = iota
	ViewSearch
	ViewHelp
)

// Options configure the optional collaborators of the app
type Options struct {
	Editor       ports.EditorOpener
	Obsidian     ports.ObsidianOpener
	PreviewStyle string
}

// App is the main TUI application model
type App struct {
	vault    *filesystem.Vault
	editor   ports.EditorOpener
	obsidian ports.ObsidianOpener

	state  ViewState
	graph  *views.GraphModel
	search *views.SearchModel
	help   *views.HelpModel
}

// NewApp creates the TUI over an opened workspace
func NewApp(ws *workspace.Workspace, vault *filesystem.Vault, opts Options) *App {
	return &App{
		vault:    vault,
		editor:   opts.Editor,
		obsidian: opts.Obsidian,
		state:    ViewGraph,
		graph: views.NewGraphModel(ws, views.GraphOptions{
			PreviewStyle: opts.PreviewStyle,
			Docs:         vault,
			Writer:       vault,
		}),
		search: views.NewSearchModel(vault),
		help:   views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.graph.Init()
}

// Close releases the graph view subscription
func (a *App) Close() {
	a.graph.Close()
}

// State returns the current view
func (a *App) State() ViewState {
	return a.state
}

// Graph returns the graph view model
func (a *App) Graph() *views.GraphModel {
	return a.graph
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.graph.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset()
		return a, a.search.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToGraphMsg:
		a.state = ViewGraph
		return a, nil

	case views.SearchSelectMsg:
		a.state = ViewGraph
		return a, a.graph.Expand(msg.Result.ID)

	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path)

	case views.OpenObsidianMsg:
		return a, a.openObsidian(msg.Path)

	case openerFinishedMsg:
		if msg.err != nil {
			a.graph.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view. Background results always reach the graph.
	var cmd tea.Cmd
	switch a.state {
	case ViewSearch:
		if _, ok := msg.(tea.KeyMsg); ok {
			_, cmd = a.search.Update(msg)
			return a, cmd
		}
		_, searchCmd := a.search.Update(msg)
		_, cmd = a.graph.Update(msg)
		return a, tea.Batch(searchCmd, cmd)
	case ViewHelp:
		if _, ok := msg.(tea.KeyMsg); ok {
			_, cmd = a.help.Update(msg)
			return a, cmd
		}
		_, cmd = a.graph.Update(msg)
	default:
		_, cmd = a.graph.Update(msg)
	}

	return a, cmd
}

type openerFinishedMsg struct{ err error }

func (a *App) absPath(rel string) string {
	return filepath.Join(a.vault.Root(), filepath.FromSlash(rel))
}

func (a *App) openEditor(rel string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(a.absPath(rel))
	if err != nil {
		return func() tea.Msg {
			return openerFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return openerFinishedMsg{err: err}
	})
}

func (a *App) openObsidian(rel string) tea.Cmd {
	if a.obsidian == nil {
		return nil
	}
	path := a.absPath(rel)
	return func() tea.Msg {
		if err := a.obsidian.OpenFile(path); err != nil {
			return openerFinishedMsg{err: fmt.Errorf("open in obsidian: %w", err)}
		}
		return openerFinishedMsg{}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewSearch:
		return a.search.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.graph.View()
	}
}
