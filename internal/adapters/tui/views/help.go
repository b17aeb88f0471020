package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"vaultgraph/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToGraphMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("vaultgraph help"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("/", "Search notes and add them to the graph"))
	b.WriteString(helpLine("f", "Filter (tag:x path:x file:x class:x, -term negates)"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Graph"))
	b.WriteString("\n")
	b.WriteString(helpLine("l / → / Enter", "Expand neighbours"))
	b.WriteString(helpLine("h / ←", "Collapse neighbours"))
	b.WriteString(helpLine("p", "Pin / unpin position"))
	b.WriteString(helpLine("x", "Remove from graph"))
	b.WriteString(helpLine("L", "Run layout"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Documents"))
	b.WriteString("\n")
	b.WriteString(helpLine("e", "Open in $EDITOR"))
	b.WriteString(helpLine("o", "Open in Obsidian"))
	b.WriteString(helpLine("y", "Copy path"))
	b.WriteString(helpLine("u", "Mark up to date"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Legend"))
	b.WriteString("\n")
	b.WriteString(RenderMuted("  " + styles.MarkExpanded + "expanded  " + styles.MarkCollapsed + "collapsed  " + styles.MarkPinned + "pinned"))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
