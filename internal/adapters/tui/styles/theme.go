package styles

import (
	"github.com/charmbracelet/lipgloss"

	"vaultgraph/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Node colors
	NoteColor     = lipgloss.Color("#60A5FA") // Blue
	TerminalColor = lipgloss.Color("#EC4899") // Pink

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Graph node styles
	NodeNote = lipgloss.NewStyle().
			Foreground(NoteColor)

	NodeExpanded = lipgloss.NewStyle().
			Foreground(NoteColor).
			Bold(true)

	NodeDangling = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	NodeTerminal = lipgloss.NewStyle().
			Foreground(TerminalColor)

	NodeFiltered = lipgloss.NewStyle().
			Foreground(Muted).
			Faint(true)

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	// Node indicators
	Indicator     = lipgloss.NewStyle().Foreground(Muted)
	MarkExpanded  = "▼ "
	MarkCollapsed = "▶ "
	MarkPinned    = "◆ "
	MarkLeaf      = "  "

	// Edge list
	EdgeType = lipgloss.NewStyle().
			Foreground(Warning)

	// Preview pane
	Preview = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// NodeStyle picks the style of a live node from its current classes
func NodeStyle(n domain.NodeState) lipgloss.Style {
	switch {
	case n.HasClass(domain.ClassFiltered):
		return NodeFiltered
	case n.Dangling:
		return NodeDangling
	case n.Store == domain.StoreTerminal:
		return NodeTerminal
	case n.HasClass(domain.ClassExpanded):
		return NodeExpanded
	default:
		return NodeNote
	}
}

// NodeMark returns the indicator drawn before a node name
func NodeMark(n domain.NodeState) string {
	switch {
	case n.HasClass(domain.ClassPinned):
		return MarkPinned
	case n.HasClass(domain.ClassExpanded):
		return MarkExpanded
	case n.Store == domain.StoreCore && !n.Dangling:
		return MarkCollapsed
	default:
		return MarkLeaf
	}
}
