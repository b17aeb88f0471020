package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"vaultgraph/internal/adapters/tui/styles"
	"vaultgraph/internal/domain"
)

// ViewState holds the size and status line shared by every view model
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets the status line
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the status line
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// RenderKeyHelp formats a key binding as help text (key + description)
func RenderKeyHelp(b key.Binding) string {
	help := b.Help()
	return fmt.Sprintf("%s %s",
		styles.HelpKey.Render(help.Key),
		styles.HelpDesc.Render(help.Desc),
	)
}

// RenderHelpLine renders multiple key bindings as a help line separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, RenderKeyHelp(b))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage renders a message with appropriate styling based on isError
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

func RenderTitle(title string) string {
	return styles.Title.Render(title)
}

func RenderSubtitle(subtitle string) string {
	return styles.Subtitle.Render(subtitle)
}

func RenderMuted(text string) string {
	return styles.MutedText.Render(text)
}

// RenderLabelValue renders a label: value pair
func RenderLabelValue(label, value string) string {
	return fmt.Sprintf("%s %s",
		styles.InputLabel.Render(label+":"),
		value,
	)
}

// RenderNodeLine renders one node of the graph list
func RenderNodeLine(n domain.NodeState, selected bool) string {
	text := n.Name
	if n.Degree > 0 {
		text = fmt.Sprintf("%s (%d)", n.Name, n.Degree)
	}
	mark := styles.Indicator.Render(styles.NodeMark(n))
	if selected {
		return mark + styles.NodeSelected.Render(text)
	}
	return mark + styles.NodeStyle(n).Render(text)
}

// RenderEdgeLine renders an edge as seen from node: "→ target" for outgoing
// edges, "← source" for incoming ones
func RenderEdgeLine(e domain.EdgeState, node string) string {
	arrow, other := "→", e.Target
	if e.Target == node && e.Source != node {
		arrow, other = "←", e.Source
	}
	line := arrow + " " + displayName(other)
	if e.DisplayType != "" {
		line += " " + styles.EdgeType.Render("["+e.DisplayType+"]")
	}
	if e.Count > 1 {
		line += RenderMuted(fmt.Sprintf(" x%d", e.Count))
	}
	return line
}

// displayName strips the store tag from a serialized node id
func displayName(id string) string {
	if v, err := domain.ParseVizID(id); err == nil {
		return v.ID
	}
	return id
}
