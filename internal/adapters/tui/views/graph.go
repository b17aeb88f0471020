package views

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"vaultgraph/internal/adapters/tui/styles"
	"vaultgraph/internal/application/commands"
	"vaultgraph/internal/application/workspace"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/ports"
)

// GraphKeyMap defines key bindings for the graph view
type GraphKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Pin      key.Binding
	Remove   key.Binding
	Filter   key.Binding
	Layout   key.Binding
	Copy     key.Binding
	Edit     key.Binding
	Obsidian key.Binding
	Mark     key.Binding
	Search   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var GraphKeys = GraphKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Expand: key.NewBinding(
		key.WithKeys("l", "right", "enter"),
		key.WithHelp("l/enter", "expand"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "collapse"),
	),
	Pin: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pin"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	Layout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "layout"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Obsidian: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "obsidian"),
	),
	Mark: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "mark up to date"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var filterKeys = struct {
	Apply  key.Binding
	Cancel key.Binding
}{
	Apply:  key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc")),
}

// GraphOptions tune the graph view
type GraphOptions struct {
	PreviewStyle string // glamour standard style, "dark" when empty
	Writer       ports.DocumentWriter
	Docs         ports.DocumentStore
}

// GraphModel browses the live graph of one workspace: a node list, the edges
// of the selected node and a rendered preview of its document.
type GraphModel struct {
	ViewState
	ws   *workspace.Workspace
	opts GraphOptions

	events      chan workspace.Event
	unsubscribe func()

	nodes  []domain.NodeState
	cursor int
	offset int

	previewID string
	preview   string

	filter    textinput.Model
	filtering bool
}

// NewGraphModel creates a graph view over an opened workspace
func NewGraphModel(ws *workspace.Workspace, opts GraphOptions) *GraphModel {
	if opts.PreviewStyle == "" {
		opts.PreviewStyle = "dark"
	}
	input := textinput.New()
	input.Placeholder = "tag:project -class:dangling"
	input.Prompt = "filter: "

	m := &GraphModel{
		ws:     ws,
		opts:   opts,
		events: make(chan workspace.Event, 64),
		filter: input,
	}
	m.unsubscribe = ws.Subscribe(func(e workspace.Event) {
		select {
		case m.events <- e:
		default:
			// a full queue already guarantees a reload
		}
	})
	return m
}

// Init starts listening for workspace events
func (m *GraphModel) Init() tea.Cmd {
	m.reloadNodes()
	return m.waitForEvent
}

// Close stops listening for workspace events
func (m *GraphModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *GraphModel) waitForEvent() tea.Msg {
	return workspaceEventMsg{<-m.events}
}

type workspaceEventMsg struct {
	event workspace.Event
}

type expandedMsg struct {
	focus string
	added domain.Elements
	err   error
}

type previewRenderedMsg struct {
	id      string
	content string
}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}

// Update handles messages for the graph view
func (m *GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case workspaceEventMsg:
		return m, tea.Batch(m.handleEvent(msg.event), m.waitForEvent)

	case expandedMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.reloadNodes()
		m.Select(msg.focus)
		m.SetMessage(fmt.Sprintf("Added %d nodes and %d edges", len(msg.added.Nodes), len(msg.added.Edges)), false)
		return m, nil

	case previewRenderedMsg:
		if msg.id == m.previewID {
			m.preview = msg.content
		}
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *GraphModel) handleEvent(e workspace.Event) tea.Cmd {
	switch e := e.(type) {
	case workspace.ElementsChanged:
		m.reloadNodes()
	case workspace.PreviewReady:
		if n, ok := m.Selected(); ok && n.ID == e.ID {
			m.previewID = e.ID
			return m.renderPreview(e.ID, e.Content)
		}
	case workspace.UpToDate:
		m.SetMessage(fmt.Sprintf("%s is up to date", e.Path), false)
	case workspace.RefreshSkipped:
		m.SetMessage(fmt.Sprintf("%s not refreshed: %s", e.ID, e.Reason), true)
	case workspace.LayoutRequested:
		m.reloadNodes()
	}
	return nil
}

func (m *GraphModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, GraphKeys.Quit):
		return tea.Quit

	case key.Matches(msg, GraphKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.selectionChanged()
		}
		return nil

	case key.Matches(msg, GraphKeys.Down):
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
			m.selectionChanged()
		}
		return nil

	case key.Matches(msg, GraphKeys.Search):
		return func() tea.Msg { return SwitchToSearchMsg{} }

	case key.Matches(msg, GraphKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, GraphKeys.Filter):
		m.filtering = true
		m.filter.SetValue(m.ws.Filter())
		return m.filter.Focus()

	case key.Matches(msg, GraphKeys.Layout):
		return m.runLayout()
	}

	n, ok := m.Selected()
	if !ok {
		return nil
	}

	switch {
	case key.Matches(msg, GraphKeys.Expand):
		return m.Expand(n.ID)

	case key.Matches(msg, GraphKeys.Collapse):
		removed := m.ws.Collapse(n.ID)
		m.reloadNodes()
		m.SetMessage(fmt.Sprintf("Collapsed %s: %d removed", n.Name, len(removed)), false)

	case key.Matches(msg, GraphKeys.Pin):
		if n.HasClass(domain.ClassPinned) {
			m.ws.Unpin(n.ID)
		} else {
			m.ws.Pin(n.ID)
		}
		m.reloadNodes()

	case key.Matches(msg, GraphKeys.Remove):
		m.ws.Remove(n.ID)
		m.reloadNodes()

	case key.Matches(msg, GraphKeys.Copy):
		if n.Path == "" {
			m.SetMessage("node has no document", true)
			return nil
		}
		return copyToClipboard(n.Path)

	case key.Matches(msg, GraphKeys.Edit):
		if n.Path != "" {
			return func() tea.Msg { return OpenEditorMsg{Path: n.Path} }
		}

	case key.Matches(msg, GraphKeys.Obsidian):
		if n.Path != "" {
			return func() tea.Msg { return OpenObsidianMsg{Path: n.Path} }
		}

	case key.Matches(msg, GraphKeys.Mark):
		return m.markUpToDate(n.ID)
	}
	return nil
}

func (m *GraphModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, filterKeys.Apply):
		m.ws.SetFilter(m.filter.Value())
		m.filtering = false
		m.filter.Blur()
		m.reloadNodes()
		return nil
	case key.Matches(msg, filterKeys.Cancel):
		m.filtering = false
		m.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return cmd
}

// Expand materialises the neighbourhood of id in the background and moves
// the cursor onto id once it is listed
func (m *GraphModel) Expand(id string) tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		result, err := commands.NewExpandCommand(ws, id).Execute(context.Background())
		if err != nil {
			return expandedMsg{err: err}
		}
		return expandedMsg{focus: id, added: result.Added}
	}
}

// Select moves the cursor onto id when it is visible
func (m *GraphModel) Select(id string) {
	for i, n := range m.nodes {
		if n.ID == id {
			m.cursor = i
			m.selectionChanged()
			return
		}
	}
}

// Selected returns the node under the cursor
func (m *GraphModel) Selected() (domain.NodeState, bool) {
	if m.cursor >= 0 && m.cursor < len(m.nodes) {
		return m.nodes[m.cursor], true
	}
	return domain.NodeState{}, false
}

// Nodes returns the listed nodes in display order
func (m *GraphModel) Nodes() []domain.NodeState {
	return m.nodes
}

func (m *GraphModel) selectionChanged() {
	n, ok := m.Selected()
	if !ok {
		m.ws.Unhover()
		m.ws.SetActive("")
		return
	}
	m.ws.SetActive(n.ID)
	m.ws.Hover(n.ID, true)
	if n.ID != m.previewID {
		m.preview = ""
	}
}

// reloadNodes rereads the view keeping the cursor on the same node
func (m *GraphModel) reloadNodes() {
	var current string
	if n, ok := m.Selected(); ok {
		current = n.ID
	}

	nodes := m.ws.View().Nodes(domain.SelectNodes())
	slices.SortFunc(nodes, func(a, b domain.NodeState) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	m.nodes = nodes

	m.cursor = min(m.cursor, len(m.nodes)-1)
	for i, n := range m.nodes {
		if n.ID == current {
			m.cursor = i
			break
		}
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n, ok := m.Selected(); ok && n.ID != current {
		m.selectionChanged()
	}
}

func (m *GraphModel) renderPreview(id, content string) tea.Cmd {
	style := m.opts.PreviewStyle
	width := max(m.previewWidth()-4, 20)
	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return previewRenderedMsg{id: id, content: content}
		}
		out, err := r.Render(content)
		if err != nil {
			return previewRenderedMsg{id: id, content: content}
		}
		return previewRenderedMsg{id: id, content: out}
	}
}

func (m *GraphModel) runLayout() tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		if err := ws.RunLayout(context.Background()); err != nil {
			return errMsg{err}
		}
		return successMsg{"Layout applied"}
	}
}

func (m *GraphModel) markUpToDate(id string) tea.Cmd {
	if m.opts.Docs == nil || m.opts.Writer == nil {
		return nil
	}
	docs, writer := m.opts.Docs, m.opts.Writer
	return func() tea.Msg {
		result, err := commands.NewMarkUpToDateCommand(docs, writer, id).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return successMsg{result.Message}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{fmt.Errorf("copy to clipboard: %w", err)}
		}
		return successMsg{"Copied " + text}
	}
}

// View renders the graph view
func (m *GraphModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("vaultgraph"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle(m.subtitle()))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(RenderMuted("The graph is empty. Press / to find a note."))
		b.WriteString("\n")
	} else {
		left := m.renderList()
		right := styles.Preview.Width(m.previewWidth()).Render(m.renderDetails())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
		b.WriteString("\n")
	}

	if m.filtering {
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(m.filter.View()))
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelpLine(
		GraphKeys.Expand, GraphKeys.Collapse, GraphKeys.Filter,
		GraphKeys.Search, GraphKeys.Edit, GraphKeys.Help, GraphKeys.Quit,
	))
	return styles.App.Render(b.String())
}

func (m *GraphModel) subtitle() string {
	edges := len(m.ws.View().Edges(domain.SelectEdges()))
	s := fmt.Sprintf("%d nodes, %d edges", len(m.nodes), edges)
	if f := m.ws.Filter(); f != "" {
		s += "  filter: " + f
	}
	return s
}

func (m *GraphModel) listHeight() int {
	// title, subtitle, help and padding
	return max(m.Height-10, 5)
}

func (m *GraphModel) previewWidth() int {
	if m.Width == 0 {
		return 60
	}
	return max(m.Width/2, 30)
}

func (m *GraphModel) renderList() string {
	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	end := min(m.offset+height, len(m.nodes))

	var lines []string
	for i := m.offset; i < end; i++ {
		lines = append(lines, RenderNodeLine(m.nodes[i], i == m.cursor))
	}
	if end < len(m.nodes) {
		lines = append(lines, RenderMuted(fmt.Sprintf("... and %d more", len(m.nodes)-end)))
	}
	return strings.Join(lines, "\n")
}

func (m *GraphModel) renderDetails() string {
	n, ok := m.Selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(n.Name))
	b.WriteString("\n")
	if n.Path != "" {
		b.WriteString(RenderMuted(n.Path))
		b.WriteString("\n")
	}
	if len(n.Tags) > 0 {
		b.WriteString(RenderLabelValue("tags", strings.Join(n.Tags, ", ")))
		b.WriteString("\n")
	}

	edges := m.ws.View().ConnectedEdges(n.ID)
	if len(edges) > 0 {
		b.WriteString("\n")
		for _, e := range edges {
			b.WriteString(RenderEdgeLine(e, n.ID))
			b.WriteString("\n")
		}
	}

	if m.preview != "" && m.previewID == n.ID {
		b.WriteString("\n")
		b.WriteString(m.preview)
	}
	return b.String()
}

// Messages for view switching
type SwitchToSearchMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToGraphMsg struct{}

// OpenEditorMsg asks the app to open a vault document in $EDITOR
type OpenEditorMsg struct {
	Path string
}

// OpenObsidianMsg asks the app to open a vault document in Obsidian
type OpenObsidianMsg struct {
	Path string
}
