package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"vaultgraph/internal/adapters/tui/styles"
	"vaultgraph/internal/application/commands"
)

// SearchKeyMap defines key bindings for the search view
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Copy   key.Binding
	Cancel key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "add to graph"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy path"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

const maxSearchResults = 10

// SearchModel finds documents by name, path or alias
type SearchModel struct {
	ViewState
	docs    commands.DocumentIndex
	input   textinput.Model
	results []commands.SearchResult
	cursor  int
}

// NewSearchModel creates a new search view model
func NewSearchModel(docs commands.DocumentIndex) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Search notes..."
	input.Focus()

	return &SearchModel{
		docs:  docs,
		input: input,
	}
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and results
func (m *SearchModel) Reset() {
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.ClearMessage()
	m.input.Focus()
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case searchResultsMsg:
		if msg.query == m.input.Value() {
			m.results = msg.results
			m.cursor = 0
		}
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, SearchKeys.Cancel):
			return m, func() tea.Msg {
				return SwitchToGraphMsg{}
			}

		case key.Matches(msg, SearchKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Down):
			if m.cursor < min(len(m.results), maxSearchResults)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Select):
			if result, ok := m.selected(); ok {
				return m, func() tea.Msg {
					return SearchSelectMsg{Result: result}
				}
			}
			return m, nil

		case key.Matches(msg, SearchKeys.Copy):
			if result, ok := m.selected(); ok {
				return m, copyToClipboard(result.Path)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); !ok {
		return m, cmd
	}

	query := m.input.Value()
	if len(query) >= 2 {
		return m, tea.Batch(cmd, m.search(query))
	} else if len(query) == 0 {
		m.results = nil
	}
	return m, cmd
}

func (m *SearchModel) selected() (commands.SearchResult, bool) {
	if m.cursor >= 0 && m.cursor < len(m.results) {
		return m.results[m.cursor], true
	}
	return commands.SearchResult{}, false
}

func (m *SearchModel) search(query string) tea.Cmd {
	docs := m.docs
	return func() tea.Msg {
		results, err := commands.NewSearchCommand(docs, query).Execute(context.Background())
		if err != nil {
			return searchResultsMsg{query: query}
		}
		return searchResultsMsg{query: query, results: results}
	}
}

type searchResultsMsg struct {
	query   string
	results []commands.SearchResult
}

// SearchSelectMsg is sent when a search result is picked
type SearchSelectMsg struct {
	Result commands.SearchResult
}

// View renders the search view
func (m *SearchModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Search"))
	b.WriteString("\n\n")
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		if len(m.input.Value()) >= 2 {
			b.WriteString(RenderMuted("No results found"))
		} else {
			b.WriteString(RenderMuted("Type at least 2 characters to search"))
		}
	} else {
		b.WriteString(RenderSubtitle(fmt.Sprintf("%d results", len(m.results))))
		b.WriteString("\n\n")

		shown := min(len(m.results), maxSearchResults)
		for i := 0; i < shown; i++ {
			b.WriteString(m.renderResult(m.results[i], i == m.cursor))
			b.WriteString("\n")
		}
		if len(m.results) > maxSearchResults {
			b.WriteString(RenderMuted(fmt.Sprintf("... and %d more", len(m.results)-maxSearchResults)))
		}
	}

	if m.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(RenderMessage(m.Message, m.MessageErr))
	}

	b.WriteString("\n\n")
	b.WriteString(RenderHelpLine(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Copy, SearchKeys.Cancel))
	return styles.App.Render(b.String())
}

func (m *SearchModel) renderResult(result commands.SearchResult, selected bool) string {
	text := fmt.Sprintf("%s  %s", result.Name, RenderMuted(result.Path))
	if result.MatchedText != "" {
		text += RenderMuted("  alias: " + result.MatchedText)
	}
	if selected {
		return styles.NodeSelected.Render(result.Name) + "  " + RenderMuted(result.Path)
	}
	return text
}
