package views

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"vaultgraph/internal/application/workspace"
	"vaultgraph/internal/config"
	"vaultgraph/internal/domain"
	"vaultgraph/internal/session"
)

func setupSession(t *testing.T) *session.Session {
	t.Helper()
	root := t.TempDir()
	notes := map[string]string{
		"Alpha.md":   "Links to [[Beta]]\n",
		"Beta.md":    "---\ntags: [hub]\n---\nThe hub\n",
		"Charlie.md": "Also [[Beta]]\n",
	}
	for name, content := range notes {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	cfg := config.Default()
	cfg.Vault.Path = root
	cfg.Graph.Layout = config.LayoutNone
	cfg.Graph.AutoZoom = false
	cfg.Graph.HoverDelay = time.Hour

	s, err := session.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("session.Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func setupGraph(t *testing.T) (*GraphModel, *session.Session) {
	t.Helper()
	s := setupSession(t)
	ws, _, err := s.NewWorkspace()
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	if err := ws.Open(context.Background(), []domain.VizID{domain.NewVizID("Beta")}); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m := NewGraphModel(ws, GraphOptions{PreviewStyle: "notty", Docs: s.Vault(), Writer: s.Vault()})
	t.Cleanup(m.Close)
	m.Init()
	return m, s
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m *GraphModel, k string) tea.Cmd {
	_, cmd := m.Update(keyMsg(k))
	return cmd
}

func nodeIDs(m *GraphModel) []string {
	var ids []string
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestGraphModel_ListsNodesByName(t *testing.T) {
	m, _ := setupGraph(t)

	got := strings.Join(nodeIDs(m), ",")
	if want := "core:Alpha,core:Beta,core:Charlie"; got != want {
		t.Fatalf("nodes = %s, want %s", got, want)
	}
	if n, _ := m.Selected(); n.ID != "core:Alpha" {
		t.Errorf("initial selection = %s, want core:Alpha", n.ID)
	}
	if !strings.Contains(m.View(), "3 nodes, 2 edges") {
		t.Errorf("view is missing the graph summary:\n%s", m.View())
	}
}

func TestGraphModel_Navigation(t *testing.T) {
	m, _ := setupGraph(t)

	press(m, "j")
	press(m, "j")
	press(m, "j")
	if n, _ := m.Selected(); n.ID != "core:Charlie" {
		t.Errorf("after moving down selection = %s, want core:Charlie", n.ID)
	}
	press(m, "k")
	if n, _ := m.Selected(); n.ID != "core:Beta" {
		t.Errorf("after moving up selection = %s, want core:Beta", n.ID)
	}

	m.Select("core:Alpha")
	if n, _ := m.Selected(); n.ID != "core:Alpha" {
		t.Errorf("Select moved to %s", n.ID)
	}
}

func TestGraphModel_PinAndRemove(t *testing.T) {
	m, _ := setupGraph(t)
	m.Select("core:Charlie")

	press(m, "p")
	if n, _ := m.Selected(); !n.HasClass(domain.ClassPinned) {
		t.Errorf("Charlie should be pinned, classes %v", n.Classes)
	}
	press(m, "p")
	if n, _ := m.Selected(); n.HasClass(domain.ClassPinned) {
		t.Errorf("Charlie should be unpinned, classes %v", n.Classes)
	}

	press(m, "x")
	if got := strings.Join(nodeIDs(m), ","); got != "core:Alpha,core:Beta" {
		t.Errorf("after remove nodes = %s", got)
	}
	if n, _ := m.Selected(); n.ID != "core:Beta" {
		t.Errorf("selection after remove = %s, want core:Beta", n.ID)
	}
}

func TestGraphModel_Filter(t *testing.T) {
	m, _ := setupGraph(t)

	press(m, "f")
	if !m.filtering {
		t.Fatal("f should open the filter input")
	}
	for _, r := range "tag:hub" {
		press(m, string(r))
	}
	press(m, "enter")

	if m.filtering {
		t.Error("enter should close the filter input")
	}
	if got := m.ws.Filter(); got != "tag:hub" {
		t.Errorf("workspace filter = %q, want tag:hub", got)
	}
	for _, n := range m.Nodes() {
		want := n.ID != "core:Beta"
		if n.HasClass(domain.ClassFiltered) != want {
			t.Errorf("%s filtered = %v, want %v", n.ID, !want, want)
		}
	}

	press(m, "f")
	press(m, "z")
	press(m, "esc")
	if got := m.ws.Filter(); got != "tag:hub" {
		t.Errorf("cancelled filter changed the workspace filter to %q", got)
	}
}

func TestGraphModel_Expand(t *testing.T) {
	m, s := setupGraph(t)
	if err := os.WriteFile(filepath.Join(s.Vault().Root(), "Delta.md"), []byte("[[Alpha]]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Vault().IndexFile("Delta.md"); err != nil {
		t.Fatal(err)
	}

	msg := m.Expand("core:Alpha")()
	m.Update(msg)

	if got := strings.Join(nodeIDs(m), ","); got != "core:Alpha,core:Beta,core:Charlie,core:Delta" {
		t.Errorf("after expand nodes = %s", got)
	}
	if n, _ := m.Selected(); n.ID != "core:Alpha" {
		t.Errorf("expand should focus the expanded node, got %s", n.ID)
	}
	if m.MessageErr || !strings.HasPrefix(m.Message, "Added 1 nodes") {
		t.Errorf("message = %q (err %v)", m.Message, m.MessageErr)
	}

	m.Update(m.Expand("")())
	if !m.MessageErr {
		t.Errorf("expanding an empty id should report an error, message %q", m.Message)
	}
}

func TestGraphModel_KeyCommands(t *testing.T) {
	m, _ := setupGraph(t)

	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"/", SwitchToSearchMsg{}},
		{"?", SwitchToHelpMsg{}},
		{"e", OpenEditorMsg{Path: "Alpha.md"}},
		{"o", OpenObsidianMsg{Path: "Alpha.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cmd := press(m, tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("message = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestGraphModel_MarkUpToDate(t *testing.T) {
	m, s := setupGraph(t)

	cmd := press(m, "u")
	if cmd == nil {
		t.Fatal("u should return a command")
	}
	m.Update(cmd())
	if m.MessageErr {
		t.Fatalf("mark failed: %s", m.Message)
	}

	content, err := os.ReadFile(filepath.Join(s.Vault().Root(), "Alpha.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(content), domain.UpToDateMarker+"\n") {
		t.Errorf("Alpha.md = %q, want the up-to-date marker appended", content)
	}
}

func TestGraphModel_WorkspaceEvents(t *testing.T) {
	m, _ := setupGraph(t)

	id, err := m.ws.AddTerminalNode(context.Background(), "Follow up", "core:Alpha")
	if err != nil {
		t.Fatalf("AddTerminalNode failed: %v", err)
	}
	m.Update(workspaceEventMsg{workspace.ElementsChanged{Added: []string{id}}})
	if len(m.Nodes()) != 4 {
		t.Errorf("nodes after terminal add = %v", nodeIDs(m))
	}

	m.Update(workspaceEventMsg{workspace.RefreshSkipped{ID: "core:Beta", Reason: "renamed"}})
	if !m.MessageErr || !strings.Contains(m.Message, "renamed") {
		t.Errorf("message = %q", m.Message)
	}

	m.Select("core:Beta")
	m.Update(workspaceEventMsg{workspace.PreviewReady{ID: "core:Alpha", Content: "ignored"}})
	if m.previewID != "" {
		t.Errorf("preview for an unselected node was accepted: %q", m.previewID)
	}

	_, cmd := m.Update(workspaceEventMsg{workspace.PreviewReady{ID: "core:Beta", Content: "# The hub"}})
	if cmd == nil {
		t.Fatal("preview should be rendered in the background")
	}
	m.Update(m.renderPreview("core:Beta", "# The hub")())
	if !strings.Contains(m.preview, "The hub") {
		t.Errorf("preview = %q", m.preview)
	}
}
