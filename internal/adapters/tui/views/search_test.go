package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSearchModel_SelectResult(t *testing.T) {
	s := setupSession(t)
	m := NewSearchModel(s.Vault())

	m.input.SetValue("cha")
	m.Update(m.search("cha")())
	if len(m.results) != 1 || m.results[0].ID != "core:Charlie" {
		t.Fatalf("results = %+v", m.results)
	}

	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter should select the result")
	}
	msg, ok := cmd().(SearchSelectMsg)
	if !ok || msg.Result.ID != "core:Charlie" {
		t.Errorf("message = %#v", msg)
	}
}

func TestSearchModel_StaleResultsIgnored(t *testing.T) {
	s := setupSession(t)
	m := NewSearchModel(s.Vault())

	m.input.SetValue("alp")
	m.Update(m.search("be")())
	if len(m.results) != 0 {
		t.Errorf("results for an old query were kept: %+v", m.results)
	}
}

func TestSearchModel_Cancel(t *testing.T) {
	s := setupSession(t)
	m := NewSearchModel(s.Vault())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(SwitchToGraphMsg); !ok {
		t.Error("esc should switch back to the graph")
	}
}
