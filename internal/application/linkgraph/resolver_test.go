package linkgraph

import (
	"testing"

	"vaultgraph/internal/domain"
)

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"Note", "Note"},
		{"Note|alias", "Note"},
		{"Note#Heading", "Note"},
		{"Note#^block", "Note"},
		{"Note^block", "Note"},
		{" ./folder/Note.md ", "folder/Note.md"},
		{`folder\Note`, "folder/Note"},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := NormalizeLink(tt.link); got != tt.want {
				t.Errorf("NormalizeLink(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	docs := newFakeDocs()
	docs.add("notes/Alpha.md", "")
	r := NewResolver(docs)

	id, p, ok := r.Resolve("Alpha|the alpha", "B.md")
	if !ok || p != "notes/Alpha.md" || id != domain.NewVizID("Alpha") {
		t.Errorf("Resolve(Alpha) = %v, %q, %v", id, p, ok)
	}

	t.Run("dangling is stable and distinct", func(t *testing.T) {
		first, _, ok := r.Resolve("ideas/Missing.md", "B.md")
		if ok {
			t.Fatal("expected dangling link")
		}
		second, _, _ := r.Resolve("ideas/Missing.md", "B.md")
		if first != second {
			t.Errorf("dangling resolution not stable: %v vs %v", first, second)
		}
		if first.String() != "core:ideas/Missing" {
			t.Errorf("dangling id = %q, want core:ideas/Missing", first.String())
		}
		if first == id {
			t.Error("dangling id collides with a real document id")
		}
	})

	t.Run("empty link", func(t *testing.T) {
		if id, _, _ := r.Resolve("#heading", "B.md"); !id.IsZero() {
			t.Errorf("expected zero id, got %v", id)
		}
	})

	t.Run("path for id", func(t *testing.T) {
		if p, ok := r.PathForID(domain.NewVizID("Alpha")); !ok || p != "notes/Alpha.md" {
			t.Errorf("PathForID = %q, %v", p, ok)
		}
		if _, ok := r.PathForID(domain.VizID{ID: "Alpha", Store: domain.StoreTerminal}); ok {
			t.Error("terminal ids have no path")
		}
	})
}
