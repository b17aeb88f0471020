package linkgraph

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"vaultgraph/internal/domain"
)

func buildEdges(t *testing.T, docs *fakeDocs, merge bool, path string, targets ...string) []domain.EdgeDefinition {
	t.Helper()
	b := NewEdgeBuilder(docs, NewResolver(docs), merge, nil)
	set := make(map[string]bool)
	for _, target := range targets {
		set[target] = true
	}
	source := domain.NewVizID(domain.DocumentName(path)).String()
	edges, err := b.BuildEdges(t.Context(), path, source, set)
	if err != nil {
		t.Fatalf("BuildEdges() error = %v", err)
	}
	return edges
}

func TestBuildEdgesMergeLaw(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "first A [[B]]\nthen B [[B]]\n- friend [[B]]\n")
	docs.add("B.md", "")

	edges := buildEdges(t, docs, true, "A.md", "core:B")
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d: %+v", len(edges), edges)
	}

	merged := edges[0]
	if merged.ID != "core:A->core:B#0" {
		t.Errorf("merged id = %q", merged.ID)
	}
	if merged.Count != 2 {
		t.Errorf("merged count = %d, want 2", merged.Count)
	}
	if merged.Context != "first A [[B]]"+MergedContextSeparator+"then B [[B]]" {
		t.Errorf("merged context = %q", merged.Context)
	}
	if strings.Index(merged.Context, "first A") > strings.Index(merged.Context, "then B") {
		t.Error("contexts out of insertion order")
	}

	typed := edges[1]
	if typed.Type != "friend" || typed.Count != 1 || typed.ID != "core:A->core:B#1" {
		t.Errorf("typed edge = %+v", typed)
	}
}

func TestBuildEdgesWithoutMerge(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[B]] and [[B]]\n")
	docs.add("B.md", "")

	edges := buildEdges(t, docs, false, "A.md", "core:B")
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	for i, e := range edges {
		if e.Count != 1 {
			t.Errorf("edge %d count = %d", i, e.Count)
		}
	}
	if edges[0].ID == edges[1].ID {
		t.Error("unmerged edges share an id")
	}
}

func TestBuildEdgesTypedNeverMerge(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "- friend [[B]]\n- friend [[B]]\n")
	docs.add("B.md", "")

	edges := buildEdges(t, docs, true, "A.md", "core:B")
	if len(edges) != 2 {
		t.Fatalf("typed edges merged: %+v", edges)
	}
}

func TestBuildEdgesDeterministic(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[B]] [[C]] [[B]]\n- parent [[C]]\n[[Missing]]\n",
		domain.FrontmatterReference{Key: "related.0", Link: "B", Original: "[[B]]"})
	docs.add("B.md", "")
	docs.add("C.md", "")

	targets := []string{"core:B", "core:C", "core:Missing"}
	first := buildEdges(t, docs, true, "A.md", targets...)
	for range 5 {
		again := buildEdges(t, docs, true, "A.md", targets...)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("edge extraction not deterministic:\n%+v\n%+v", first, again)
		}
	}

	var ids []string
	for _, e := range first {
		ids = append(ids, e.ID)
	}
	want := []string{
		"core:A->core:B#0",
		"core:A->core:B#1",
		"core:A->core:C#0",
		"core:A->core:C#1",
		"core:A->core:Missing#0",
	}
	if !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestBuildEdgesTypeRoundTrip(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "",
		domain.FrontmatterReference{Key: "related.older_sibling", Link: "B", Original: "[[B]]"})
	docs.add("B.md", "")

	edges := buildEdges(t, docs, true, "A.md", "core:B")
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	e := edges[0]
	if e.DisplayType != "older sibling" {
		t.Errorf("display type = %q", e.DisplayType)
	}
	if !slices.Contains(e.Classes, "type-older_sibling") {
		t.Errorf("classes %v missing type-older_sibling", e.Classes)
	}
	if !slices.Contains(e.Classes, domain.ClassFrontmatter) {
		t.Errorf("classes %v missing frontmatter", e.Classes)
	}
}

func TestBuildEdgesIgnoresNonMarkdownAndOutsiders(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[B]] [[C]]\n")
	docs.add("B.md", "")
	docs.add("C.md", "")
	docs.add("image.png", "[[B]]")

	if edges := buildEdges(t, docs, true, "image.png", "core:B"); len(edges) != 0 {
		t.Errorf("non-markdown produced edges: %+v", edges)
	}
	edges := buildEdges(t, docs, true, "A.md", "core:C")
	if len(edges) != 1 || edges[0].Target != "core:C" {
		t.Errorf("expected only the edge to C, got %+v", edges)
	}
}
