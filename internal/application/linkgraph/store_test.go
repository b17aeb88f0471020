package linkgraph

import (
	"slices"
	"testing"

	"vaultgraph/internal/domain"
)

func scenarioDocs() *fakeDocs {
	docs := newFakeDocs()
	docs.add("A.md", "Working on [[B]].\n",
		domain.FrontmatterReference{Key: "project", Link: "C", Original: "[[C]]"})
	docs.add("B.md", "plain\n")
	docs.add("C.md", "plain\n")
	return docs
}

func nodeIDs(defs []domain.NodeDefinition) []string {
	var ids []string
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestExpandScenario(t *testing.T) {
	store := NewStore(scenarioDocs(), Options{MergeEdges: true})

	nodes, err := store.GetNeighbourhood(t.Context(), []domain.VizID{domain.NewVizID("A")})
	if err != nil {
		t.Fatalf("GetNeighbourhood() error = %v", err)
	}
	if got, want := nodeIDs(nodes), []string{"core:A", "core:B", "core:C"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}

	edges, err := store.ConnectNodes(t.Context(), nil, nodes)
	if err != nil {
		t.Fatalf("ConnectNodes() error = %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %+v", edges)
	}
	if e := edges[0]; e.Source != "core:A" || e.Target != "core:B" || e.Type != "" || !slices.Contains(e.Classes, domain.ClassInline) {
		t.Errorf("edge A->B = %+v", e)
	}
	if e := edges[1]; e.Source != "core:A" || e.Target != "core:C" || e.Type != "project" {
		t.Errorf("edge A->C = %+v", e)
	}
}

func TestGetNeighbourhoodBacklinksAndDangling(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[B]] [[Ghost]] [[B]]\n")
	docs.add("B.md", "")
	docs.add("D.md", "back to [[A]]\n")
	docs.add("E.md", "unrelated\n")
	store := NewStore(docs, Options{})

	nodes, err := store.GetNeighbourhood(t.Context(), []domain.VizID{domain.NewVizID("A")})
	if err != nil {
		t.Fatalf("GetNeighbourhood() error = %v", err)
	}
	if got, want := nodeIDs(nodes), []string{"core:A", "core:B", "core:Ghost", "core:D"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	if !nodes[2].Dangling || !slices.Contains(nodes[2].Classes, domain.ClassDangling) {
		t.Errorf("Ghost should be dangling: %+v", nodes[2])
	}
}

func TestGetNeighbourhoodSkipsUnindexed(t *testing.T) {
	docs := scenarioDocs()
	docs.unindexed["A.md"] = true
	store := NewStore(docs, Options{})

	nodes, err := store.GetNeighbourhood(t.Context(), []domain.VizID{
		domain.NewVizID("A"),
		domain.NewVizID("Nowhere"),
		{ID: "x", Store: domain.StoreTerminal},
	})
	if err != nil {
		t.Fatalf("GetNeighbourhood() error = %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("expected no nodes, got %v", nodeIDs(nodes))
	}
}

func TestConnectNodesNoDoubleCount(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[B]] [[C]]\n")
	docs.add("B.md", "[[A]]\n")
	docs.add("C.md", "[[B]]\n")
	store := NewStore(docs, Options{MergeEdges: true})

	get := func(name string) domain.NodeDefinition {
		def, err := store.Get(t.Context(), domain.NewVizID(name))
		if err != nil || def == nil {
			t.Fatalf("Get(%s) = %v, %v", name, def, err)
		}
		return *def
	}
	a, b, c := get("A"), get("B"), get("C")

	edges, err := store.ConnectNodes(t.Context(), []domain.NodeDefinition{a, b, c}, []domain.NodeDefinition{b, c})
	if err != nil {
		t.Fatalf("ConnectNodes() error = %v", err)
	}
	var ids []string
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	want := []string{
		"core:B->core:A#0",
		"core:C->core:B#0",
		"core:A->core:B#0",
		"core:A->core:C#0",
	}
	if !slices.Equal(ids, want) {
		t.Errorf("edges = %v, want %v", ids, want)
	}
}

func TestGetDangling(t *testing.T) {
	store := NewStore(newFakeDocs(), Options{})
	def, err := store.Get(t.Context(), domain.NewVizID("Missing"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if def == nil || !def.Dangling || def.ID != "core:Missing" {
		t.Errorf("expected dangling node, got %+v", def)
	}
}

func TestScanBacklinks(t *testing.T) {
	docs := newFakeDocs()
	docs.add("A.md", "[[A]] [[B]]\n")
	docs.add("C.md", "[[B]]\n")
	docs.add("B.md", "")

	got, err := NewScanBacklinks(docs).Backlinks(t.Context(), "B.md")
	if err != nil {
		t.Fatalf("Backlinks() error = %v", err)
	}
	if want := []string{"A.md", "C.md"}; !slices.Equal(got, want) {
		t.Errorf("Backlinks = %v, want %v", got, want)
	}

	self, _ := NewScanBacklinks(docs).Backlinks(t.Context(), "A.md")
	if len(self) != 0 {
		t.Errorf("self link reported as back-link: %v", self)
	}
}
