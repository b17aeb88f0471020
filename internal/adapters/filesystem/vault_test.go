package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"vaultgraph/internal/domain"
)

func setupTestVault(t *testing.T) *Vault {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"Alpha.md":            "Links [[Beta]] and [[sub/Gamma]] and [[Missing]]\n",
		"Beta.md":             "---\nup: \"[[Alpha]]\"\n---\nbody\n",
		"sub/Gamma.md":        "[[Delta]]\n",
		"sub/Delta.md":        "",
		"other/Delta.md":      "",
		".obsidian/Hidden.md": "[[Alpha]]\n",
		"image.png":           "png",
	}
	for name, content := range files {
		writeFile(t, root, name, content)
	}

	v, err := NewVault(root, nil)
	if err != nil {
		t.Fatalf("NewVault failed: %v", err)
	}
	t.Cleanup(func() { v.Close() })

	n, err := v.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 5 {
		t.Fatalf("indexed %d documents, want 5", n)
	}
	return v
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestNewVault_RejectsMissingDir(t *testing.T) {
	if _, err := NewVault(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing vault directory")
	}
}

func TestVault_ResolveLink(t *testing.T) {
	v := setupTestVault(t)

	tests := []struct {
		name   string
		link   string
		source string
		want   string
		wantOK bool
	}{
		{"by name", "Beta", "", "Beta.md", true},
		{"with extension", "Beta.md", "", "Beta.md", true},
		{"exact path", "sub/Gamma", "", "sub/Gamma.md", true},
		{"case insensitive name", "gamma", "", "sub/Gamma.md", true},
		{"relative to source", "Delta", "sub/Gamma.md", "sub/Delta.md", true},
		{"ambiguous name picks shortest path", "Delta", "Alpha.md", "sub/Delta.md", true},
		{"path suffix", "sub/Delta", "Alpha.md", "sub/Delta.md", true},
		{"dangling", "Missing", "Alpha.md", "", false},
		{"hidden dir not indexed", "Hidden", "", "", false},
		{"empty", "  ", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.ResolveLink(tt.link, tt.source)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveLink(%q, %q) = %q, %v; want %q, %v", tt.link, tt.source, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestVault_Metadata(t *testing.T) {
	v := setupTestVault(t)
	ctx := context.Background()

	meta, err := v.Metadata(ctx, "Beta.md")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta == nil || len(meta.FrontmatterLinks) != 1 || meta.FrontmatterLinks[0].Key != "up" {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	missing, err := v.Metadata(ctx, "Nope.md")
	if err != nil || missing != nil {
		t.Errorf("Metadata(missing) = %v, %v; want nil, nil", missing, err)
	}

	content, err := v.ReadContent(ctx, "sub/Gamma.md")
	if err != nil || content != "[[Delta]]\n" {
		t.Errorf("ReadContent = %q, %v", content, err)
	}

	if !v.Exists("Alpha.md") || v.Exists("Missing.md") || v.Exists("sub") {
		t.Error("Exists reported wrong results")
	}
}

func TestVault_ForwardLinks(t *testing.T) {
	v := setupTestVault(t)

	links, err := v.ForwardLinks(context.Background())
	if err != nil {
		t.Fatalf("ForwardLinks failed: %v", err)
	}

	want := map[string][]string{
		"Alpha.md":       {"Beta.md", "sub/Gamma.md"},
		"Beta.md":        {"Alpha.md"},
		"sub/Gamma.md":   {"sub/Delta.md"},
		"sub/Delta.md":   nil,
		"other/Delta.md": nil,
	}
	if len(links) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(links), len(want), links)
	}
	for path, targets := range want {
		if !slices.Equal(links[path], targets) {
			t.Errorf("links[%s] = %v, want %v", path, links[path], targets)
		}
	}
}

func TestVault_Indexed(t *testing.T) {
	v := setupTestVault(t)

	if !isClosed(v.Indexed("Beta.md")) {
		t.Error("indexed document should signal immediately")
	}

	v.MarkPending("Beta.md")
	ch := v.Indexed("Beta.md")
	if isClosed(ch) {
		t.Fatal("pending document should not signal")
	}
	if err := v.IndexFile("Beta.md"); err != nil {
		t.Fatalf("IndexFile failed: %v", err)
	}
	if !isClosed(ch) {
		t.Error("re-indexing should release waiters")
	}

	if !isClosed(v.Indexed("Unknown.md")) {
		t.Error("unknown document has nothing to wait for")
	}

	v.MarkPending("New.md")
	fresh := v.Indexed("New.md")
	if isClosed(fresh) {
		t.Fatal("pending new document should not signal")
	}
	writeFile(t, v.Root(), "New.md", "[[Alpha]]")
	if err := v.IndexFile("New.md"); err != nil {
		t.Fatalf("IndexFile failed: %v", err)
	}
	if !isClosed(fresh) {
		t.Error("indexing a new document should release waiters")
	}

	v.Forget("Beta.md")
	if !isClosed(v.Indexed("Beta.md")) {
		t.Error("forgotten document should signal immediately")
	}
}

func TestVault_ApplyRename(t *testing.T) {
	v := setupTestVault(t)

	got := make(chan domain.Change, 4)
	cancel := v.Subscribe(func(c domain.Change) { got <- c })
	defer cancel()

	if err := os.Rename(filepath.Join(v.Root(), "Beta.md"), filepath.Join(v.Root(), "Beta2.md")); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	v.Apply([]domain.Change{{Kind: domain.ChangeRenamed, Path: "Beta2.md", OldPath: "Beta.md"}})

	select {
	case c := <-got:
		if c.Kind != domain.ChangeRenamed || c.Path != "Beta2.md" || c.OldPath != "Beta.md" {
			t.Errorf("unexpected change: %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}

	ctx := context.Background()
	if meta, _ := v.Metadata(ctx, "Beta.md"); meta != nil {
		t.Error("old path should be forgotten")
	}
	if meta, _ := v.Metadata(ctx, "Beta2.md"); meta == nil {
		t.Error("new path should be indexed")
	}
	if _, ok := v.ResolveLink("Beta", ""); ok {
		t.Error("old name should no longer resolve")
	}
	if p, ok := v.ResolveLink("Beta2", ""); !ok || p != "Beta2.md" {
		t.Errorf("ResolveLink(Beta2) = %q, %v", p, ok)
	}
}

func TestVault_ApplyDelete(t *testing.T) {
	v := setupTestVault(t)

	if err := os.Remove(filepath.Join(v.Root(), "sub", "Gamma.md")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	v.Apply([]domain.Change{{Kind: domain.ChangeDeleted, Path: "sub/Gamma.md"}})

	if meta, _ := v.Metadata(context.Background(), "sub/Gamma.md"); meta != nil {
		t.Error("deleted document should be forgotten")
	}
	if slices.Contains(v.Paths(), "sub/Gamma.md") {
		t.Error("deleted document should not be listed")
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestVault_AppendContent(t *testing.T) {
	v := setupTestVault(t)
	ctx := context.Background()

	if err := v.AppendContent(ctx, "sub/Gamma.md", "tail\n"); err != nil {
		t.Fatalf("AppendContent failed: %v", err)
	}
	content, _ := v.ReadContent(ctx, "sub/Gamma.md")
	if content != "[[Delta]]\ntail\n" {
		t.Errorf("content = %q", content)
	}

	if err := v.AppendContent(ctx, "Missing.md", "x"); err == nil {
		t.Error("appending to a missing document should fail")
	}
}
