package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vaultgraph/internal/adapters/filesystem"
)

// setupVault writes notes into a temporary vault and indexes them
func setupVault(t *testing.T, notes map[string]string) *filesystem.Vault {
	t.Helper()
	root := t.TempDir()
	for name, content := range notes {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	v, err := filesystem.NewVault(root, nil)
	if err != nil {
		t.Fatalf("NewVault failed: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	if _, err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return v
}

var starNotes = map[string]string{
	"A.md":         "Links to [[B]]\n",
	"B.md":         "---\ntags: [hub]\n---\nThe hub\n",
	"notes/C.md":   "Also [[B]] and [[Missing]]\n",
	"Unrelated.md": "nothing here",
}
