package commands

import (
	"context"
	"errors"
	"testing"

	"vaultgraph/internal/application"
	"vaultgraph/internal/application/linkgraph"
)

func TestBacklinksCommand(t *testing.T) {
	vault := setupVault(t, starNotes)
	backlinks := linkgraph.NewScanBacklinks(vault)

	tests := []struct {
		name      string
		id        string
		wantPaths []string
		wantErr   error
	}{
		{name: "hub", id: "core:B", wantPaths: []string{"A.md", "notes/C.md"}},
		{name: "bare name", id: "B", wantPaths: []string{"A.md", "notes/C.md"}},
		{name: "no backlinks", id: "core:A"},
		{name: "missing document", id: "core:Missing", wantErr: application.ErrNotFound},
		{name: "terminal node", id: "terminal:x", wantErr: application.ErrUnsupportedStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewBacklinksCommand(vault, backlinks, tt.id).Execute(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result) != len(tt.wantPaths) {
				t.Fatalf("expected %d backlinks, got %+v", len(tt.wantPaths), result)
			}
			for i, want := range tt.wantPaths {
				if result[i].Path != want {
					t.Errorf("backlink %d: expected %s, got %s", i, want, result[i].Path)
				}
			}
		})
	}
}

func TestBacklinksCommand_IDs(t *testing.T) {
	vault := setupVault(t, starNotes)
	result, err := NewBacklinksCommand(vault, linkgraph.NewScanBacklinks(vault), "B").Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 || result[1].ID != "core:C" {
		t.Errorf("unexpected backlinks: %+v", result)
	}
}
