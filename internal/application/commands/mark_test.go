package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vaultgraph/internal/application"
	"vaultgraph/internal/domain"
)

type failingWriter struct{}

func (failingWriter) AppendContent(context.Context, string, string) error {
	return errors.New("read-only vault")
}

func TestMarkUpToDateCommand(t *testing.T) {
	tests := []struct {
		name string
		id   string
		path string
		want string
	}{
		{
			name: "trailing newline",
			id:   "core:A",
			path: "A.md",
			want: "Links to [[B]]\n" + domain.UpToDateMarker + "\n",
		},
		{
			name: "no trailing newline",
			id:   "Unrelated",
			path: "Unrelated.md",
			want: "nothing here\n" + domain.UpToDateMarker + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vault := setupVault(t, starNotes)
			ctx := context.Background()

			result, err := NewMarkUpToDateCommand(vault, vault, tt.id).Execute(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Changed || result.Path != tt.path {
				t.Errorf("unexpected result: %+v", result)
			}
			content, _ := vault.ReadContent(ctx, tt.path)
			if content != tt.want {
				t.Errorf("content = %q, want %q", content, tt.want)
			}

			// marking again is a no-op
			again, err := NewMarkUpToDateCommand(vault, vault, tt.id).Execute(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if again.Changed {
				t.Error("second mark should not change the document")
			}
			content, _ = vault.ReadContent(ctx, tt.path)
			if strings.Count(content, domain.UpToDateMarker) != 1 {
				t.Errorf("marker appended twice: %q", content)
			}
		})
	}
}

func TestMarkUpToDateCommand_Errors(t *testing.T) {
	vault := setupVault(t, starNotes)
	ctx := context.Background()

	if _, err := NewMarkUpToDateCommand(vault, vault, "core:Missing").Execute(ctx); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := NewMarkUpToDateCommand(vault, vault, "terminal:x").Execute(ctx); !errors.Is(err, application.ErrUnsupportedStore) {
		t.Errorf("expected ErrUnsupportedStore, got %v", err)
	}
	if _, err := NewMarkUpToDateCommand(vault, failingWriter{}, "A").Execute(ctx); err == nil {
		t.Error("expected writer error to propagate")
	}
}
